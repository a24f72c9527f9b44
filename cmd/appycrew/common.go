package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/db"
	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/llm"
	"github.com/jonathan/appycrew-ocr/internal/session"
	"github.com/jonathan/appycrew-ocr/internal/types"
	"github.com/jonathan/appycrew-ocr/internal/vision"
)

// loadConfig reads --config. Without one, nil is returned and the built-in tables apply.
// Values the file leaves empty fall back to the environment.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return nil, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env := config.LoadEnv()
	merged := cfg.MergeWithDefaults(config.Config{
		Port:          env.Port,
		ImageMaxWidth: env.ImageMaxWidth,
		DatabaseURL:   env.DatabaseURL,
	})
	merged.Verbose = merged.Verbose || verbose
	return &merged, nil
}

// inputFlags are the recognized-input flags shared by extract, map, fill and fill-page.
type inputFlags struct {
	text       string
	textFile   string
	visionFile string
	transcript string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "OCR text")
	cmd.Flags().StringVar(&f.textFile, "text-file", "", "File holding OCR text (- for stdin)")
	cmd.Flags().StringVar(&f.visionFile, "vision", "", "JSON file holding an AI vision answer")
	cmd.Flags().StringVar(&f.transcript, "transcript", "", "Voice transcript; wins over text and vision")
}

// read assembles the input. stdin is only read for --text-file -.
func (f *inputFlags) read(stdin io.Reader) (types.RecognizedInput, error) {
	if f.text != "" && f.textFile != "" {
		return types.RecognizedInput{}, fmt.Errorf("cannot use --text with --text-file")
	}

	in := types.RecognizedInput{RawText: f.text, Transcript: f.transcript}
	switch f.textFile {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return in, fmt.Errorf("failed to read stdin: %w", err)
		}
		in.RawText = string(data)
	default:
		data, err := os.ReadFile(f.textFile)
		if err != nil {
			return in, fmt.Errorf("failed to read text file: %w", err)
		}
		in.RawText = string(data)
	}

	if f.visionFile != "" {
		data, err := os.ReadFile(f.visionFile)
		if err != nil {
			return in, fmt.Errorf("failed to read vision file: %w", err)
		}
		v, err := vision.Parse(llm.Provider("file"), string(data))
		if err != nil {
			return in, fmt.Errorf("invalid vision file: %w", err)
		}
		in.Vision = v
	}

	if strings.TrimSpace(in.RawText) == "" && in.Vision == nil && strings.TrimSpace(in.Transcript) == "" {
		return in, fmt.Errorf("no input: use --text, --text-file, --vision or --transcript")
	}
	return in, nil
}

// sessionFlags select the target form and the site learned hints belong to.
type sessionFlags struct {
	formSelector string
	site         string
	accept       []int
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.formSelector, "form", "", "CSS selector of the form to fill (default: the most visible form)")
	cmd.Flags().StringVar(&f.site, "site", "", "Site name for learned field hints (needs DATABASE_URL)")
	cmd.Flags().IntSliceVar(&f.accept, "accept", nil, "Mapping indices to apply (default: all)")
}

// newSession builds a session writing through w. With a site and a database, applied
// mappings are learned; the returned func releases the database.
func newSession(ctx context.Context, cfg *config.Config, w apply.ElementWriter, site string) (*session.Session, func(), error) {
	opts := []session.Option{session.WithExtractor(cfg.Extractor())}
	for key, synonyms := range cfg.FieldSynonyms() {
		opts = append(opts, session.WithSynonyms(key, synonyms))
	}

	cleanup := func() {}
	if site == "" && cfg != nil {
		site = cfg.Site
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if cfg != nil && cfg.DatabaseURL != "" {
		databaseURL = cfg.DatabaseURL
	}
	if site != "" && databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		opts = append(opts, session.WithLearning(database, site))
		cleanup = database.Close
	} else if site != "" {
		log.Printf("[cli] --site ignored: DATABASE_URL is not set")
	}

	return session.New(w, opts...), cleanup, nil
}

// scanDocument discovers the forms in doc and scans in against the selected one.
func scanDocument(ctx context.Context, sess *session.Session, doc *goquery.Document, layout form.Layout, selector string, in types.RecognizedInput) (*session.Result, error) {
	sess.RescanForms(ctx, doc, layout)
	if selector != "" {
		if err := sess.SelectFormMatching(ctx, selector); err != nil {
			return nil, err
		}
	}
	return sess.Scan(ctx, in)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
