package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/observability"
	"github.com/jonathan/appycrew-ocr/internal/session"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Propose which form field each extracted value belongs in",
	Long:  "Discover the fields of a form in an HTML file and print the record and proposed mappings as JSON.",
	RunE:  runMap,
}

var (
	mapHTMLFile string
	mapInput    inputFlags
	mapSession  sessionFlags
)

func init() {
	mapCmd.Flags().StringVar(&mapHTMLFile, "html", "", "HTML file holding the form (required)")
	_ = mapCmd.MarkFlagRequired("html")
	mapInput.register(mapCmd)
	mapSession.register(mapCmd)
	rootCmd.AddCommand(mapCmd)
}

// mapOutput is what map prints.
type mapOutput struct {
	Record   *types.ExtractedRecord `json:"record"`
	Mappings []mapping.Mapping      `json:"mappings"`
	Form     *form.Form             `json:"form,omitempty"`
}

func runMap(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := mapInput.read(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := context.Background()
	job, err := openHTMLFile(ctx, cfg, mapHTMLFile, &mapSession, in)
	if err != nil {
		return err
	}
	defer job.close()

	return writeJSON(cmd.OutOrStdout(), mapOutput{
		Record:   job.result.Record,
		Mappings: job.sess.Mappings(),
		Form:     job.result.Form,
	})
}

// htmlJob is a session scanned against a form in an HTML file.
type htmlJob struct {
	sess   *session.Session
	doc    *goquery.Document
	result *session.Result
	close  func()
}

// openHTMLFile parses path, scans in against its form and applies --accept.
func openHTMLFile(ctx context.Context, cfg *config.Config, path string, flags *sessionFlags, in types.RecognizedInput) (*htmlJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	defer f.Close()
	return openHTML(ctx, cfg, f, flags, in)
}

func openHTML(ctx context.Context, cfg *config.Config, r io.Reader, flags *sessionFlags, in types.RecognizedInput) (*htmlJob, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	sess, cleanup, err := newSession(ctx, cfg, apply.NewDocumentWriter(), flags.site)
	if err != nil {
		return nil, err
	}

	res, err := scanDocument(ctx, sess, doc, form.StaticLayout{}, flags.formSelector, in)
	if err != nil {
		cleanup()
		return nil, err
	}
	if flags.accept != nil {
		if err := sess.CheckOnly(flags.accept); err != nil {
			cleanup()
			return nil, err
		}
	}

	if verbose {
		p := observability.NewPrinter(os.Stderr)
		p.PrintRecord(res.Record)
		p.PrintMappings(sess.Mappings())
	}
	return &htmlJob{sess: sess, doc: doc, result: res, close: cleanup}, nil
}

// renderHTML renders the document with a trailing newline.
func renderHTML(doc *goquery.Document) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return strings.TrimSpace(html) + "\n", nil
}
