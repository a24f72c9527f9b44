package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/observability"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill a form in an HTML file",
	Long: "Map recognized input onto a form in an HTML file, apply the accepted mappings and " +
		"write the filled document. --undo reverts the fill afterwards, which shows exactly " +
		"what an undo in the widget would restore.",
	RunE: runFill,
}

var (
	fillHTMLFile string
	fillOutFile  string
	fillUndo     bool
	fillInput    inputFlags
	fillSession  sessionFlags
)

func init() {
	fillCmd.Flags().StringVar(&fillHTMLFile, "html", "", "HTML file holding the form (required)")
	fillCmd.Flags().StringVarP(&fillOutFile, "out", "o", "", "Where to write the filled HTML (default: stdout)")
	fillCmd.Flags().BoolVar(&fillUndo, "undo", false, "Undo the fill before writing the document")
	_ = fillCmd.MarkFlagRequired("html")
	fillInput.register(fillCmd)
	fillSession.register(fillCmd)
	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := fillInput.read(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := context.Background()
	job, err := openHTMLFile(ctx, cfg, fillHTMLFile, &fillSession, in)
	if err != nil {
		return err
	}
	defer job.close()

	out := cmd.OutOrStdout()
	if fillOutFile != "" {
		f, err := os.Create(fillOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return fill(ctx, job, fillUndo, out, cmd.ErrOrStderr())
}

// fill applies the job's checked mappings, optionally undoes them, and writes the
// document to out. A summary goes to status.
func fill(ctx context.Context, job *htmlJob, undo bool, out, status io.Writer) error {
	res := job.sess.Apply(ctx)
	if verbose {
		observability.NewPrinter(status).PrintApplyResult(res)
	} else {
		printFillSummary(status, res)
	}

	if undo {
		restored := job.sess.Undo(ctx)
		fmt.Fprintf(status, "Undo restored %d fields\n", restored)
	}

	html, err := renderHTML(job.doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, html); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}

func printFillSummary(w io.Writer, res apply.Result) {
	fmt.Fprintf(w, "Filled %d fields", len(res.Applied))
	if len(res.Failed) > 0 {
		fmt.Fprintf(w, ", %d failed", len(res.Failed))
	}
	fmt.Fprintln(w)
	for _, f := range res.Failed {
		fmt.Fprintf(w, "  %s: %s\n", f.Mapping.Field.Label, f.Err)
	}
}
