package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/observability"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract item, quantity, location and description from recognized input",
	Long: "Extract a structured record from OCR text, an AI vision answer or a voice transcript " +
		"and print it as JSON.",
	RunE: runExtract,
}

var extractInput inputFlags

func init() {
	extractInput.register(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := extractInput.read(cmd.InOrStdin())
	if err != nil {
		return err
	}
	return extractRecord(cmd.OutOrStdout(), cfg, in)
}

func extractRecord(out io.Writer, cfg *config.Config, in types.RecognizedInput) error {
	rec := cfg.Extractor().Extract(in)
	if verbose {
		observability.NewPrinter(os.Stderr).PrintRecord(rec)
	}
	if err := writeJSON(out, rec); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
