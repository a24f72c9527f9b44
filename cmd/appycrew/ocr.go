package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/jonathan/appycrew-ocr/internal/observability"
	"github.com/jonathan/appycrew-ocr/internal/server"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Read a label photo through the configured OCR and vision providers",
	Long: "Run an image file through the same provider chain as POST /api/ocr. Providers are " +
		"enabled by their API keys in the environment; with none set the demo provider answers.",
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

var (
	ocrFormType string
	ocrJSON     bool
)

func init() {
	ocrCmd.Flags().StringVar(&ocrFormType, "form-type", "", "Form type hint passed to the vision model")
	ocrCmd.Flags().BoolVar(&ocrJSON, "json", false, "Print the full response as JSON instead of the cleaned text")
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	img := imaging.Image{MIMEType: http.DetectContentType(data), Data: data}

	ctx := context.Background()
	services, err := server.BuildServices(ctx, config.LoadEnv(), cfg)
	if err != nil {
		return fmt.Errorf("failed to set up providers: %w", err)
	}
	defer services.Close()

	res, err := services.Capture.Run(ctx, img, ocrFormType)
	if err != nil {
		return err
	}
	if verbose {
		observability.NewPrinter(os.Stderr).PrintCapture(res)
	}

	if ocrJSON {
		return writeJSON(cmd.OutOrStdout(), types.OCRResponse{
			Success: true,
			Text:    res.OCR.Text,
			RawText: res.OCR.RawText,
			Vision:  res.Vision,
			Meta:    res.Meta,
			Demo:    res.OCR.Demo,
		})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.OCR.Text)
	return err
}
