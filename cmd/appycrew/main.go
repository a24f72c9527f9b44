// Package main provides the appycrew command: the widget backend server plus offline
// tools that run the scan-and-fill engine against HTML files and live pages.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "appycrew",
	Short: "AppyCrew OCR and form-fill engine",
	Long: "AppyCrew reads inventory labels from photos and speech, extracts item, quantity, " +
		"location and description, and fills them into whatever form is on screen.",
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file extending the keyword tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed summaries to stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
