package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token <site>",
	Short: "Issue a site token for the widget",
	Long: "Sign a token binding widget requests to a site. The server requires one on /api " +
		"whenever SITE_TOKEN_SECRET is set, in the X-AppyCrew-Site-Token header or as a bearer token.",
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

var tokenHours int

func init() {
	tokenCmd.Flags().IntVar(&tokenHours, "hours", 0, "Lifetime in hours (default: SITE_TOKEN_EXPIRATION_HOURS or 720)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	return issueToken(cmd.OutOrStdout(), args[0], tokenHours)
}

func issueToken(out io.Writer, site string, hours int) error {
	cfg, err := config.NewSiteTokenConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("SITE_TOKEN_SECRET environment variable is required")
	}
	if hours > 0 {
		cfg.ExpirationHours = hours
	}

	token, err := server.NewSiteTokenService(cfg).GenerateToken(site)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
