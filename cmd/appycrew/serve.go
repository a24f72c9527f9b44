package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/server"
)

var (
	servePort    int
	serveMaxBody int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the widget backend",
	Long:  `Start an HTTP server exposing the OCR, vision, speech, translation, map and fill endpoints the widget calls.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: PORT or 8080)")
	serveCmd.Flags().Int64Var(&serveMaxBody, "max-body", server.DefaultMaxBodyBytes, "Maximum request body size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	env := config.LoadEnv()

	port := servePort
	if port == 0 {
		port = env.Port
		if cfg != nil {
			port = cfg.Port
		}
	}

	services, err := server.BuildServices(context.Background(), env, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up services: %w", err)
	}
	if !env.OCRConfigured() {
		log.Printf("[server] no OCR provider configured; /api/ocr answers in demo mode")
	}

	srv, err := server.New(server.Config{Port: port, MaxBodyBytes: serveMaxBody}, services)
	if err != nil {
		services.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
