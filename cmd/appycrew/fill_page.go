package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/appycrew-ocr/internal/browser"
	"github.com/jonathan/appycrew-ocr/internal/observability"
)

var fillPageCmd = &cobra.Command{
	Use:   "fill-page <url>",
	Short: "Fill a form on a live web page in headless Chrome",
	Long: "Open a page in Chrome, discover its on-screen forms, map recognized input onto the " +
		"most visible one and, with --apply, type the values in the way a user would. " +
		"Requires Chrome/Chromium to be installed on the system.",
	Args: cobra.ExactArgs(1),
	RunE: runFillPage,
}

var (
	fillPageApply   bool
	fillPageHeadful bool
	fillPageTimeout time.Duration
	fillPageHold    time.Duration
	fillPageInput   inputFlags
	fillPageSession sessionFlags
)

func init() {
	fillPageCmd.Flags().BoolVar(&fillPageApply, "apply", false, "Write the accepted mappings into the page")
	fillPageCmd.Flags().BoolVar(&fillPageHeadful, "headful", false, "Show the browser window")
	fillPageCmd.Flags().DurationVar(&fillPageTimeout, "timeout", browser.DefaultTimeout, "Overall browser timeout")
	fillPageCmd.Flags().DurationVar(&fillPageHold, "hold", 0, "Keep the page open this long after filling (with --headful)")
	fillPageInput.register(fillPageCmd)
	fillPageSession.register(fillPageCmd)
	rootCmd.AddCommand(fillPageCmd)
}

func runFillPage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in, err := fillPageInput.read(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := context.Background()
	page, err := browser.Open(ctx, args[0], browser.Options{
		Timeout: fillPageTimeout,
		Settle:  browser.DefaultSettle,
		Headful: fillPageHeadful,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}
	defer page.Close()

	doc, err := page.Snapshot(ctx)
	if err != nil {
		return err
	}
	layout, err := page.Measure(ctx)
	if err != nil {
		return err
	}

	sess, cleanup, err := newSession(ctx, cfg, page.Writer(), fillPageSession.site)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := scanDocument(ctx, sess, doc, layout, fillPageSession.formSelector, in)
	if err != nil {
		return err
	}
	if fillPageSession.accept != nil {
		if err := sess.CheckOnly(fillPageSession.accept); err != nil {
			return err
		}
	}

	printer := observability.NewPrinter(os.Stderr)
	if verbose {
		printer.PrintRecord(res.Record)
	}
	printer.PrintMappings(sess.Mappings())

	if !fillPageApply {
		return writeJSON(cmd.OutOrStdout(), mapOutput{Record: res.Record, Mappings: sess.Mappings(), Form: res.Form})
	}

	applied := sess.Apply(ctx)
	printer.PrintApplyResult(applied)
	if fillPageHold > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Holding page open for %s\n", fillPageHold)
		time.Sleep(fillPageHold)
	}
	return writeJSON(cmd.OutOrStdout(), applied)
}
