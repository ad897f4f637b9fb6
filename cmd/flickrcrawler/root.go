package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/ui"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFormat  string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "flickrcrawler",
	Short: "Download Flickr photos for a list of keywords",
	Long: `flickrcrawler searches Flickr for each keyword, splits a global photo
budget between the keywords and downloads the results concurrently.

Every run writes a manifest.json describing each download slot, with null
entries for downloads that failed.

Features:
  - Even budget split across keywords
  - Bounded concurrent downloads with per-download timeouts
  - Rate limited, retried search calls
  - Secure API key storage using the system keychain
  - Progress line, full-screen dashboard and desktop notifications`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
		if cmd.Name() == "crawl" {
			ui.PrintLogo()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps failures to process exit codes: 2 for bad input, 1 otherwise.
func exitCode(err error) int {
	if errs.Is(err, errs.ErrorTypeInvalidInput) {
		return 2
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.flickrcrawler.yaml or ~/.config/flickrcrawler/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`flickrcrawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags returns the persistent flags that override configuration.
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if logFormat != "" {
		flags["log-format"] = logFormat
	}
	return flags
}
