package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flickrcrawler/pkg/config"
	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/keywords"
	"flickrcrawler/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage flickrcrawler configuration files.

Configuration is resolved in this order, later sources winning:
  - Default values
  - Configuration file
  - .env file
  - Environment variables (FLICKRCRAWLER_*)
  - Command line flags`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write a configuration file holding every option at its default value.

The file goes to --config when given, otherwise to
~/.config/flickrcrawler/config.yaml.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after all sources are merged. The API key is masked.`,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return errs.Newf(errs.ErrorTypeInvalidInput, "configuration file already exists: %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.Crawl.Keywords = []string{"sunset", "mountains"}
	if err := cfg.Save(path); err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to write configuration")
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Edit the keywords and limit")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Store your API key with 'flickrcrawler auth set'")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Run 'flickrcrawler crawl'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return errs.Wrap(errs.ErrorTypeInvalidInput, err, "failed to load configuration")
	}

	display := *cfg
	if display.Flickr.APIKey != "" {
		display.Flickr.APIKey = maskKey(display.Flickr.APIKey)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return errs.Wrap(errs.ErrorTypeInvalidInput, err, "configuration is invalid")
	}

	var warnings []string
	if cfg.Flickr.APIKey == "" {
		warnings = append(warnings, "no API key in configuration; the credential store will be used")
	}

	kws, err := keywords.Merge(cfg.Crawl.Keywords, cfg.Crawl.KeywordsFile)
	if err != nil {
		return err
	}
	if len(kws) == 0 {
		warnings = append(warnings, "no keywords configured; pass them to 'crawl'")
	}

	for _, w := range warnings {
		ui.PrintWarning("Warning", w)
	}
	ui.PrintSuccess("Configuration is valid")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Keywords:             %d\n", len(kws))
	fmt.Fprintf(out, "  Limit:                %d\n", cfg.Crawl.Limit)
	fmt.Fprintf(out, "  Output directory:     %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(out, "  Manifest:             %s\n", cfg.ManifestPath())
	fmt.Fprintf(out, "  Concurrent downloads: %d\n", cfg.Download.ConcurrentDownloads)
	fmt.Fprintf(out, "  Rate limit:           %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Fprintf(out, "  Log level:            %s\n", cfg.Logging.Level)
	return nil
}

func maskKey(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
