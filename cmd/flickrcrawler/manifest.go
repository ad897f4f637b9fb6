package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"flickrcrawler/pkg/manifest"
	"flickrcrawler/pkg/ui"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect manifests written by crawl",
}

var manifestStatsCmd = &cobra.Command{
	Use:   "stats <manifest.json>",
	Short: "Summarise a manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		ui.PrintHighlight("Manifest " + args[0])
		printStats(cmd.OutOrStdout(), m.Stats())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.AddCommand(manifestStatsCmd)
}

func printStats(w io.Writer, s manifest.Stats) {
	fmt.Fprintf(w, "Slots:      %d\n", s.Total)
	fmt.Fprintf(w, "Downloaded: %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:     %d\n", s.Failed)

	names := make([]string, 0, len(s.PerKeyword))
	for kw := range s.PerKeyword {
		names = append(names, kw)
	}
	sort.Strings(names)
	for _, kw := range names {
		fmt.Fprintf(w, "  %-24s %d\n", kw, s.PerKeyword[kw])
	}
}
