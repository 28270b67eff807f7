package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grez-lucas/posthog-filter/internal/automation/posthog"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <snapshot.html>",
		Short: "Report which workflow selectors match a saved page snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			results, err := posthog.Probe(string(data), a.cfg.Selectors)
			if err != nil {
				return err
			}

			printProbe(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func printProbe(w io.Writer, results []posthog.ProbeResult) {
	for _, r := range results {
		mark := "MISSING"
		if r.Found() {
			mark = "ok"
		}

		target := r.Selector
		if r.Text != "" {
			target = fmt.Sprintf("%s containing %q", r.Selector, r.Text)
		}
		fmt.Fprintf(w, "%-8s %-20s %2d  %s\n", mark, r.Name, r.Matches, target)
	}
}
