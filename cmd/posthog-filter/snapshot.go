package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var output string
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "snapshot <url>",
		Short: "Save the rendered HTML of a page for offline selector probing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer s.Close()

			page := s.page.Context(ctx)
			if err := page.Navigate(args[0]); err != nil {
				return fmt.Errorf("navigate to %s: %w", args[0], err)
			}
			if err := page.WaitLoad(); err != nil {
				return fmt.Errorf("wait for load: %w", err)
			}
			// The app keeps rendering after the load event.
			if err := page.WaitDOMStable(settle, 0); err != nil {
				return fmt.Errorf("wait for DOM to settle: %w", err)
			}

			html, err := page.HTML()
			if err != nil {
				return fmt.Errorf("read page HTML: %w", err)
			}

			if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}

			a.log.Info("Snapshot saved", zap.String("path", output), zap.Int("bytes", len(html)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "snapshot.html", "file to write the HTML to")
	cmd.Flags().DurationVar(&settle, "settle", time.Second, "how long the DOM must stay unchanged before capture")
	return cmd
}
