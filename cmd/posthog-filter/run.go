package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grez-lucas/posthog-filter/internal/automation"
	"github.com/grez-lucas/posthog-filter/internal/automation/posthog"
	"github.com/grez-lucas/posthog-filter/internal/browser"
)

func newRunCmd(a *app) *cobra.Command {
	var keepOpen bool

	cmd := &cobra.Command{
		Use:   "run <replay-url>",
		Short: "Open a replay link and filter the recordings list by its session ID",
		Long: `Open a replay link and filter the recordings list by its session ID.

A URL that is not a PostHog page, or that carries no sessionRecordingId, is
logged and skipped: the command exits 0 without touching the page. A step that
fails exits 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.page.Context(ctx).Navigate(args[0]); err != nil {
				return fmt.Errorf("navigate to %s: %w", args[0], err)
			}

			driver := browser.NewDriver(browser.NewRodDocument(s.page),
				browser.WithLogger(a.log),
				browser.WithTimeout(a.cfg.Automation.Timeout),
				browser.WithKeystrokeJitter(a.cfg.Automation.KeystrokeJitter),
			)
			var flow automation.Workflow = posthog.New(driver,
				posthog.WithLogger(a.log),
				posthog.WithSelectors(a.cfg.Selectors),
			)

			res, err := flow.Start(ctx)
			if err := runOutcome(err); err != nil {
				return err
			}

			if keepOpen && res != nil {
				a.log.Info("Filter applied, press Ctrl+C to close the browser")
				waitForExit(ctx)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&keepOpen, "keep-open", false, "keep the browser open after the filter is applied")
	flags.String("replay", "", "serve requests from a HAR recording instead of the network")
	flags.Bool("replay-passthrough", false, "with --replay, send requests missing from the recording to the network")
	_ = a.v.BindPFlag("automation.replay", flags.Lookup("replay"))
	_ = a.v.BindPFlag("automation.replay_passthrough", flags.Lookup("replay-passthrough"))
	return cmd
}

// runOutcome maps the workflow error to the command result. A page that does
// not activate the workflow is not a failure.
func runOutcome(err error) error {
	var stepErr *automation.StepError
	switch {
	case err == nil, errors.Is(err, automation.ErrNotActivated):
		return nil
	case errors.As(err, &stepErr):
		return fmt.Errorf("%w: %w", errReported, err)
	default:
		return err
	}
}

// waitForExit blocks until the command is interrupted.
func waitForExit(ctx context.Context) {
	<-ctx.Done()
}
