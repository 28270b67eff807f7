// Package posthog applies a session recording filter on the PostHog replay
// page, using the session identifier found in the page URL.
package posthog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/grez-lucas/posthog-filter/internal/automation"
	"github.com/grez-lucas/posthog-filter/internal/browser"
)

// Automation is the session filter workflow bound to one page.
type Automation struct {
	doc    browser.Document
	driver *browser.Driver
	sel    Selectors
	log    *zap.Logger
	runner []automation.RunnerOption
}

var _ automation.Workflow = (*Automation)(nil)

// Option configures an Automation.
type Option func(*Automation)

// WithSelectors overrides the UI selectors. Empty fields keep their default.
func WithSelectors(sel Selectors) Option {
	return func(a *Automation) {
		a.sel = sel.withDefaults()
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Automation) {
		a.log = log
	}
}

// WithRunnerOptions passes options to the step runner.
func WithRunnerOptions(opts ...automation.RunnerOption) Option {
	return func(a *Automation) {
		a.runner = append(a.runner, opts...)
	}
}

// New creates the workflow for the page behind driver.
func New(driver *browser.Driver, opts ...Option) *Automation {
	a := &Automation{
		doc:    driver.Document(),
		driver: driver,
		sel:    DefaultSelectors(),
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start checks the activation gate once, then runs the workflow either right
// away if the page has finished loading or after its load event.
func (a *Automation) Start(ctx context.Context) (*automation.Result, error) {
	sessionID, err := a.activate(ctx)
	if err != nil {
		return nil, err
	}

	state, err := a.doc.ReadyState(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document state: %w", err)
	}

	if state != "complete" {
		a.log.Debug("waiting for page load", zap.String("ready_state", state))
		if err := a.doc.WaitLoad(ctx); err != nil {
			return nil, fmt.Errorf("wait for page load: %w", err)
		}
	}

	return a.run(ctx, sessionID)
}

// Automate evaluates the activation gate and runs the workflow immediately,
// without checking the document state. Use it when the caller has already
// waited for the page to load, for example after rod's WaitLoad or
// WaitDOMStable; otherwise use Start.
func (a *Automation) Automate(ctx context.Context) (*automation.Result, error) {
	sessionID, err := a.activate(ctx)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, sessionID)
}

// activate returns the session ID to filter on, or ErrNotActivated when the
// page is not a PostHog page carrying one.
func (a *Automation) activate(ctx context.Context) (string, error) {
	href, err := a.doc.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("read page URL: %w", err)
	}

	if !IsTargetPage(href) {
		a.log.Info("Not a PostHog page, skipping automation", zap.String("url", href))
		return "", fmt.Errorf("%w: %s is not a %s page", automation.ErrNotActivated, href, TargetDomain)
	}

	sessionID := SessionID(href)
	if sessionID == "" {
		a.log.Info("No session recording ID found in URL", zap.String("url", href))
		return "", fmt.Errorf("%w: no %s parameter", automation.ErrNotActivated, SessionParam)
	}

	return sessionID, nil
}

// run is the single failure boundary of the workflow: a failed step is logged
// once and ends the run.
func (a *Automation) run(ctx context.Context, sessionID string) (*automation.Result, error) {
	log := a.log.With(zap.String("session_id", sessionID))
	opts := append([]automation.RunnerOption{automation.WithRunnerLogger(log)}, a.runner...)

	res, err := automation.NewRunner(a.driver, opts...).Run(ctx, Steps(a.sel, sessionID))
	if err != nil {
		log.Error("Error during PostHog automation", zap.Error(err))
		return res, err
	}

	log.Info("PostHog automation completed successfully", zap.Int("steps", res.Completed))
	return res, nil
}
