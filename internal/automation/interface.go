// Package automation defines the step and state model shared by UI workflows:
// a fixed list of steps, each waiting for an element and then acting on it,
// executed strictly in order.
package automation

import (
	"context"

	"github.com/grez-lucas/posthog-filter/internal/browser"
)

// WaitFunc locates the element a step acts on. It may return a nil element
// for steps that only wait for a condition.
type WaitFunc func(ctx context.Context, d *browser.Driver) (browser.Element, error)

// ActFunc performs a step's interaction on the element found by its WaitFunc.
type ActFunc func(ctx context.Context, d *browser.Driver, el browser.Element) error

// Step is one entry of a workflow. Either phase may be nil.
type Step struct {
	Name string
	Wait WaitFunc
	Act  ActFunc
}

// Workflow runs against a page once it is activated.
type Workflow interface {
	// Start evaluates the activation gate and runs the workflow once the page
	// has loaded.
	Start(ctx context.Context) (*Result, error)
}
