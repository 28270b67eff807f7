package browser

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError reports a wait that found nothing before its timeout.
type TimeoutError struct {
	Selector string
	Text     string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("element %s with text %q not found after %dms", e.Selector, e.Text, e.Timeout.Milliseconds())
	}
	return fmt.Sprintf("element %s not found after %dms", e.Selector, e.Timeout.Milliseconds())
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// WaitFor polls the document once per animation frame until an element
// matches selector, and returns the first one in document order.
func (d *Driver) WaitFor(ctx context.Context, selector string) (Element, error) {
	return d.wait(ctx, selector, "")
}

// WaitForText is like WaitFor but only accepts elements whose textContent
// contains text (case-sensitive).
func (d *Driver) WaitForText(ctx context.Context, selector, text string) (Element, error) {
	return d.wait(ctx, selector, text)
}

func (d *Driver) wait(ctx context.Context, selector, text string) (Element, error) {
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		el, err := d.find(ctx, selector, text)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return el, nil
		}

		if time.Since(start) > d.timeout {
			return nil, &TimeoutError{Selector: selector, Text: text, Timeout: d.timeout}
		}

		if err := d.doc.NextFrame(ctx); err != nil {
			return nil, fmt.Errorf("wait for animation frame: %w", err)
		}
	}
}

// find runs a single query. A nil element with a nil error means no match yet.
func (d *Driver) find(ctx context.Context, selector, text string) (Element, error) {
	if text != "" {
		el, err := d.doc.QueryText(ctx, selector, text)
		if err != nil {
			return nil, fmt.Errorf("query %s containing %q: %w", selector, text, err)
		}
		return el, nil
	}

	els, err := d.doc.QueryAll(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}
