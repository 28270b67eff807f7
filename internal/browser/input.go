package browser

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SetInputValue clears el and types text into it one character at a time,
// yielding to the page after each keystroke so listeners run before the next
// one. A change event is fired after clearing and after the last character.
//
// A nil el is logged and ignored.
func (d *Driver) SetInputValue(ctx context.Context, el Element, text string) error {
	if el == nil {
		d.log.Error("cannot set input value", zap.Error(ErrMissingInput))
		return nil
	}

	if err := el.SetValue(ctx, ""); err != nil {
		return fmt.Errorf("clear input: %w", err)
	}
	if err := el.Dispatch(ctx, changeEvent()); err != nil {
		return fmt.Errorf("dispatch change: %w", err)
	}

	for _, r := range text {
		if err := d.Keystroke(ctx, el, r); err != nil {
			return err
		}
		if err := d.doc.Yield(ctx); err != nil {
			return fmt.Errorf("yield after keystroke: %w", err)
		}
		if err := d.pause(ctx); err != nil {
			return err
		}
	}

	if err := el.Dispatch(ctx, changeEvent()); err != nil {
		return fmt.Errorf("dispatch change: %w", err)
	}

	return nil
}
