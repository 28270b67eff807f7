package browser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	"go.uber.org/zap"
)

// NamedKey is a non-character key pressed with a bare keydown.
type NamedKey struct {
	Key     string
	KeyCode int
}

var (
	KeyEnter  = NamedKey{Key: "Enter", KeyCode: 13}
	KeyEscape = NamedKey{Key: "Escape", KeyCode: 27}
)

// clickSequence is the order a real pointer produces for a primary click.
var clickSequence = []string{"mousedown", "mouseup", "click"}

func mouseEvent(typ string) Event {
	return Event{Kind: KindMouse, Type: typ, Bubbles: true, Cancelable: true}
}

func changeEvent() Event {
	return Event{Kind: KindPlain, Type: "change", Bubbles: true}
}

func keyEvent(typ string, r rune) Event {
	key := string(r)
	return Event{
		Kind:       KindKeyboard,
		Type:       typ,
		Key:        key,
		Code:       "Key" + strings.ToUpper(key),
		KeyCode:    charCode(r),
		Bubbles:    true,
		Cancelable: true,
		Composed:   true,
	}
}

func insertTextEvent(r rune) Event {
	return Event{
		Kind:       KindInput,
		Type:       "input",
		Data:       string(r),
		InputType:  "insertText",
		Bubbles:    true,
		Cancelable: true,
	}
}

func namedKeyEvent(k NamedKey) Event {
	return Event{
		Kind:    KindKeyboard,
		Type:    "keydown",
		Key:     k.Key,
		Code:    k.Key,
		KeyCode: k.KeyCode,
		Bubbles: true,
	}
}

// charCode returns the first UTF-16 code unit of r, which is what the page
// reports as the key code of a typed character.
func charCode(r rune) int {
	units := utf16.Encode([]rune{r})
	if len(units) == 0 {
		return 0
	}
	return int(units[0])
}

// Click dispatches mousedown, mouseup and click on el, then tries the native
// click. Page listeners consume the synthetic events, so a failing native
// click is only logged.
func (d *Driver) Click(ctx context.Context, el Element) error {
	for _, typ := range clickSequence {
		if err := el.Dispatch(ctx, mouseEvent(typ)); err != nil {
			return fmt.Errorf("dispatch %s: %w", typ, err)
		}
	}

	if err := el.Click(ctx); err != nil {
		d.log.Debug("native click failed, synthetic events were still dispatched", zap.Error(err))
	}

	return nil
}

// Keystroke simulates typing a single character into el: keydown, value
// append, input, keyup.
func (d *Driver) Keystroke(ctx context.Context, el Element, r rune) error {
	if err := el.Dispatch(ctx, keyEvent("keydown", r)); err != nil {
		return fmt.Errorf("dispatch keydown: %w", err)
	}

	current, err := el.Value(ctx)
	if err != nil {
		return fmt.Errorf("read value: %w", err)
	}
	if err := el.SetValue(ctx, current+string(r)); err != nil {
		return fmt.Errorf("write value: %w", err)
	}

	if err := el.Dispatch(ctx, insertTextEvent(r)); err != nil {
		return fmt.Errorf("dispatch input: %w", err)
	}

	if err := el.Dispatch(ctx, keyEvent("keyup", r)); err != nil {
		return fmt.Errorf("dispatch keyup: %w", err)
	}

	return nil
}

// PressKey dispatches a keydown for k on el.
func (d *Driver) PressKey(ctx context.Context, el Element, k NamedKey) error {
	if err := el.Dispatch(ctx, namedKeyEvent(k)); err != nil {
		return fmt.Errorf("press %s: %w", k.Key, err)
	}
	return nil
}

// PressDocumentKey dispatches a keydown for k on the document.
func (d *Driver) PressDocumentKey(ctx context.Context, k NamedKey) error {
	if err := d.doc.Dispatch(ctx, namedKeyEvent(k)); err != nil {
		return fmt.Errorf("press %s on document: %w", k.Key, err)
	}
	return nil
}
