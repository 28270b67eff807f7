package browsertest

import (
	"context"

	"github.com/grez-lucas/posthog-filter/internal/browser"
)

// Element is a node of a Document.
type Element struct {
	Name string

	// ClickErr is returned by the native Click.
	ClickErr error

	// OnEvent runs after an event is dispatched on the element.
	OnEvent func(ev browser.Event)

	// OnTextRead runs before Text returns, standing in for the page changing
	// between two calls.
	OnTextRead func()

	doc       *Document
	text      string
	value     string
	selectors map[string]bool
	attached  bool
	clicks    int
	textReads int
}

// Attach makes the element visible to queries.
func (e *Element) Attach() { e.attached = true }

// Detach hides the element from queries.
func (e *Element) Detach() { e.attached = false }

func (e *Element) Attached() bool { return e.attached }

// NativeClicks counts calls to Click.
func (e *Element) NativeClicks() int { return e.clicks }

// TextReads counts calls to Text.
func (e *Element) TextReads() int { return e.textReads }

// CurrentValue returns the value without a context.
func (e *Element) CurrentValue() string { return e.value }

// Events returns the events dispatched on this element, in order.
func (e *Element) Events() []browser.Event {
	var out []browser.Event
	for _, rec := range e.doc.log {
		if rec.Target == e.Name {
			out = append(out, rec.Event)
		}
	}
	return out
}

func (e *Element) Text(ctx context.Context) (string, error) {
	e.textReads++
	if e.OnTextRead != nil {
		e.OnTextRead()
	}
	return e.text, ctx.Err()
}

func (e *Element) Value(ctx context.Context) (string, error) {
	return e.value, ctx.Err()
}

func (e *Element) SetValue(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.value = value
	return nil
}

func (e *Element) Dispatch(ctx context.Context, ev browser.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.doc.log = append(e.doc.log, Dispatched{Target: e.Name, Event: ev})
	if e.OnEvent != nil {
		e.OnEvent(ev)
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.clicks++
	e.doc.log = append(e.doc.log, Dispatched{Target: e.Name, Event: browser.Event{Type: "native-click"}})
	return e.ClickErr
}
