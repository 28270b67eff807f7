// Package browser provides the page-side primitives used to drive a third-party
// web UI: waiting for elements to render, dispatching synthetic input events and
// typing into inputs one keystroke at a time.
//
// All work happens inside the page. The Go side only sequences it, so the page
// sees the same event objects and the same cooperative scheduling an injected
// script would produce.
package browser

import "context"

// EventKind selects the DOM event constructor used for an Event.
type EventKind string

const (
	KindPlain    EventKind = "event"
	KindMouse    EventKind = "mouse"
	KindKeyboard EventKind = "keyboard"
	KindInput    EventKind = "input"
)

// Event describes a synthetic DOM event. It is built in Go and constructed in
// the page right before dispatch; nothing retains it afterwards.
type Event struct {
	Kind       EventKind `json:"kind"`
	Type       string    `json:"type"`
	Bubbles    bool      `json:"bubbles"`
	Cancelable bool      `json:"cancelable"`
	Composed   bool      `json:"composed"`

	// Keyboard fields
	Key     string `json:"key,omitempty"`
	Code    string `json:"code,omitempty"`
	KeyCode int    `json:"keyCode,omitempty"`

	// Input fields
	Data      string `json:"data,omitempty"`
	InputType string `json:"inputType,omitempty"`
}

// Document is the live page. The host page's own scripts mutate it at any
// time, so callers re-query instead of holding on to elements.
type Document interface {
	// QueryAll returns every element matching selector, in document order.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// QueryText returns the first element matching selector whose textContent
	// contains text, or nil. Matching and filtering happen in one page task,
	// so the element is attached when it is returned.
	QueryText(ctx context.Context, selector, text string) (Element, error)
	// Dispatch dispatches ev on the document itself.
	Dispatch(ctx context.Context, ev Event) error
	// NextFrame blocks until the page renders its next animation frame.
	NextFrame(ctx context.Context) error
	// Yield lets queued page tasks run (a zero-delay timer round trip).
	Yield(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	ReadyState(ctx context.Context) (string, error)
	WaitLoad(ctx context.Context) error
}

// Element is a borrowed reference to a node of a Document. It may be detached
// by the page at any moment after it was found.
type Element interface {
	// Text returns the node's textContent.
	Text(ctx context.Context) (string, error)
	Value(ctx context.Context) (string, error)
	// SetValue writes the value property directly, without firing events.
	SetValue(ctx context.Context, value string) error
	Dispatch(ctx context.Context, ev Event) error
	// Click invokes the element's native activation behavior.
	Click(ctx context.Context) error
}
