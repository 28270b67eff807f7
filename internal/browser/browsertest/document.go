// Package browsertest provides an in-memory browser.Document for tests that
// exercise waits and synthetic interactions without launching Chromium.
package browsertest

import (
	"context"
	"strings"
	"time"

	"github.com/grez-lucas/posthog-filter/internal/browser"
)

// Dispatched records one event and where it was dispatched.
type Dispatched struct {
	Target string // element name, or "document"
	Event  browser.Event
}

// Document is a scripted page. Elements match selectors by exact string, which
// is enough to model the handful of selectors a workflow uses.
type Document struct {
	Href  string
	State string

	// FrameDelay is slept on every NextFrame so that waits observe real time.
	FrameDelay time.Duration

	// OnFrame runs on every NextFrame, after the delay.
	OnFrame func(frame int)

	// OnDocumentEvent runs after an event is dispatched on the document.
	OnDocumentEvent func(ev browser.Event)

	// LoadErr is returned by WaitLoad.
	LoadErr error

	elements []*Element
	log      []Dispatched
	frames   int
	yields   int
	loads    int
	queries  int
}

// NewDocument returns a loaded document at href.
func NewDocument(href string) *Document {
	return &Document{
		Href:       href,
		State:      "complete",
		FrameDelay: time.Millisecond,
	}
}

// Add appends an attached element that matches selectors.
func (d *Document) Add(name, text string, selectors ...string) *Element {
	el := d.AddDetached(name, text, selectors...)
	el.attached = true
	return el
}

// AddDetached appends an element that queries will not find until Attach.
func (d *Document) AddDetached(name, text string, selectors ...string) *Element {
	el := &Element{
		doc:       d,
		Name:      name,
		text:      text,
		selectors: make(map[string]bool, len(selectors)),
	}
	for _, s := range selectors {
		el.selectors[s] = true
	}
	d.elements = append(d.elements, el)
	return el
}

// Find returns the element called name, or nil.
func (d *Document) Find(name string) *Element {
	for _, el := range d.elements {
		if el.Name == name {
			return el
		}
	}
	return nil
}

// Events returns every dispatched event in dispatch order.
func (d *Document) Events() []Dispatched {
	return append([]Dispatched(nil), d.log...)
}

// EventTypes returns "target:type" for every dispatched event.
func (d *Document) EventTypes() []string {
	out := make([]string, len(d.log))
	for i, rec := range d.log {
		out[i] = rec.Target + ":" + rec.Event.Type
	}
	return out
}

func (d *Document) Frames() int { return d.frames }
func (d *Document) Yields() int { return d.yields }
func (d *Document) Loads() int { return d.loads }
func (d *Document) Queries() int { return d.queries }

func (d *Document) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.queries++

	var out []browser.Element
	for _, el := range d.elements {
		if el.attached && el.selectors[selector] {
			out = append(out, el)
		}
	}
	return out, nil
}

// QueryText filters in one pass without calling Element.Text, like a page
// that filters inside a single task.
func (d *Document) QueryText(ctx context.Context, selector, text string) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.queries++

	for _, el := range d.elements {
		if el.attached && el.selectors[selector] && strings.Contains(el.text, text) {
			return el, nil
		}
	}
	return nil, nil
}

func (d *Document) Dispatch(ctx context.Context, ev browser.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log = append(d.log, Dispatched{Target: "document", Event: ev})
	if d.OnDocumentEvent != nil {
		d.OnDocumentEvent(ev)
	}
	return nil
}

func (d *Document) NextFrame(ctx context.Context) error {
	d.frames++
	if d.FrameDelay > 0 {
		t := time.NewTimer(d.FrameDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if d.OnFrame != nil {
		d.OnFrame(d.frames)
	}
	return nil
}

func (d *Document) Yield(ctx context.Context) error {
	d.yields++
	return ctx.Err()
}

func (d *Document) URL(context.Context) (string, error) {
	return d.Href, nil
}

func (d *Document) ReadyState(context.Context) (string, error) {
	return d.State, nil
}

func (d *Document) WaitLoad(ctx context.Context) error {
	d.loads++
	if d.LoadErr != nil {
		return d.LoadErr
	}
	d.State = "complete"
	return ctx.Err()
}
