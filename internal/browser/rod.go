package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// buildEventJS constructs a DOM event from the JSON form of an Event.
const buildEventJS = `function buildEvent(ev) {
	const init = { bubbles: ev.bubbles, cancelable: ev.cancelable, composed: ev.composed };
	switch (ev.kind) {
	case 'mouse':
		return new MouseEvent(ev.type, Object.assign(init, { view: window }));
	case 'keyboard':
		return new KeyboardEvent(ev.type, Object.assign(init, {
			key: ev.key, code: ev.code, keyCode: ev.keyCode, which: ev.keyCode
		}));
	case 'input':
		return new InputEvent(ev.type, Object.assign(init, { data: ev.data, inputType: ev.inputType }));
	default:
		return new Event(ev.type, init);
	}
}`

const (
	elementDispatchJS  = `(ev) => { ` + buildEventJS + ` return this.dispatchEvent(buildEvent(ev)); }`
	documentDispatchJS = `(ev) => { ` + buildEventJS + ` return document.dispatchEvent(buildEvent(ev)); }`

	// Hidden tabs stop rendering frames, so the timer keeps polling alive there.
	nextFrameJS = `() => new Promise((resolve) => {
		const timer = setTimeout(resolve, 100);
		requestAnimationFrame(() => { clearTimeout(timer); resolve(); });
	})`

	yieldJS = `() => new Promise((resolve) => setTimeout(resolve, 0))`

	queryTextJS = `(selector, text) => Array.from(document.querySelectorAll(selector))
		.find((el) => (el.textContent || '').includes(text)) || null`
)

// RodDocument is a Document backed by a Rod page.
type RodDocument struct {
	page *rod.Page
}

// NewRodDocument wraps page.
func NewRodDocument(page *rod.Page) *RodDocument {
	return &RodDocument{page: page}
}

func (d *RodDocument) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	found, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	els := make([]Element, len(found))
	for i, el := range found {
		els[i] = &rodElement{el: el}
	}
	return els, nil
}

func (d *RodDocument) QueryText(ctx context.Context, selector, text string) (Element, error) {
	page := d.page.Context(ctx)

	obj, err := page.Evaluate(rod.Eval(queryTextJS, selector, text).ByObject())
	if err != nil {
		return nil, err
	}
	if obj.ObjectID == "" {
		return nil, nil
	}

	el, err := page.ElementFromObject(obj)
	if err != nil {
		return nil, err
	}
	return &rodElement{el: el}, nil
}

func (d *RodDocument) Dispatch(ctx context.Context, ev Event) error {
	_, err := d.page.Context(ctx).Eval(documentDispatchJS, ev)
	return err
}

func (d *RodDocument) NextFrame(ctx context.Context) error {
	_, err := d.page.Context(ctx).Eval(nextFrameJS)
	return err
}

func (d *RodDocument) Yield(ctx context.Context) error {
	_, err := d.page.Context(ctx).Eval(yieldJS)
	return err
}

func (d *RodDocument) URL(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (d *RodDocument) ReadyState(ctx context.Context) (string, error) {
	res, err := d.page.Context(ctx).Eval(`() => document.readyState`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (d *RodDocument) WaitLoad(ctx context.Context) error {
	return d.page.Context(ctx).WaitLoad()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`() => this.textContent || ''`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Value(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`() => this.value || ''`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) SetValue(ctx context.Context, value string) error {
	_, err := e.el.Context(ctx).Eval(`(v) => { this.value = v; }`, value)
	return err
}

func (e *rodElement) Dispatch(ctx context.Context, ev Event) error {
	_, err := e.el.Context(ctx).Eval(elementDispatchJS, ev)
	return err
}

func (e *rodElement) Click(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(`() => this.click()`)
	return err
}
