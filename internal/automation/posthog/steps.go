package posthog

import (
	"context"

	"github.com/grez-lucas/posthog-filter/internal/automation"
	"github.com/grez-lucas/posthog-filter/internal/browser"
)

func waitFor(selector string) automation.WaitFunc {
	return func(ctx context.Context, d *browser.Driver) (browser.Element, error) {
		return d.WaitFor(ctx, selector)
	}
}

func waitForText(selector, text string) automation.WaitFunc {
	return func(ctx context.Context, d *browser.Driver) (browser.Element, error) {
		return d.WaitForText(ctx, selector, text)
	}
}

func click(ctx context.Context, d *browser.Driver, el browser.Element) error {
	return d.Click(ctx, el)
}

func typeText(text string) automation.ActFunc {
	return func(ctx context.Context, d *browser.Driver, el browser.Element) error {
		return d.SetInputValue(ctx, el, text)
	}
}

func pressEnter(ctx context.Context, d *browser.Driver, el browser.Element) error {
	return d.PressKey(ctx, el, browser.KeyEnter)
}

// Steps returns the workflow that narrows the recordings list to sessionID:
// widen the date range to all time, drop the minimum duration, then add a
// "Session ID" property filter holding sessionID.
func Steps(sel Selectors, sessionID string) []automation.Step {
	return []automation.Step{
		{Name: "open-date-range", Wait: waitFor(sel.DateRangeButton), Act: click},
		{Name: "select-all-time", Wait: waitForText(sel.DateOption, sel.AllTimeText), Act: click},
		{Name: "open-duration-filter", Wait: waitFor(sel.DurationButton), Act: click},
		{Name: "set-min-duration", Wait: waitFor(sel.DurationInput), Act: typeText(sel.MinDuration)},
		{Name: "open-add-filter", Wait: waitForText(sel.ToolbarButton, sel.AddFilterText), Act: click},
		{
			Name: "search-filter-property",
			Wait: func(ctx context.Context, d *browser.Driver) (browser.Element, error) {
				if _, err := d.WaitFor(ctx, sel.FilterPanel); err != nil {
					return nil, err
				}
				return d.WaitFor(ctx, sel.FilterSearchField)
			},
			Act: typeText(sel.FilterQuery),
		},
		// The row only has to exist: Enter in the search field picks it.
		{Name: "await-session-id-row", Wait: waitForText(sel.FilterResultRow, sel.SessionIDText)},
		{Name: "submit-filter-search", Wait: waitFor(sel.FilterSearchField), Act: pressEnter},
		{Name: "enter-session-id", Wait: waitFor(sel.FilterValueInput), Act: typeText(sessionID)},
		{Name: "submit-session-id", Wait: waitFor(sel.FilterValueInput), Act: pressEnter},
		{
			Name: "dismiss-filter-panel",
			Act: func(ctx context.Context, d *browser.Driver, _ browser.Element) error {
				return d.PressDocumentKey(ctx, browser.KeyEscape)
			},
		},
	}
}
