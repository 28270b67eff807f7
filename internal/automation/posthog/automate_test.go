package posthog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/grez-lucas/posthog-filter/internal/automation"
	"github.com/grez-lucas/posthog-filter/internal/browser"
	"github.com/grez-lucas/posthog-filter/internal/browser/browsertest"
)

const replayURL = "https://us.posthog.com/project/1/replay/recent?sessionRecordingId=abc123"

// fakeReplayPage scripts the recordings toolbar: each control attaches the
// next one when the workflow interacts with it.
type fakeReplayPage struct {
	doc         *browsertest.Document
	applied     string
	panelClosed bool
}

func newFakeReplayPage(href string) *fakeReplayPage {
	p := &fakeReplayPage{doc: browsertest.NewDocument(href)}
	doc := p.doc

	dateRange := doc.Add("date-range", "Last 7 days", SelectorDateRangeButton, SelectorToolbarButton)
	doc.AddDetached("last-30", "Last 30 days", SelectorDateOption)
	doc.AddDetached("all-time", "All time", SelectorDateOption)
	dateRange.OnEvent = onClick(func() {
		doc.Find("last-30").Attach()
		doc.Find("all-time").Attach()
	})

	duration := doc.Add("duration", "Duration > 1s", SelectorDurationButton, SelectorToolbarButton)
	durationInput := doc.AddDetached("duration-input", "", SelectorDurationInput)
	duration.OnEvent = onClick(durationInput.Attach)

	doc.Add("save", "Save filters", SelectorToolbarButton)
	addFilter := doc.Add("add-filter", "Add filter", SelectorToolbarButton)
	panel := doc.AddDetached("panel", "", SelectorFilterPanel)
	search := doc.AddDetached("search", "", SelectorFilterSearchField)
	row := doc.AddDetached("row", "Session ID", SelectorFilterResultRow)
	value := doc.AddDetached("value", "", SelectorFilterValueInput)

	addFilter.OnEvent = onClick(func() {
		panel.Attach()
		search.Attach()
	})
	search.OnEvent = func(ev browser.Event) {
		switch {
		case ev.Type == "input" && search.CurrentValue() == ValueFilterQuery:
			row.Attach()
		case ev.Type == "keydown" && ev.Key == "Enter" && row.Attached():
			value.Attach()
		}
	}
	value.OnEvent = func(ev browser.Event) {
		if ev.Type == "keydown" && ev.Key == "Enter" {
			p.applied = value.CurrentValue()
		}
	}
	doc.OnDocumentEvent = func(ev browser.Event) {
		if ev.Key == "Escape" {
			for _, el := range []*browsertest.Element{panel, search, row, value} {
				el.Detach()
			}
			p.panelClosed = true
		}
	}

	return p
}

func onClick(fn func()) func(browser.Event) {
	return func(ev browser.Event) {
		if ev.Type == "click" {
			fn()
		}
	}
}

func newTestAutomation(doc browser.Document, timeout time.Duration, opts ...Option) (*Automation, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	driver := browser.NewDriver(doc, browser.WithTimeout(timeout))
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return New(driver, opts...), logs
}

func TestAutomation_Start_Success(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	a, logs := newTestAutomation(page.doc, time.Second)

	res, err := a.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, automation.StateCompleted, res.State)
	assert.Equal(t, len(Steps(DefaultSelectors(), "abc123")), res.Completed)

	assert.Equal(t, "abc123", page.applied)
	assert.True(t, page.panelClosed)
	assert.Equal(t, ValueMinDuration, page.doc.Find("duration-input").CurrentValue())
	assert.Equal(t, ValueFilterQuery, page.doc.Find("search").CurrentValue())
	assert.Zero(t, page.doc.Loads(), "a loaded page runs immediately")

	assert.Empty(t, page.doc.Find("last-30").Events(), "only the All time option is clicked")
	assert.Empty(t, page.doc.Find("save").Events(), "only the Add filter button is clicked")
	assert.Empty(t, page.doc.Find("row").Events(), "the result row is never acted upon")

	assert.Equal(t, 1, logs.FilterMessage("PostHog automation completed successfully").Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAutomation_Start_WaitsForLoad(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	page.doc.State = "interactive"
	a, _ := newTestAutomation(page.doc, time.Second)

	res, err := a.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, page.doc.Loads())
	assert.Equal(t, automation.StateCompleted, res.State)
}

func TestAutomation_Start_LoadFailure(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	page.doc.State = "loading"
	page.doc.LoadErr = errors.New("navigation aborted")
	a, _ := newTestAutomation(page.doc, time.Second)

	res, err := a.Start(context.Background())

	require.ErrorContains(t, err, "navigation aborted")
	assert.Nil(t, res)
	assert.Empty(t, page.doc.Events())
}

func TestAutomation_Start_MissingSessionID(t *testing.T) {
	page := newFakeReplayPage("https://us.posthog.com/project/1/replay/recent")
	a, logs := newTestAutomation(page.doc, time.Second)

	res, err := a.Start(context.Background())

	require.ErrorIs(t, err, automation.ErrNotActivated)
	assert.Nil(t, res)
	assert.Empty(t, page.doc.Events(), "no DOM action without a session ID")
	assert.Zero(t, page.doc.Queries())
	assert.Equal(t, 1, logs.FilterMessage("No session recording ID found in URL").Len())
}

func TestAutomation_Start_OtherDomain(t *testing.T) {
	page := newFakeReplayPage("https://example.com/replay?sessionRecordingId=abc123")
	a, logs := newTestAutomation(page.doc, time.Second)

	_, err := a.Start(context.Background())

	require.ErrorIs(t, err, automation.ErrNotActivated)
	assert.Empty(t, page.doc.Events())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAutomation_StepTimeoutLogsOnceAndStops(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	// The duration button never renders.
	page.doc.Find("duration").Detach()
	a, logs := newTestAutomation(page.doc, 20*time.Millisecond)

	res, err := a.Automate(context.Background())

	require.ErrorIs(t, err, browser.ErrTimeout)
	assert.Equal(t, automation.StateFailed, res.State)
	assert.Equal(t, 2, res.Completed)

	var stepErr *automation.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 3, stepErr.Index)
	assert.Equal(t, "open-duration-filter", stepErr.Step)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Empty(t, page.doc.Find("add-filter").Events(), "no step runs after the failure")
	assert.NotEmpty(t, page.doc.Find("all-time").Events(), "earlier steps keep their effects")
	assert.Zero(t, logs.FilterMessage("PostHog automation completed successfully").Len())
}

func TestAutomation_SessionIDRowMissing(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	page.doc.Find("search").OnEvent = nil
	a, logs := newTestAutomation(page.doc, 20*time.Millisecond)

	res, err := a.Automate(context.Background())

	require.ErrorIs(t, err, browser.ErrTimeout)
	assert.Equal(t, "await-session-id-row", res.Err.Step)
	assert.EqualError(t, errors.Unwrap(err),
		`element .taxonomic-list-row with text "Session ID" not found after 20ms`)
	assert.Empty(t, page.applied)
	assert.False(t, page.panelClosed)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAutomation_Cancelled(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	page.doc.Find("duration").Detach()
	a, _ := newTestAutomation(page.doc, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := a.Automate(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, automation.StateFailed, res.State)
}

func TestAutomation_CustomSelectors(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	page.doc.Add("tous", "Tout le temps", "button.custom-option")
	page.doc.Find("date-range").OnEvent = nil

	a, _ := newTestAutomation(page.doc, time.Second, WithSelectors(Selectors{
		DateOption:  "button.custom-option",
		AllTimeText: "Tout le temps",
	}))

	res, err := a.Automate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, automation.StateCompleted, res.State)
	assert.NotEmpty(t, page.doc.Find("tous").Events())
	assert.Equal(t, "abc123", page.applied)
}

func TestAutomation_RunnerTransitions(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	var states []automation.State
	a, _ := newTestAutomation(page.doc, time.Second, WithRunnerOptions(
		automation.WithTransitions(func(_ int, _ string, s automation.State) {
			states = append(states, s)
		}),
	))

	_, err := a.Automate(context.Background())

	require.NoError(t, err)
	require.NotEmpty(t, states)
	assert.Equal(t, automation.StateNotStarted, states[0])
	assert.Equal(t, automation.StateCompleted, states[len(states)-1])
	assert.NotContains(t, states, automation.StateFailed)
}

func TestAutomation_AutomateSkipsLoadWait(t *testing.T) {
	page := newFakeReplayPage(replayURL)
	page.doc.State = "interactive"
	a, _ := newTestAutomation(page.doc, time.Second)

	res, err := a.Automate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, automation.StateCompleted, res.State)
	assert.Zero(t, page.doc.Loads(), "the caller owns the load wait")
}
