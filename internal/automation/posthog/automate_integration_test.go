package posthog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/grez-lucas/posthog-filter/internal/automation"
	"github.com/grez-lucas/posthog-filter/internal/browser"
	"github.com/grez-lucas/posthog-filter/internal/replay"
)

// skipUnlessBrowser skips tests that need a local Chromium.
func skipUnlessBrowser(t *testing.T) {
	if os.Getenv("AUTOMATION_TEST_MODE") != "browser" {
		t.Skip("Skipping: requires AUTOMATION_TEST_MODE=browser")
	}
}

// openReplayPage serves the replay page fixture for href and navigates to it.
func openReplayPage(t *testing.T, href string) *rod.Page {
	t.Helper()

	b := rod.New().MustConnect()
	t.Cleanup(func() { b.MustClose() })
	page := b.MustPage()

	har := &replay.Log{Entries: []replay.Entry{replay.HTMLEntry(href, loadFixture(t, "replay_page"))}}
	stop, err := replay.New(har).Attach(page)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop() })

	page.MustNavigate(href)
	return page
}

func TestAutomation_ReplayPage_Integration(t *testing.T) {
	skipUnlessBrowser(t)

	page := openReplayPage(t, replayURL)
	core, logs := observer.New(zapcore.InfoLevel)
	driver := browser.NewDriver(browser.NewRodDocument(page), browser.WithTimeout(5*time.Second))
	flow := New(driver, WithLogger(zap.New(core)))

	res, err := flow.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, automation.StateCompleted, res.State)
	assert.Equal(t, "abc123", page.MustEval(`() => window.__applied`).Str())
	assert.True(t, page.MustEval(`() => window.__panelClosed`).Bool())
	assert.Equal(t, "0", page.MustEval(`() => document.querySelector('input[type="number"]').value`).Str())
	assert.Equal(t, 1, logs.FilterMessage("PostHog automation completed successfully").Len())
}

func TestAutomation_ReplayPage_NoSessionID_Integration(t *testing.T) {
	skipUnlessBrowser(t)

	href := "https://us.posthog.com/project/1/replay/recent"
	page := openReplayPage(t, href)
	core, logs := observer.New(zapcore.InfoLevel)
	flow := New(browser.NewDriver(browser.NewRodDocument(page)), WithLogger(zap.New(core)))

	_, err := flow.Start(context.Background())

	require.ErrorIs(t, err, automation.ErrNotActivated)
	assert.Equal(t, 0, page.MustEval(`() => document.getElementById('popover').children.length`).Int())
	assert.Equal(t, 1, logs.FilterMessage("No session recording ID found in URL").Len())
}
