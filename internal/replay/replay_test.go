package replay

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BrowserExport(t *testing.T) {
	log, err := Load(filepath.Join("testdata", "export.har"))

	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	assert.Equal(t, 302, log.Entries[0].Response.Status)
	assert.Equal(t, "base64", log.Entries[1].Response.Content.Encoding)
}

func TestLoad_BareEntries(t *testing.T) {
	log, err := Load(filepath.Join("testdata", "bare.json"))

	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, "application/javascript", log.Entries[0].Response.Content.MimeType)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.har"))
	assert.ErrorContains(t, err, "read HAR file")

	_, err = Load(filepath.Join("testdata", "empty.json"))
	assert.ErrorContains(t, err, "has no entries")
}

func TestReplayer_Lookup(t *testing.T) {
	log, err := Load(filepath.Join("testdata", "bare.json"))
	require.NoError(t, err)
	r := New(log)

	entry, found := r.lookup("https://us.posthog.com/static/app.js?v=1")
	require.True(t, found)
	assert.Equal(t, "window.app = true;", entry.Response.Content.Text)

	_, found = r.lookup("https://us.posthog.com/static/app.js?v=2")
	assert.True(t, found, "path match ignores the query")

	_, found = r.lookup("https://us.posthog.com/static/other.js")
	assert.False(t, found)
	assert.Equal(t, 1, r.Len())
}

func TestReplayer_FollowRedirects(t *testing.T) {
	log, err := Load(filepath.Join("testdata", "export.har"))
	require.NoError(t, err)
	r := New(log)

	entry, found := r.lookup("https://us.posthog.com/replay")
	require.True(t, found)

	final := r.followRedirects(entry)
	assert.Equal(t, 200, final.Response.Status)
	assert.Contains(t, final.Request.URL, "sessionRecordingId=abc123")
}

func TestReplayer_RedirectLoopIsBounded(t *testing.T) {
	loop := &Log{Entries: []Entry{{
		Request: Request{Method: "GET", URL: "https://us.posthog.com/a"},
		Response: Response{
			Status:  301,
			Headers: []Header{{Name: "location", Value: "https://us.posthog.com/a"}},
		},
	}}}

	final := New(loop).followRedirects(&loop.Entries[0])
	assert.Equal(t, 301, final.Response.Status)
}

func TestNew_PassthroughOption(t *testing.T) {
	log := &Log{Entries: []Entry{HTMLEntry("https://us.posthog.com/replay", "<p>replay</p>")}}

	assert.False(t, New(log).passthrough, "misses get a 404 by default")
	assert.True(t, New(log, WithPassthrough(true)).passthrough)
}

func skipUnlessBrowser(t *testing.T) {
	if os.Getenv("AUTOMATION_TEST_MODE") != "browser" {
		t.Skip("Skipping: requires AUTOMATION_TEST_MODE=browser")
	}
}

// openHijackedPage routes a fresh page through a replayer built with opts and
// returns it with the URL of a live server that is not in the recording.
func openHijackedPage(t *testing.T, opts ...Option) (*rod.Page, string) {
	t.Helper()

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<body>live</body>")
	}))
	t.Cleanup(live.Close)

	log := &Log{Entries: []Entry{HTMLEntry("https://us.posthog.com/replay", "<body>replay</body>")}}

	b := rod.New().MustConnect()
	t.Cleanup(func() { b.MustClose() })
	page := b.MustPage()

	stop, err := New(log, opts...).Attach(page)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop() })

	return page, live.URL + "/unrecorded"
}

func TestReplayer_UnrecordedURLGets404_Integration(t *testing.T) {
	skipUnlessBrowser(t)

	page, unrecorded := openHijackedPage(t)
	page.MustNavigate(unrecorded).MustWaitLoad()

	assert.Equal(t, "no recording for this URL", page.MustElement("body").MustText())
}

func TestReplayer_PassthroughReachesNetwork_Integration(t *testing.T) {
	skipUnlessBrowser(t)

	page, unrecorded := openHijackedPage(t, WithPassthrough(true))
	page.MustNavigate(unrecorded).MustWaitLoad()

	assert.Equal(t, "live", page.MustElement("body").MustText())

	page.MustNavigate("https://us.posthog.com/replay").MustWaitLoad()
	assert.Equal(t, "replay", page.MustElement("body").MustText(), "recorded URLs are still served from the recording")
}

func TestReplayer_ServesPage_Integration(t *testing.T) {
	skipUnlessBrowser(t)

	log, err := Load(filepath.Join("testdata", "export.har"))
	require.NoError(t, err)

	b := rod.New().MustConnect()
	t.Cleanup(func() { b.MustClose() })
	page := b.MustPage()

	stop, err := New(log).Attach(page)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop() })

	page.MustNavigate("https://us.posthog.com/replay").MustWaitLoad()

	assert.Equal(t, "replay", page.MustElement("body").MustText())
}
