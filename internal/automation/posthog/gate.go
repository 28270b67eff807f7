package posthog

import (
	"net/url"
	"strings"
)

const (
	// TargetDomain must appear in the page URL for the workflow to activate.
	TargetDomain = "posthog.com"
	// SessionParam is the query parameter carrying the recording to filter on.
	SessionParam = "sessionRecordingId"
)

// IsTargetPage reports whether href belongs to PostHog.
func IsTargetPage(href string) bool {
	return strings.Contains(href, TargetDomain)
}

// SessionID returns the session recording identifier carried by href, or ""
// when the parameter is absent, empty or href does not parse.
func SessionID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get(SessionParam)
}
