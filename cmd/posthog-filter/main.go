// posthog-filter opens a PostHog session replay link in Chromium and applies
// a "Session ID" filter for the recording named in its sessionRecordingId
// parameter.
//
// Usage:
//
//	posthog-filter run "https://us.posthog.com/project/1/replay?sessionRecordingId=..."
//	posthog-filter snapshot <url> -o page.html
//	posthog-filter probe page.html
package main

import (
	"os"
)

func main() {
	os.Exit(execute())
}
