// Package replay serves recorded HTTP responses to a Rod page, so a workflow
// can be run offline against a captured PostHog session.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// Log is the subset of HAR 1.2 the replayer needs.
type Log struct {
	Entries []Entry `json:"entries"`
}

// Entry is a single recorded request/response pair.
type Entry struct {
	Request  Request  `json:"request"`
	Response Response `json:"response"`
}

type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type Response struct {
	Status  int      `json:"status"`
	Headers []Header `json:"headers,omitempty"`
	Content Content  `json:"content"`
}

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Content is a response body. Text is base64 encoded when Encoding says so.
type Content struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding,omitempty"`
}

// archive is the envelope browsers write when exporting a HAR file.
type archive struct {
	Log Log `json:"log"`
}

// Load reads a HAR file. Both the browser export format (entries wrapped in a
// "log" object) and a bare {"entries": [...]} document are accepted.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read HAR file: %w", err)
	}

	var wrapped archive
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Log.Entries) > 0 {
		return &wrapped.Log, nil
	}

	var bare Log
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parse HAR JSON: %w", err)
	}
	if len(bare.Entries) == 0 {
		return nil, fmt.Errorf("HAR file %s has no entries", path)
	}

	return &bare, nil
}

// HTMLEntry builds a 200 text/html entry for url.
func HTMLEntry(url, html string) Entry {
	return Entry{
		Request: Request{Method: "GET", URL: url},
		Response: Response{
			Status:  200,
			Content: Content{MimeType: "text/html; charset=utf-8", Text: html},
		},
	}
}
