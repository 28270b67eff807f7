package posthog

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ProbeResult reports how one UI contract matches a saved page.
type ProbeResult struct {
	Name     string
	Selector string
	Text     string
	Matches  int
}

// Found reports whether at least one element satisfies the probe.
func (r ProbeResult) Found() bool {
	return r.Matches > 0
}

type probe struct {
	name     string
	selector string
	text     string
}

func probes(sel Selectors) []probe {
	return []probe{
		{"Date range button", sel.DateRangeButton, ""},
		{"All time option", sel.DateOption, sel.AllTimeText},
		{"Duration button", sel.DurationButton, ""},
		{"Duration input", sel.DurationInput, ""},
		{"Add filter button", sel.ToolbarButton, sel.AddFilterText},
		{"Filter panel", sel.FilterPanel, ""},
		{"Filter search field", sel.FilterSearchField, ""},
		{"Session ID row", sel.FilterResultRow, sel.SessionIDText},
		{"Filter value input", sel.FilterValueInput, ""},
	}
}

// Probe checks every selector of the workflow against a saved HTML snapshot.
// Several elements only render after an interaction, so a snapshot of the
// initial page is expected to miss the later ones.
func Probe(html string, sel Selectors) ([]ProbeResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	sel = sel.withDefaults()
	var results []ProbeResult
	for _, p := range probes(sel) {
		found := doc.Find(p.selector)
		if p.text != "" {
			found = found.FilterFunction(func(_ int, s *goquery.Selection) bool {
				return strings.Contains(s.Text(), p.text)
			})
		}

		results = append(results, ProbeResult{
			Name:     p.name,
			Selector: p.selector,
			Text:     p.text,
			Matches:  found.Length(),
		})
	}

	return results, nil
}
