package posthog

// CSS selectors and text fragments of the PostHog replay UI.
const (
	// Recordings toolbar
	SelectorDateRangeButton = "#daterange_selector"
	SelectorDateOption      = "button.LemonButton--tertiary"
	SelectorDurationButton  = `.flex.flex-wrap.gap-2.items-center > button.LemonButton--secondary:not([data-attr="date-filter"])`
	SelectorDurationInput   = `input[type="number"][placeholder="0"]`
	SelectorToolbarButton   = "button.LemonButton--secondary"

	// Taxonomic filter panel
	SelectorFilterPanel       = ".taxonomic-filter"
	SelectorFilterSearchField = `.taxonomic-filter input[data-attr="taxonomic-filter-searchfield"]`
	SelectorFilterResultRow   = ".taxonomic-list-row"
	SelectorFilterValueInput  = `div[data-attr="taxonomic-value-select"] input`

	TextAllTime   = "All time"
	TextAddFilter = "Add filter"
	TextSessionID = "Session ID"

	// Typed values
	ValueMinDuration = "0"
	ValueFilterQuery = "session id"
)

// Selectors gathers every UI contract the workflow relies on. The defaults
// track the current PostHog UI; each can be overridden from configuration when
// PostHog ships a change before this package catches up.
type Selectors struct {
	DateRangeButton   string `mapstructure:"date_range_button"`
	DateOption        string `mapstructure:"date_option"`
	DurationButton    string `mapstructure:"duration_button"`
	DurationInput     string `mapstructure:"duration_input"`
	ToolbarButton     string `mapstructure:"toolbar_button"`
	FilterPanel       string `mapstructure:"filter_panel"`
	FilterSearchField string `mapstructure:"filter_search_field"`
	FilterResultRow   string `mapstructure:"filter_result_row"`
	FilterValueInput  string `mapstructure:"filter_value_input"`

	AllTimeText   string `mapstructure:"all_time_text"`
	AddFilterText string `mapstructure:"add_filter_text"`
	SessionIDText string `mapstructure:"session_id_text"`

	MinDuration string `mapstructure:"min_duration"`
	FilterQuery string `mapstructure:"filter_query"`
}

// DefaultSelectors returns the selectors of the current PostHog UI.
func DefaultSelectors() Selectors {
	return Selectors{
		DateRangeButton:   SelectorDateRangeButton,
		DateOption:        SelectorDateOption,
		DurationButton:    SelectorDurationButton,
		DurationInput:     SelectorDurationInput,
		ToolbarButton:     SelectorToolbarButton,
		FilterPanel:       SelectorFilterPanel,
		FilterSearchField: SelectorFilterSearchField,
		FilterResultRow:   SelectorFilterResultRow,
		FilterValueInput:  SelectorFilterValueInput,
		AllTimeText:       TextAllTime,
		AddFilterText:     TextAddFilter,
		SessionIDText:     TextSessionID,
		MinDuration:       ValueMinDuration,
		FilterQuery:       ValueFilterQuery,
	}
}

// withDefaults fills empty fields from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.DateRangeButton, d.DateRangeButton)
	fill(&s.DateOption, d.DateOption)
	fill(&s.DurationButton, d.DurationButton)
	fill(&s.DurationInput, d.DurationInput)
	fill(&s.ToolbarButton, d.ToolbarButton)
	fill(&s.FilterPanel, d.FilterPanel)
	fill(&s.FilterSearchField, d.FilterSearchField)
	fill(&s.FilterResultRow, d.FilterResultRow)
	fill(&s.FilterValueInput, d.FilterValueInput)
	fill(&s.AllTimeText, d.AllTimeText)
	fill(&s.AddFilterText, d.AddFilterText)
	fill(&s.SessionIDText, d.SessionIDText)
	fill(&s.MinDuration, d.MinDuration)
	fill(&s.FilterQuery, d.FilterQuery)
	return s
}
