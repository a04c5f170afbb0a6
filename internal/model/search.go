package model

import "time"

// SpikeState controls which workflow states a search may return.
type SpikeState string

const (
	SpikeStateNotSpiked SpikeState = "draft"
	SpikeStateSpiked    SpikeState = "spiked"
	SpikeStateBoth      SpikeState = "both"
)

type DateRange string

const (
	DateRangeToday    DateRange = "today"
	DateRangeTomorrow DateRange = "tomorrow"
	DateRangeLast24h  DateRange = "last_24h"
	DateRangeThisWeek DateRange = "this_week"
	DateRangeNextWeek DateRange = "next_week"
)

type LocationRef struct {
	Qcode string `json:"qcode,omitempty"`
	Name  string `json:"name,omitempty"`
}

// SearchParams describes one search against the backend index. Values are
// never mutated in place; a refinement copies the value and overrides
// fields, so the previous params stay valid as the refetch baseline.
type SearchParams struct {
	FullText     string       `json:"full_text,omitempty"`
	IDs          []string     `json:"ids,omitempty"`
	RecurrenceID string       `json:"recurrence_id,omitempty"`
	EventItem    string       `json:"event_item,omitempty"`
	Calendars    []string     `json:"calendars,omitempty"`
	Agendas      []string     `json:"agendas,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
	Subjects     []string     `json:"subjects,omitempty"`
	Places       []string     `json:"places,omitempty"`
	Slugline     string       `json:"slugline,omitempty"`
	Sources      []string     `json:"sources,omitempty"`
	Location     *LocationRef `json:"location,omitempty"`
	PostedOnly   bool         `json:"posted_only,omitempty"`

	SpikeState SpikeState `json:"spike_state,omitempty"`

	DateRange  DateRange  `json:"date_range,omitempty"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	TZOffset   string     `json:"tz_offset,omitempty"`
	OnlyFuture bool       `json:"only_future,omitempty"`

	Page       int `json:"page,omitempty"`
	MaxResults int `json:"max_results,omitempty"`
}

// WithPage returns a copy of the params on a different page.
func (p SearchParams) WithPage(page int) SearchParams {
	p.Page = page
	return p
}
