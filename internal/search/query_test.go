package search

import (
	"testing"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPart(t *testing.T, body Clause) Clause {
	t.Helper()

	query, ok := body["query"].(Clause)
	require.True(t, ok)
	b, ok := query["bool"].(Clause)
	require.True(t, ok)

	return b
}

func TestBuildEventsQueryDefaultExcludesSpikedAndKilled(t *testing.T) {
	body := BuildEventsQuery(model.SearchParams{})
	b := boolPart(t, body)

	assert.NotContains(t, b, "must")
	assert.NotContains(t, b, "filter")
	assert.Equal(t, []Clause{
		{"terms": Clause{"state": []string{"spiked", "killed"}}},
	}, b["must_not"])
}

func TestBuildEventsQuerySpikeState(t *testing.T) {
	tests := []struct {
		name        string
		state       model.SpikeState
		wantMustNot []Clause
		wantMust    []Clause
	}{
		{
			name:  "both keeps spiked visible",
			state: model.SpikeStateBoth,
			wantMustNot: []Clause{
				{"term": Clause{"state": "killed"}},
			},
		},
		{
			name:  "spiked only",
			state: model.SpikeStateSpiked,
			wantMustNot: []Clause{
				{"term": Clause{"state": "killed"}},
			},
			wantMust: []Clause{
				{"term": Clause{"state": "spiked"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boolPart(t, BuildEventsQuery(model.SearchParams{SpikeState: tt.state}))

			assert.Equal(t, tt.wantMustNot, b["must_not"])
			if tt.wantMust == nil {
				assert.NotContains(t, b, "must")
			} else {
				assert.Equal(t, tt.wantMust, b["must"])
			}
		})
	}
}

func TestBuildEventsQueryFacets(t *testing.T) {
	b := boolPart(t, BuildEventsQuery(model.SearchParams{
		FullText:     "press conference",
		IDs:          []string{"e1", "e2"},
		RecurrenceID: "rec1",
		Calendars:    []string{"sport"},
		Categories:   []string{"t"},
		Subjects:     []string{"01000000"},
		Places:       []string{"NO"},
		Slugline:     "olympics",
		Sources:      []string{"reuters"},
		PostedOnly:   true,
	}))

	must, ok := b["must"].([]Clause)
	require.True(t, ok)

	assert.Contains(t, must, Clause{"query_string": Clause{
		"query":            "press conference",
		"lenient":          true,
		"default_operator": "AND",
	}})
	assert.Contains(t, must, Clause{"terms": Clause{"_id": []string{"e1", "e2"}}})
	assert.Contains(t, must, Clause{"term": Clause{"recurrence_id": "rec1"}})
	assert.Contains(t, must, Clause{"terms": Clause{"calendars.qcode": []string{"sport"}}})
	assert.Contains(t, must, Clause{"terms": Clause{"anpa_category.qcode": []string{"t"}}})
	assert.Contains(t, must, Clause{"terms": Clause{"subject.qcode": []string{"01000000"}}})
	assert.Contains(t, must, Clause{"terms": Clause{"place.qcode": []string{"NO"}}})
	assert.Contains(t, must, Clause{"terms": Clause{"source": []string{"reuters"}}})
	assert.Contains(t, must, Clause{"term": Clause{"pubstatus": "usable"}})
	assert.Contains(t, must, Clause{"query_string": Clause{
		"query":            "olympics",
		"lenient":          false,
		"default_operator": "AND",
		"fields":           []string{"slugline"},
	}})
}

func TestBuildEventsQueryLocationPrefersQcode(t *testing.T) {
	b := boolPart(t, BuildEventsQuery(model.SearchParams{
		Location: &model.LocationRef{Qcode: "loc1", Name: "Town hall"},
	}))
	must := b["must"].([]Clause)
	assert.Contains(t, must, Clause{"term": Clause{"location.qcode": "loc1"}})
	assert.NotContains(t, must, Clause{"term": Clause{"location.name": "Town hall"}})

	b = boolPart(t, BuildEventsQuery(model.SearchParams{
		Location: &model.LocationRef{Name: "Town hall"},
	}))
	must = b["must"].([]Clause)
	assert.Contains(t, must, Clause{"term": Clause{"location.name": "Town hall"}})
}

func TestBuildPlanningQueryFacets(t *testing.T) {
	b := boolPart(t, BuildPlanningQuery(model.SearchParams{
		EventItem: "e1",
		Agendas:   []string{"a1", "a2"},
	}))

	must := b["must"].([]Clause)
	assert.Contains(t, must, Clause{"term": Clause{"event_item": "e1"}})
	assert.Contains(t, must, Clause{"terms": Clause{"agendas": []string{"a1", "a2"}}})
}

func TestDatesClauseShorthands(t *testing.T) {
	tests := []struct {
		name     string
		rng      model.DateRange
		from, to string
	}{
		{"today", model.DateRangeToday, "now/d", "now+24h/d"},
		{"tomorrow", model.DateRangeTomorrow, "now+24h/d", "now+48h/d"},
		{"last 24h", model.DateRangeLast24h, "now-24h", "now"},
		{"this week", model.DateRangeThisWeek, "now/w", "now+1w/w"},
		{"next week", model.DateRangeNextWeek, "now+1w/w", "now+2w/w"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := datesClause(model.SearchParams{DateRange: tt.rng, TZOffset: "+11:00"})
			require.True(t, ok)

			inner := c["bool"].(Clause)
			assert.Equal(t, 1, inner["minimum_should_match"])

			should := inner["should"].([]Clause)
			require.Len(t, should, 3)

			// starts in window, ends in window, spans the window
			assert.Equal(t, Clause{"range": Clause{"dates.start": Clause{
				"gte": tt.from, "lt": tt.to, "time_zone": "+11:00",
			}}}, should[0])
			assert.Equal(t, Clause{"range": Clause{"dates.end": Clause{
				"gte": tt.from, "lt": tt.to, "time_zone": "+11:00",
			}}}, should[1])
			assert.Equal(t, Clause{"bool": Clause{"must": []Clause{
				{"range": Clause{"dates.start": Clause{"lt": tt.from, "time_zone": "+11:00"}}},
				{"range": Clause{"dates.end": Clause{"gte": tt.to, "time_zone": "+11:00"}}},
			}}}, should[2])
		})
	}
}

func TestDatesClauseExplicitBounds(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 17, 0, 0, 0, time.UTC)

	t.Run("start only", func(t *testing.T) {
		c, ok := datesClause(model.SearchParams{Start: &start})
		require.True(t, ok)
		assert.Equal(t, Clause{"range": Clause{"dates.start": Clause{
			"gte": "2024-03-01T09:00:00Z",
		}}}, c)
	})

	t.Run("end only", func(t *testing.T) {
		c, ok := datesClause(model.SearchParams{End: &end})
		require.True(t, ok)
		assert.Equal(t, Clause{"range": Clause{"dates.end": Clause{
			"lte": "2024-03-02T17:00:00Z",
		}}}, c)
	})

	t.Run("both bounds become overlap disjunction", func(t *testing.T) {
		c, ok := datesClause(model.SearchParams{Start: &start, End: &end})
		require.True(t, ok)
		should := c["bool"].(Clause)["should"].([]Clause)
		assert.Len(t, should, 3)
	})

	t.Run("only future", func(t *testing.T) {
		c, ok := datesClause(model.SearchParams{OnlyFuture: true})
		require.True(t, ok)
		assert.Equal(t, Clause{"range": Clause{"dates.end": Clause{"gte": "now"}}}, c)
	})

	t.Run("no constraint", func(t *testing.T) {
		_, ok := datesClause(model.SearchParams{})
		assert.False(t, ok)
	})
}

func TestBodyOmitsEmptyLists(t *testing.T) {
	q := &Query{}
	q.must(term("state", "draft"))

	body := q.Body()
	b := boolPart(t, body)

	assert.Contains(t, b, "must")
	assert.NotContains(t, b, "must_not")
	assert.NotContains(t, b, "filter")
}
