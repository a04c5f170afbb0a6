package search

import (
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
)

// Date windows are expressed with the index's date math so the builder
// stays deterministic; the caller's timezone offset is attached to every
// range clause and the index resolves "now" against it.

func rangeClause(field string, bounds Clause, tz string) Clause {
	if tz != "" {
		bounds["time_zone"] = tz
	}
	return Clause{"range": Clause{field: bounds}}
}

// overlapClauses builds the 3-way disjunction for a window [from, to):
// the occurrence starts in the window, ends in the window, or spans it.
func overlapClauses(from, to, tz string) []Clause {
	return []Clause{
		rangeClause("dates.start", Clause{"gte": from, "lt": to}, tz),
		rangeClause("dates.end", Clause{"gte": from, "lt": to}, tz),
		Clause{"bool": Clause{"must": []Clause{
			rangeClause("dates.start", Clause{"lt": from}, tz),
			rangeClause("dates.end", Clause{"gte": to}, tz),
		}}},
	}
}

func anyOf(clauses []Clause) Clause {
	return Clause{"bool": Clause{
		"should":               clauses,
		"minimum_should_match": 1,
	}}
}

// datesClause expands the date facets of params into a single filter
// clause. Returns false when params carry no date constraint at all.
func datesClause(p model.SearchParams) (Clause, bool) {
	tz := p.TZOffset

	if p.DateRange != "" {
		from, to := rangeWindow(p.DateRange)
		return anyOf(overlapClauses(from, to, tz)), true
	}

	switch {
	case p.Start != nil && p.End != nil:
		from := p.Start.Format(time.RFC3339)
		to := p.End.Format(time.RFC3339)
		return anyOf(overlapClauses(from, to, tz)), true
	case p.Start != nil:
		return rangeClause("dates.start", Clause{"gte": p.Start.Format(time.RFC3339)}, tz), true
	case p.End != nil:
		return rangeClause("dates.end", Clause{"lte": p.End.Format(time.RFC3339)}, tz), true
	}

	if p.OnlyFuture {
		return rangeClause("dates.end", Clause{"gte": "now"}, tz), true
	}

	return nil, false
}

// rangeWindow maps a shorthand to its [from, to) date-math boundaries.
// Shorthands are a closed set; an unknown value is a programming error
// upstream and falls through to the today window rather than failing,
// since the builder is total by contract.
func rangeWindow(r model.DateRange) (string, string) {
	switch r {
	case model.DateRangeTomorrow:
		return "now+24h/d", "now+48h/d"
	case model.DateRangeLast24h:
		return "now-24h", "now"
	case model.DateRangeThisWeek:
		return "now/w", "now+1w/w"
	case model.DateRangeNextWeek:
		return "now+1w/w", "now+2w/w"
	default:
		return "now/d", "now+24h/d"
	}
}
