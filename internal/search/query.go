// Package search translates search parameters into the boolean/filter
// query structure the backend search endpoint expects. Everything here is
// a pure function over its input: no clocks, no network, no errors.
package search

import "github.com/newsdesk/planning-coordinator/internal/model"

// Clause is one node of the backend's query DSL.
type Clause map[string]interface{}

// Query accumulates must/must_not/filter clauses and renders the full
// request body.
type Query struct {
	Must    []Clause
	MustNot []Clause
	Filter  []Clause
}

func (q *Query) must(c Clause) {
	q.Must = append(q.Must, c)
}

func (q *Query) mustNot(c Clause) {
	q.MustNot = append(q.MustNot, c)
}

func (q *Query) filter(c Clause) {
	q.Filter = append(q.Filter, c)
}

// Body renders the query in the shape the search endpoint consumes.
// Absent clause lists are omitted entirely, never sent empty.
func (q *Query) Body() Clause {
	b := Clause{}
	if len(q.Must) > 0 {
		b["must"] = q.Must
	}
	if len(q.MustNot) > 0 {
		b["must_not"] = q.MustNot
	}
	if len(q.Filter) > 0 {
		b["filter"] = q.Filter
	}
	return Clause{"query": Clause{"bool": b}}
}

func term(field string, value interface{}) Clause {
	return Clause{"term": Clause{field: value}}
}

func terms(field string, values []string) Clause {
	return Clause{"terms": Clause{field: values}}
}

func queryString(text string) Clause {
	return Clause{"query_string": Clause{
		"query":            text,
		"lenient":          true,
		"default_operator": "AND",
	}}
}

// BuildEventsQuery translates params into the events search body.
func BuildEventsQuery(p model.SearchParams) Clause {
	q := &Query{}

	applySpikeState(q, p.SpikeState)

	if p.FullText != "" {
		q.must(queryString(p.FullText))
	}
	if len(p.IDs) > 0 {
		q.must(terms("_id", p.IDs))
	}
	if p.RecurrenceID != "" {
		q.must(term("recurrence_id", p.RecurrenceID))
	}
	if len(p.Calendars) > 0 {
		q.must(terms("calendars.qcode", p.Calendars))
	}
	if len(p.Categories) > 0 {
		q.must(terms("anpa_category.qcode", p.Categories))
	}
	if len(p.Subjects) > 0 {
		q.must(terms("subject.qcode", p.Subjects))
	}
	if len(p.Places) > 0 {
		q.must(terms("place.qcode", p.Places))
	}
	if p.Slugline != "" {
		q.must(Clause{"query_string": Clause{
			"query":            p.Slugline,
			"lenient":          false,
			"default_operator": "AND",
			"fields":           []string{"slugline"},
		}})
	}
	if len(p.Sources) > 0 {
		q.must(terms("source", p.Sources))
	}
	if p.Location != nil {
		if p.Location.Qcode != "" {
			q.must(term("location.qcode", p.Location.Qcode))
		} else if p.Location.Name != "" {
			q.must(term("location.name", p.Location.Name))
		}
	}
	if p.PostedOnly {
		q.must(term("pubstatus", string(model.PostStateUsable)))
	}

	if c, ok := datesClause(p); ok {
		q.filter(c)
	}

	return q.Body()
}

// BuildPlanningQuery translates params into the planning search body.
// Planning shares the spike-state rules with events; the linking facets
// differ (event_item, recurrence id, agendas).
func BuildPlanningQuery(p model.SearchParams) Clause {
	q := &Query{}

	applySpikeState(q, p.SpikeState)

	if p.FullText != "" {
		q.must(queryString(p.FullText))
	}
	if len(p.IDs) > 0 {
		q.must(terms("_id", p.IDs))
	}
	if p.RecurrenceID != "" {
		q.must(term("recurrence_id", p.RecurrenceID))
	}
	if p.EventItem != "" {
		q.must(term("event_item", p.EventItem))
	}
	if len(p.Agendas) > 0 {
		q.must(terms("agendas", p.Agendas))
	}
	if p.Slugline != "" {
		q.must(Clause{"query_string": Clause{
			"query":            p.Slugline,
			"lenient":          false,
			"default_operator": "AND",
			"fields":           []string{"slugline"},
		}})
	}
	if p.PostedOnly {
		q.must(term("pubstatus", string(model.PostStateUsable)))
	}

	return q.Body()
}

// applySpikeState emits the workflow-state exclusions. Killed items are
// never searchable; spiked items only when explicitly requested.
func applySpikeState(q *Query, state model.SpikeState) {
	switch state {
	case model.SpikeStateBoth:
		q.mustNot(term("state", string(model.StateKilled)))
	case model.SpikeStateSpiked:
		q.mustNot(term("state", string(model.StateKilled)))
		q.must(term("state", string(model.StateSpiked)))
	default:
		q.mustNot(terms("state", []string{
			string(model.StateSpiked),
			string(model.StateKilled),
		}))
	}
}
