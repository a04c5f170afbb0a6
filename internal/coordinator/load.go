package coordinator

import (
	"context"
	"fmt"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/store"
)

type LoadOptions struct {
	LoadPlannings              bool
	LoadEvents                 bool
	LoadEveryRecurringPlanning bool
}

type SeriesData struct {
	Events    []*model.Event
	Plannings []*model.Planning
}

// LoadSeriesAndPlannings fetches the sibling occurrences of a recurring
// event and their planning items. The fan-out is bounded: no more than
// the configured maximum of occurrences is ever requested. A non-recurring
// event, or one with nothing linked, yields an empty result, not an error.
func (s *Service) LoadSeriesAndPlannings(ctx context.Context, event *model.Event, opts LoadOptions) (*SeriesData, error) {
	res := &SeriesData{}

	if event.IsRecurring() && opts.LoadEvents {
		params := model.SearchParams{
			RecurrenceID: event.RecurrenceID,
			SpikeState:   model.SpikeStateBoth,
			OnlyFuture:   false,
			Page:         1,
			MaxResults:   s.maxRecurrentEvents,
		}

		events, err := s.client.QueryEvents(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("load recurring events %s: %w", event.RecurrenceID, err)
		}
		s.store.SetEvents(events)
		res.Events = events

		if opts.LoadPlannings {
			plannings, err := s.client.QueryPlannings(ctx, model.SearchParams{
				RecurrenceID: event.RecurrenceID,
				SpikeState:   model.SpikeStateBoth,
			})
			if err != nil {
				return nil, fmt.Errorf("load recurring plannings %s: %w", event.RecurrenceID, err)
			}
			s.store.SetPlannings(plannings)
			res.Plannings = plannings
		}

		return res, nil
	}

	if !opts.LoadPlannings {
		return res, nil
	}

	// Not recurring, or events not wanted: load plannings for this
	// occurrence only. When the occurrence itself has no planning ids a
	// locally cached sibling may still point at some.
	eventID := event.ID
	planningIDs := event.PlanningIDs
	if len(planningIDs) == 0 && event.IsRecurring() {
		for _, sibling := range s.store.EventsByRecurrence(event.RecurrenceID) {
			if len(sibling.PlanningIDs) > 0 {
				eventID = sibling.ID
				planningIDs = sibling.PlanningIDs
				break
			}
		}
	}

	if len(planningIDs) == 0 {
		return res, nil
	}

	plannings, err := s.client.QueryPlannings(ctx, model.SearchParams{
		EventItem:  eventID,
		SpikeState: model.SpikeStateBoth,
	})
	if err != nil {
		return nil, fmt.Errorf("load plannings for event %s: %w", eventID, err)
	}
	s.store.SetPlannings(plannings)
	res.Plannings = plannings

	return res, nil
}

type ActionDataOptions struct {
	LoadPlannings              bool
	Post                       bool
	LoadEvents                 bool
	LoadEveryRecurringPlanning bool
}

// LoadEventDataForAction decorates an event with its series, the loaded
// plannings, the plannings related to this exact occurrence and a snapshot
// taken before the action runs.
//
// When this is called under a freshly acquired lock and the load fails,
// the lock stays held; recovery is an explicit unlock by the caller.
func (s *Service) LoadEventDataForAction(ctx context.Context, event *model.Event, opts ActionDataOptions) (*model.EventContext, error) {
	original := *event

	data, err := s.LoadSeriesAndPlannings(ctx, event, LoadOptions{
		LoadPlannings:              opts.LoadPlannings,
		LoadEvents:                 opts.LoadEvents,
		LoadEveryRecurringPlanning: opts.LoadEveryRecurringPlanning,
	})
	if err != nil {
		return nil, fmt.Errorf("load series data: %w", err)
	}

	related := data.Plannings
	if !opts.LoadEveryRecurringPlanning {
		related = nil
		for _, p := range data.Plannings {
			if p.EventItem == event.ID {
				related = append(related, p)
			}
		}
	}
	if opts.Post {
		kept := related[:0:0]
		for _, p := range related {
			if p.State != model.StateSpiked {
				kept = append(kept, p)
			}
		}
		related = kept
	}

	return &model.EventContext{
		Event:            event,
		Series:           data.Events,
		Plannings:        data.Plannings,
		RelatedPlannings: related,
		Original:         &original,
	}, nil
}

// SearchEvents runs a user search, stores the results and remembers the
// params as the refetch baseline for the events view.
func (s *Service) SearchEvents(ctx context.Context, params model.SearchParams) ([]*model.Event, error) {
	events, err := s.client.QueryEvents(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}

	s.store.SetEvents(events)

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if params.Page > 1 {
		s.store.AppendVisible(store.ViewEvents, ids)
	} else {
		s.store.SetVisible(store.ViewEvents, ids)
	}
	s.store.SetLastParams(store.ViewEvents, params)

	return events, nil
}

// LoadMoreEvents fetches the next page of the last search.
func (s *Service) LoadMoreEvents(ctx context.Context) ([]*model.Event, error) {
	params, ok := s.store.LastParams(store.ViewEvents)
	if !ok {
		return nil, nil
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	return s.SearchEvents(ctx, params.WithPage(page+1))
}

// SearchPlannings mirrors SearchEvents for the planning view.
func (s *Service) SearchPlannings(ctx context.Context, params model.SearchParams) ([]*model.Planning, error) {
	plannings, err := s.client.QueryPlannings(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search plannings: %w", err)
	}

	s.store.SetPlannings(plannings)

	ids := make([]string, len(plannings))
	for i, p := range plannings {
		ids[i] = p.ID
	}
	if params.Page > 1 {
		s.store.AppendVisible(store.ViewPlanning, ids)
	} else {
		s.store.SetVisible(store.ViewPlanning, ids)
	}
	s.store.SetLastParams(store.ViewPlanning, params)

	return plannings, nil
}

// Refetch re-runs the last searches of both views. Used by the
// notification bridge to reconcile after push events.
func (s *Service) Refetch(ctx context.Context) error {
	if params, ok := s.store.LastParams(store.ViewEvents); ok {
		if _, err := s.SearchEvents(ctx, params.WithPage(1)); err != nil {
			return fmt.Errorf("refetch events: %w", err)
		}
	}
	if params, ok := s.store.LastParams(store.ViewPlanning); ok {
		if _, err := s.SearchPlannings(ctx, params.WithPage(1)); err != nil {
			return fmt.Errorf("refetch plannings: %w", err)
		}
	}

	return nil
}
