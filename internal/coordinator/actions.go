package coordinator

import (
	"context"
	"fmt"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/recurrence"
	"github.com/newsdesk/planning-coordinator/internal/resource"
	"github.com/newsdesk/planning-coordinator/internal/session"
)

// Outgoing payloads of the scoped sub-resource actions. Every one carries
// an update_method; an unset method resolves to single.

type cancelPayload struct {
	UpdateMethod model.UpdateMethod `json:"update_method"`
	Reason       string             `json:"reason,omitempty"`
}

type postponePayload struct {
	UpdateMethod model.UpdateMethod `json:"update_method"`
	Reason       string             `json:"reason,omitempty"`
}

type updateTimePayload struct {
	UpdateMethod model.UpdateMethod `json:"update_method"`
	Dates        model.EventDates   `json:"dates"`
}

type updateRepetitionsPayload struct {
	UpdateMethod model.UpdateMethod `json:"update_method"`
	Rule         model.RepeatRule   `json:"recurring_rule"`
}

type postPayload struct {
	Event        string             `json:"event"`
	Etag         string             `json:"etag"`
	PubStatus    model.PostState    `json:"pubstatus"`
	UpdateMethod model.UpdateMethod `json:"update_method"`
}

type CancelUpdates struct {
	Method model.UpdateMethod
	Reason string
}

func (s *Service) Cancel(ctx context.Context, sess session.Context, original *model.Event, upd CancelUpdates) (*model.Event, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsCancel, original, cancelPayload{
		UpdateMethod: upd.Method.Resolve(),
		Reason:       upd.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("cancel event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)
	s.logger.Infow("event cancelled", "event", updated.ID, "user", sess.UserID, "method", upd.Method.Resolve())

	return updated, nil
}

type PostponeUpdates struct {
	Method model.UpdateMethod
	Reason string
}

func (s *Service) Postpone(ctx context.Context, sess session.Context, original *model.Event, upd PostponeUpdates) (*model.Event, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsPostpone, original, postponePayload{
		UpdateMethod: upd.Method.Resolve(),
		Reason:       upd.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("postpone event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)
	s.logger.Infow("event postponed", "event", updated.ID, "user", sess.UserID, "method", upd.Method.Resolve())

	return updated, nil
}

type TimeUpdates struct {
	Method model.UpdateMethod
	Dates  model.EventDates
}

func (s *Service) UpdateTime(ctx context.Context, sess session.Context, original *model.Event, upd TimeUpdates) (*model.Event, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsUpdateTime, original, updateTimePayload{
		UpdateMethod: upd.Method.Resolve(),
		Dates:        upd.Dates,
	})
	if err != nil {
		return nil, fmt.Errorf("update time of event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)

	return updated, nil
}

type RepetitionsUpdates struct {
	Method model.UpdateMethod
	Rule   model.RepeatRule
}

// UpdateRepetitions changes the repeat rule of a series. The new rule is
// validated against the occurrence limit before anything leaves the client.
func (s *Service) UpdateRepetitions(ctx context.Context, sess session.Context, original *model.Event, upd RepetitionsUpdates) (*model.Event, error) {
	if err := recurrence.Validate(upd.Rule, s.maxRecurrentEvents); err != nil {
		return nil, fmt.Errorf("validate recurring rule: %w", err)
	}

	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsUpdateRepetitions, original, updateRepetitionsPayload{
		UpdateMethod: upd.Method.Resolve(),
		Rule:         upd.Rule,
	})
	if err != nil {
		return nil, fmt.Errorf("update repetitions of event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)

	return updated, nil
}

// PreviewRepetitions expands a prospective rule into the occurrence dates
// it would produce, capped at the configured maximum, so the scope choice
// can show the user what a change affects.
func (s *Service) PreviewRepetitions(original *model.Event, rule model.RepeatRule) ([]model.EventDates, error) {
	duration := original.Dates.End.Sub(original.Dates.Start)

	dates, err := recurrence.Expand(rule, original.Dates.Start, duration, s.maxRecurrentEvents)
	if err != nil {
		return nil, fmt.Errorf("expand recurring rule: %w", err)
	}

	return dates, nil
}

func (s *Service) Post(ctx context.Context, sess session.Context, original *model.Event, method model.UpdateMethod) (*model.Event, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsPost, original, postPayload{
		Event:        original.ID,
		Etag:         original.Etag,
		PubStatus:    model.PostStateUsable,
		UpdateMethod: method.Resolve(),
	})
	if err != nil {
		return nil, fmt.Errorf("post event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)

	return updated, nil
}

func (s *Service) Unpost(ctx context.Context, sess session.Context, original *model.Event, method model.UpdateMethod) (*model.Event, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsPost, original, postPayload{
		Event:        original.ID,
		Etag:         original.Etag,
		PubStatus:    model.PostStateCancelled,
		UpdateMethod: method.Resolve(),
	})
	if err != nil {
		return nil, fmt.Errorf("unpost event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)

	return updated, nil
}
