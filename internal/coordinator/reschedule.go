package coordinator

import (
	"context"
	"fmt"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/resource"
	"github.com/newsdesk/planning-coordinator/internal/session"
)

type reschedulePayload struct {
	UpdateMethod model.UpdateMethod `json:"update_method"`
	Dates        model.EventDates   `json:"dates"`
	Reason       string             `json:"reason,omitempty"`
}

type RescheduleUpdates struct {
	Method model.UpdateMethod
	Dates  model.EventDates
	Reason string
}

// RescheduleResult separates the primary outcome from the follow-up. When
// the server replaced the occurrence, Replacement is the event editor
// focus should move to; a failure fetching it lands in FollowUpErr without
// negating the reschedule itself.
type RescheduleResult struct {
	Event       *model.Event
	Replacement *model.Event
	FollowUpErr error
}

func (s *Service) Reschedule(ctx context.Context, sess session.Context, original *model.Event, upd RescheduleUpdates) (*RescheduleResult, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsReschedule, original, reschedulePayload{
		UpdateMethod: upd.Method.Resolve(),
		Dates:        upd.Dates,
		Reason:       upd.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("reschedule event %s: %w", original.ID, err)
	}

	s.store.SetEvent(updated)
	res := &RescheduleResult{Event: updated}

	if updated.State != model.StateRescheduled || updated.RescheduleTo == "" {
		return res, nil
	}

	replacement, err := s.client.GetEventByID(ctx, updated.RescheduleTo)
	if err != nil {
		// The reschedule itself succeeded; only the handoff to the new
		// occurrence failed.
		res.FollowUpErr = fmt.Errorf("open rescheduled event %s: %w", updated.RescheduleTo, err)
		s.logger.Errorw("failed to load replacement after reschedule",
			"event", updated.ID,
			"reschedule_to", updated.RescheduleTo,
			"err", err,
		)
		return res, nil
	}

	s.store.SetEvent(replacement)
	res.Replacement = replacement

	return res, nil
}
