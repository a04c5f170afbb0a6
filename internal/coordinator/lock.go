package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/resource"
	"github.com/newsdesk/planning-coordinator/internal/session"
)

type lockPayload struct {
	LockAction string `json:"lock_action"`
}

// Lock acquires the edit lock on an event. When the event is already
// locked by this session for the same action, no request is made and the
// event comes back unchanged. On success the lock fields and etag are
// merged into the store entry; on failure the store stays untouched.
func (s *Service) Lock(ctx context.Context, sess session.Context, event *model.Event, action string) (*model.Event, error) {
	if action == "" {
		action = ActionEdit
	}

	if event.LockedInSession(sess.SessionID, action) {
		return event, nil
	}

	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsLock, event, lockPayload{LockAction: action})
	if err != nil {
		return nil, fmt.Errorf("acquire lock on event %s: %w", event.ID, err)
	}

	s.store.ApplyEventLock(
		updated.ID,
		updated.LockUser,
		updated.LockSession,
		updated.LockAction,
		lockTime(updated.LockTime),
		updated.Etag,
	)

	if refreshed, ok := s.store.Event(updated.ID); ok {
		return refreshed, nil
	}
	return updated, nil
}

// Unlock releases the lock and clears all four lock fields in the store.
// A failure is surfaced; nothing is re-locked on the way out.
func (s *Service) Unlock(ctx context.Context, sess session.Context, event *model.Event) (*model.Event, error) {
	updated, err := s.client.UpdateEvent(ctx, resource.EndpointEventsUnlock, event, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("release lock on event %s: %w", event.ID, err)
	}

	s.store.ClearEventLock(updated.ID, updated.Etag)

	if refreshed, ok := s.store.Event(updated.ID); ok {
		return refreshed, nil
	}
	return updated, nil
}

// LockPlanning and UnlockPlanning mirror the event operations for
// planning items.
func (s *Service) LockPlanning(ctx context.Context, sess session.Context, planning *model.Planning, action string) (*model.Planning, error) {
	if action == "" {
		action = ActionEdit
	}

	if planning.LockedInSession(sess.SessionID, action) {
		return planning, nil
	}

	updated, err := s.client.UpdatePlanning(ctx, resource.EndpointPlanningLock, planning, lockPayload{LockAction: action})
	if err != nil {
		return nil, fmt.Errorf("acquire lock on planning %s: %w", planning.ID, err)
	}

	s.store.ApplyPlanningLock(
		updated.ID,
		updated.LockUser,
		updated.LockSession,
		updated.LockAction,
		lockTime(updated.LockTime),
		updated.Etag,
	)

	if refreshed, ok := s.store.Planning(updated.ID); ok {
		return refreshed, nil
	}
	return updated, nil
}

func (s *Service) UnlockPlanning(ctx context.Context, sess session.Context, planning *model.Planning) (*model.Planning, error) {
	updated, err := s.client.UpdatePlanning(ctx, resource.EndpointPlanningUnlock, planning, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("release lock on planning %s: %w", planning.ID, err)
	}

	s.store.ClearPlanningLock(updated.ID, updated.Etag)

	if refreshed, ok := s.store.Planning(updated.ID); ok {
		return refreshed, nil
	}
	return updated, nil
}

func lockTime(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
