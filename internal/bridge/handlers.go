package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
)

// onEventCreated fetches the new event through the search index. The push
// usually arrives before the index has the document, so the fetch is
// retried a bounded number of times before the gap is reported.
func (b *Bridge) onEventCreated(ctx context.Context, payload *Payload) error {
	result, err := RetryDispatch(ctx, b.settings.RetryAttempts, b.settings.RetryInterval,
		func(ctx context.Context) (interface{}, error) {
			return b.client.QueryEvents(ctx, model.SearchParams{
				IDs:        []string{payload.Item},
				SpikeState: model.SpikeStateBoth,
			})
		},
		func(result interface{}) bool {
			events, _ := result.([]*model.Event)
			return len(events) > 0
		},
	)
	if err != nil {
		return fmt.Errorf("fetch created event %s: %w", payload.Item, err)
	}

	events, _ := result.([]*model.Event)
	if len(events) == 0 {
		return fmt.Errorf("created event %s not indexed after %d attempts", payload.Item, b.settings.RetryAttempts)
	}

	b.store.SetEvents(events)
	b.ScheduleRefetch(ctx)

	return nil
}

func (b *Bridge) onRecurringCreated(ctx context.Context, payload *Payload) error {
	recurrenceID := payload.RecurrenceID
	if recurrenceID == "" {
		recurrenceID = payload.Item
	}

	result, err := RetryDispatch(ctx, b.settings.RetryAttempts, b.settings.RetryInterval,
		func(ctx context.Context) (interface{}, error) {
			return b.client.QueryEvents(ctx, model.SearchParams{
				RecurrenceID: recurrenceID,
				SpikeState:   model.SpikeStateBoth,
				MaxResults:   b.settings.MaxRecurrentEvents,
			})
		},
		func(result interface{}) bool {
			events, _ := result.([]*model.Event)
			return len(events) > 0
		},
	)
	if err != nil {
		return fmt.Errorf("fetch created series %s: %w", recurrenceID, err)
	}

	events, _ := result.([]*model.Event)
	if len(events) == 0 {
		return fmt.Errorf("created series %s not indexed after %d attempts", recurrenceID, b.settings.RetryAttempts)
	}

	b.store.SetEvents(events)
	b.ScheduleRefetch(ctx)

	return nil
}

// onEventChanged refreshes a cached item and schedules a list refetch.
// Items this client never loaded are left to the refetch alone.
func (b *Bridge) onEventChanged(ctx context.Context, payload *Payload) error {
	if _, cached := b.store.Event(payload.Item); cached {
		event, err := b.client.GetEventByID(ctx, payload.Item)
		if err != nil {
			return fmt.Errorf("refresh event %s: %w", payload.Item, err)
		}
		b.store.SetEvent(event)
	}

	b.ScheduleRefetch(ctx)

	return nil
}

func (b *Bridge) onEventLock(_ context.Context, payload *Payload) error {
	t := time.Now()
	if payload.LockTime != nil {
		t = *payload.LockTime
	}

	b.store.ApplyEventLock(payload.Item, payload.User, payload.LockSession, payload.LockAction, t, payload.Etag)

	return nil
}

// onEventUnlock clears the lock. When this session held the lock and a
// different session released it, the user gets a notice before any local
// editor state is dropped; silently discarding in-progress work is worse
// than an extra toast.
func (b *Bridge) onEventUnlock(_ context.Context, payload *Payload) error {
	if held, ok := b.store.LockFor(payload.Item); ok {
		if held.SessionID == b.settings.LocalSession && payload.LockSession != b.settings.LocalSession {
			b.notifier.ItemUnlocked(payload.Item, payload.User)
		}
	}

	b.store.ClearEventLock(payload.Item, payload.Etag)

	return nil
}

func (b *Bridge) onEventSpiked(ctx context.Context, payload *Payload) error {
	if event, ok := b.store.Event(payload.Item); ok {
		event.State = model.StateSpiked
		if payload.Etag != "" {
			event.Etag = payload.Etag
		}
		b.store.SetEvent(event)
	}

	b.ScheduleRefetch(ctx)

	return nil
}

func (b *Bridge) onEventCancelled(ctx context.Context, payload *Payload) error {
	if event, ok := b.store.Event(payload.Item); ok {
		event.State = model.StateCancelled
		if payload.Etag != "" {
			event.Etag = payload.Etag
		}
		b.store.SetEvent(event)
	}

	for _, id := range payload.CancelledItems {
		if planning, ok := b.store.Planning(id); ok {
			planning.State = model.StateCancelled
			b.store.SetPlanning(planning)
		}
	}

	b.ScheduleRefetch(ctx)

	return nil
}

func (b *Bridge) onEventRemoved(ctx context.Context, payload *Payload) error {
	b.store.RemoveEvent(payload.Item)
	b.notifier.ItemsChanged()

	return nil
}

func (b *Bridge) onPlanningChanged(ctx context.Context, payload *Payload) error {
	if _, cached := b.store.Planning(payload.Item); cached {
		planning, err := b.client.GetPlanningByID(ctx, payload.Item)
		if err != nil {
			return fmt.Errorf("refresh planning %s: %w", payload.Item, err)
		}
		b.store.SetPlanning(planning)
	}

	b.ScheduleRefetch(ctx)

	return nil
}

func (b *Bridge) onPlanningSpiked(ctx context.Context, payload *Payload) error {
	if planning, ok := b.store.Planning(payload.Item); ok {
		planning.State = model.StateSpiked
		b.store.SetPlanning(planning)
	}

	b.ScheduleRefetch(ctx)

	return nil
}
