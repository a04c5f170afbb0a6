package coordinator

import (
	"context"
	"fmt"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/resource"
	"github.com/newsdesk/planning-coordinator/internal/session"
	"golang.org/x/sync/errgroup"
)

type spikePayload struct {
	UpdateMethod model.UpdateMethod `json:"update_method"`
}

// Spike removes one or more events from the active workflow. Each item is
// a separate request carrying that item's own resolved update method; the
// requests run concurrently and the call fails as soon as any one of them
// does. Items whose request already settled stay updated in the store.
func (s *Service) Spike(ctx context.Context, sess session.Context, events ...*model.Event) ([]*model.Event, error) {
	return s.spikeAll(ctx, sess, resource.EndpointEventsSpike, events)
}

// Unspike restores one or more spiked events, with the same fan-out and
// failure semantics as Spike.
func (s *Service) Unspike(ctx context.Context, sess session.Context, events ...*model.Event) ([]*model.Event, error) {
	return s.spikeAll(ctx, sess, resource.EndpointEventsUnspike, events)
}

func (s *Service) spikeAll(ctx context.Context, sess session.Context, endpoint string, events []*model.Event) ([]*model.Event, error) {
	results := make([]*model.Event, len(events))

	g, gctx := errgroup.WithContext(ctx)
	for i, event := range events {
		i, event := i, event
		g.Go(func() error {
			updated, err := s.client.UpdateEvent(gctx, endpoint, event, spikePayload{
				UpdateMethod: event.UpdateMethod.Resolve(),
			})
			if err != nil {
				return fmt.Errorf("%s event %s: %w", endpoint, event.ID, err)
			}

			s.store.SetEvent(updated)
			results[i] = updated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Infow("spike action completed", "endpoint", endpoint, "count", len(events), "user", sess.UserID)

	return results, nil
}

// SpikePlanning spikes planning items with the same semantics.
func (s *Service) SpikePlanning(ctx context.Context, sess session.Context, plannings ...*model.Planning) ([]*model.Planning, error) {
	return s.spikeAllPlanning(ctx, sess, resource.EndpointPlanningSpike, plannings)
}

func (s *Service) UnspikePlanning(ctx context.Context, sess session.Context, plannings ...*model.Planning) ([]*model.Planning, error) {
	return s.spikeAllPlanning(ctx, sess, resource.EndpointPlanningUnspike, plannings)
}

func (s *Service) spikeAllPlanning(ctx context.Context, sess session.Context, endpoint string, plannings []*model.Planning) ([]*model.Planning, error) {
	results := make([]*model.Planning, len(plannings))

	g, gctx := errgroup.WithContext(ctx)
	for i, planning := range plannings {
		i, planning := i, planning
		g.Go(func() error {
			updated, err := s.client.UpdatePlanning(gctx, endpoint, planning, spikePayload{
				UpdateMethod: model.UpdateMethodSingle,
			})
			if err != nil {
				return fmt.Errorf("%s planning %s: %w", endpoint, planning.ID, err)
			}

			s.store.SetPlanning(updated)
			results[i] = updated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
