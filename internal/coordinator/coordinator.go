// Package coordinator orchestrates write actions on possibly-recurring
// events and their planning items: it acquires the edit lock, loads the
// sibling occurrences the scope choice needs, performs the scoped remote
// action and keeps the item store consistent with the outcome.
package coordinator

import (
	"context"
	"fmt"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/store"
	"go.uber.org/zap"
)

// ActionEdit is the default lock action.
const ActionEdit = "edit"

type resourceClient interface {
	QueryEvents(ctx context.Context, params model.SearchParams) ([]*model.Event, error)
	QueryPlannings(ctx context.Context, params model.SearchParams) ([]*model.Planning, error)
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	GetPlanningByID(ctx context.Context, id string) (*model.Planning, error)
	UpdateEvent(ctx context.Context, endpoint string, original *model.Event, payload interface{}) (*model.Event, error)
	UpdatePlanning(ctx context.Context, endpoint string, original *model.Planning, payload interface{}) (*model.Planning, error)
}

type Service struct {
	logger *zap.SugaredLogger
	client resourceClient
	store  *store.Store

	maxRecurrentEvents int
}

func NewService(logger *zap.SugaredLogger, client resourceClient, items *store.Store, maxRecurrentEvents int) *Service {
	return &Service{
		logger:             logger,
		client:             client,
		store:              items,
		maxRecurrentEvents: maxRecurrentEvents,
	}
}

// GetEvent returns the cached event, falling back to a backend fetch.
func (s *Service) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if event, ok := s.store.Event(id); ok {
		return event, nil
	}

	event, err := s.client.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	s.store.SetEvent(event)

	return event, nil
}

// GetPlanning mirrors GetEvent for planning items.
func (s *Service) GetPlanning(ctx context.Context, id string) (*model.Planning, error) {
	if planning, ok := s.store.Planning(id); ok {
		return planning, nil
	}

	planning, err := s.client.GetPlanningByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get planning %s: %w", id, err)
	}
	s.store.SetPlanning(planning)

	return planning, nil
}
