// Package store holds the session-wide normalized cache of events and
// planning items, the visible-id lists per view and the lock table.
// Writes are full-object replacements keyed by id; the last write wins.
// Entries are never evicted for the lifetime of the session.
package store

import (
	"sync"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
)

type View string

const (
	ViewEvents   View = "events"
	ViewPlanning View = "planning"
	ViewCombined View = "combined"
)

type Store struct {
	mu sync.RWMutex

	events    map[string]*model.Event
	plannings map[string]*model.Planning
	visible   map[View][]string
	locks     map[string]*model.Lock

	lastParams map[View]model.SearchParams
	hasParams  map[View]bool
}

func NewStore() *Store {
	return &Store{
		events:     map[string]*model.Event{},
		plannings:  map[string]*model.Planning{},
		visible:    map[View][]string{},
		locks:      map[string]*model.Lock{},
		lastParams: map[View]model.SearchParams{},
		hasParams:  map[View]bool{},
	}
}

func (s *Store) Event(id string) (*model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, false
	}

	clone := *e
	return &clone, true
}

func (s *Store) SetEvent(e *model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setEventLocked(e)
}

func (s *Store) SetEvents(events []*model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.setEventLocked(e)
	}
}

func (s *Store) setEventLocked(e *model.Event) {
	clone := *e
	s.events[e.ID] = &clone

	if e.LockSession != "" {
		lockTime := time.Time{}
		if e.LockTime != nil {
			lockTime = *e.LockTime
		}
		s.locks[e.ID] = &model.Lock{
			ItemID:    e.ID,
			ItemType:  model.ItemTypeEvent,
			SessionID: e.LockSession,
			UserID:    e.LockUser,
			Action:    e.LockAction,
			Time:      lockTime,
		}
	} else {
		delete(s.locks, e.ID)
	}
}

func (s *Store) RemoveEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, id)
	delete(s.locks, id)
	for view, ids := range s.visible {
		s.visible[view] = removeID(ids, id)
	}
}

// EventsByRecurrence returns the locally cached occurrences of a series.
func (s *Store) EventsByRecurrence(recurrenceID string) []*model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*model.Event
	for _, e := range s.events {
		if e.RecurrenceID == recurrenceID {
			clone := *e
			res = append(res, &clone)
		}
	}

	return res
}

func (s *Store) Planning(id string) (*model.Planning, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plannings[id]
	if !ok {
		return nil, false
	}

	clone := *p
	return &clone, true
}

func (s *Store) SetPlanning(p *model.Planning) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPlanningLocked(p)
}

func (s *Store) SetPlannings(plannings []*model.Planning) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range plannings {
		s.setPlanningLocked(p)
	}
}

func (s *Store) setPlanningLocked(p *model.Planning) {
	clone := *p
	s.plannings[p.ID] = &clone

	if p.LockSession != "" {
		lockTime := time.Time{}
		if p.LockTime != nil {
			lockTime = *p.LockTime
		}
		s.locks[p.ID] = &model.Lock{
			ItemID:    p.ID,
			ItemType:  model.ItemTypePlanning,
			SessionID: p.LockSession,
			UserID:    p.LockUser,
			Action:    p.LockAction,
			Time:      lockTime,
		}
	} else {
		delete(s.locks, p.ID)
	}
}

func (s *Store) RemovePlanning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.plannings, id)
	delete(s.locks, id)
}

func (s *Store) SetVisible(view View, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible[view] = append([]string(nil), ids...)
}

func (s *Store) AppendVisible(view View, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.visible[view]))
	for _, id := range s.visible[view] {
		seen[id] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			s.visible[view] = append(s.visible[view], id)
		}
	}
}

func (s *Store) Visible(view View) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.visible[view]...)
}

func (s *Store) SetLastParams(view View, params model.SearchParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastParams[view] = params
	s.hasParams[view] = true
}

func (s *Store) LastParams(view View) (model.SearchParams, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastParams[view], s.hasParams[view]
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
