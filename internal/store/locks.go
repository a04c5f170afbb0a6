package store

import (
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
)

// LockFor returns the lock table entry for an item, if any.
func (s *Store) LockFor(itemID string) (*model.Lock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locks[itemID]
	if !ok {
		return nil, false
	}

	clone := *l
	return &clone, true
}

// ApplyEventLock sets an event's lock fields and its lock table entry in
// one step. The four fields move together; a partial set never exists.
func (s *Store) ApplyEventLock(itemID, userID, sessionID, action string, lockTime time.Time, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[itemID]
	if !ok {
		e = &model.Event{ID: itemID}
		s.events[itemID] = e
	}

	e.LockUser = userID
	e.LockSession = sessionID
	e.LockAction = action
	t := lockTime
	e.LockTime = &t
	if etag != "" {
		e.Etag = etag
	}

	s.locks[itemID] = &model.Lock{
		ItemID:    itemID,
		ItemType:  model.ItemTypeEvent,
		SessionID: sessionID,
		UserID:    userID,
		Action:    action,
		Time:      lockTime,
	}
}

// ClearEventLock clears all four lock fields and drops the table entry.
func (s *Store) ClearEventLock(itemID string, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.events[itemID]; ok {
		e.LockUser = ""
		e.LockSession = ""
		e.LockAction = ""
		e.LockTime = nil
		if etag != "" {
			e.Etag = etag
		}
	}

	delete(s.locks, itemID)
}

// ApplyPlanningLock mirrors ApplyEventLock for planning items.
func (s *Store) ApplyPlanningLock(itemID, userID, sessionID, action string, lockTime time.Time, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plannings[itemID]
	if !ok {
		p = &model.Planning{ID: itemID}
		s.plannings[itemID] = p
	}

	p.LockUser = userID
	p.LockSession = sessionID
	p.LockAction = action
	t := lockTime
	p.LockTime = &t
	if etag != "" {
		p.Etag = etag
	}

	s.locks[itemID] = &model.Lock{
		ItemID:    itemID,
		ItemType:  model.ItemTypePlanning,
		SessionID: sessionID,
		UserID:    userID,
		Action:    action,
		Time:      lockTime,
	}
}

func (s *Store) ClearPlanningLock(itemID string, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.plannings[itemID]; ok {
		p.LockUser = ""
		p.LockSession = ""
		p.LockAction = ""
		p.LockTime = nil
		if etag != "" {
			p.Etag = etag
		}
	}

	delete(s.locks, itemID)
}
