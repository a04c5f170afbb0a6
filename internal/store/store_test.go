package store

import (
	"testing"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetEventStoresClone(t *testing.T) {
	s := NewStore()

	e := &model.Event{ID: "e1", Name: "original"}
	s.SetEvent(e)
	e.Name = "mutated after set"

	got, ok := s.Event("e1")
	require.True(t, ok)
	assert.Equal(t, "original", got.Name)

	got.Name = "mutated after get"
	again, _ := s.Event("e1")
	assert.Equal(t, "original", again.Name)
}

func TestSetEventMaintainsLockTable(t *testing.T) {
	s := NewStore()
	lockTime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	s.SetEvent(&model.Event{
		ID:          "e1",
		LockUser:    "u1",
		LockSession: "sess1",
		LockAction:  "edit",
		LockTime:    &lockTime,
	})

	lock, ok := s.LockFor("e1")
	require.True(t, ok)
	assert.Equal(t, model.ItemTypeEvent, lock.ItemType)
	assert.Equal(t, "sess1", lock.SessionID)
	assert.Equal(t, "u1", lock.UserID)
	assert.Equal(t, "edit", lock.Action)
	assert.Equal(t, lockTime, lock.Time)

	// An unlocked replacement drops the table entry.
	s.SetEvent(&model.Event{ID: "e1"})
	_, ok = s.LockFor("e1")
	assert.False(t, ok)
}

func TestApplyEventLockSetsAllFieldsTogether(t *testing.T) {
	s := NewStore()
	s.SetEvent(&model.Event{ID: "e1", Etag: "v1"})

	lockTime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.ApplyEventLock("e1", "u1", "sess1", "edit", lockTime, "v2")

	e, ok := s.Event("e1")
	require.True(t, ok)
	assert.Equal(t, "u1", e.LockUser)
	assert.Equal(t, "sess1", e.LockSession)
	assert.Equal(t, "edit", e.LockAction)
	require.NotNil(t, e.LockTime)
	assert.Equal(t, lockTime, *e.LockTime)
	assert.Equal(t, "v2", e.Etag)

	_, ok = s.LockFor("e1")
	assert.True(t, ok)
}

func TestApplyEventLockCreatesStubForUnknownItem(t *testing.T) {
	s := NewStore()

	s.ApplyEventLock("ghost", "u1", "sess1", "edit", time.Now(), "")

	e, ok := s.Event("ghost")
	require.True(t, ok)
	assert.Equal(t, "sess1", e.LockSession)

	lock, ok := s.LockFor("ghost")
	require.True(t, ok)
	assert.Equal(t, "ghost", lock.ItemID)
}

func TestClearEventLockClearsAllFields(t *testing.T) {
	s := NewStore()
	lockTime := time.Now()
	s.SetEvent(&model.Event{
		ID:          "e1",
		Etag:        "v2",
		LockUser:    "u1",
		LockSession: "sess1",
		LockAction:  "edit",
		LockTime:    &lockTime,
	})

	s.ClearEventLock("e1", "v3")

	e, ok := s.Event("e1")
	require.True(t, ok)
	assert.Empty(t, e.LockUser)
	assert.Empty(t, e.LockSession)
	assert.Empty(t, e.LockAction)
	assert.Nil(t, e.LockTime)
	assert.Equal(t, "v3", e.Etag)

	_, ok = s.LockFor("e1")
	assert.False(t, ok)
}

func TestRemoveEventPrunesVisibleLists(t *testing.T) {
	s := NewStore()
	s.SetEvents([]*model.Event{{ID: "e1"}, {ID: "e2"}})
	s.SetVisible(ViewEvents, []string{"e1", "e2"})
	s.SetVisible(ViewCombined, []string{"e2", "e1"})

	s.RemoveEvent("e1")

	_, ok := s.Event("e1")
	assert.False(t, ok)
	assert.Equal(t, []string{"e2"}, s.Visible(ViewEvents))
	assert.Equal(t, []string{"e2"}, s.Visible(ViewCombined))
}

func TestEventsByRecurrence(t *testing.T) {
	s := NewStore()
	s.SetEvents([]*model.Event{
		{ID: "e1", RecurrenceID: "rec1"},
		{ID: "e2", RecurrenceID: "rec1"},
		{ID: "e3", RecurrenceID: "rec2"},
		{ID: "e4"},
	})

	siblings := s.EventsByRecurrence("rec1")
	require.Len(t, siblings, 2)
	for _, e := range siblings {
		assert.Equal(t, "rec1", e.RecurrenceID)
	}
}

func TestAppendVisibleDeduplicates(t *testing.T) {
	s := NewStore()
	s.SetVisible(ViewEvents, []string{"e1", "e2"})
	s.AppendVisible(ViewEvents, []string{"e2", "e3", "e1", "e4"})

	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, s.Visible(ViewEvents))
}

func TestLastParams(t *testing.T) {
	s := NewStore()

	_, ok := s.LastParams(ViewEvents)
	assert.False(t, ok)

	params := model.SearchParams{FullText: "fish", Page: 1}
	s.SetLastParams(ViewEvents, params)

	got, ok := s.LastParams(ViewEvents)
	require.True(t, ok)
	assert.Equal(t, params, got)

	// The zero value is a valid baseline once set.
	s.SetLastParams(ViewPlanning, model.SearchParams{})
	_, ok = s.LastParams(ViewPlanning)
	assert.True(t, ok)
}

func TestPlanningLockLifecycle(t *testing.T) {
	s := NewStore()
	s.SetPlanning(&model.Planning{ID: "p1", Etag: "v1"})

	lockTime := time.Now()
	s.ApplyPlanningLock("p1", "u1", "sess1", "edit", lockTime, "v2")

	lock, ok := s.LockFor("p1")
	require.True(t, ok)
	assert.Equal(t, model.ItemTypePlanning, lock.ItemType)

	s.ClearPlanningLock("p1", "")
	_, ok = s.LockFor("p1")
	assert.False(t, ok)

	p, ok := s.Planning("p1")
	require.True(t, ok)
	assert.Empty(t, p.LockSession)
	assert.Equal(t, "v2", p.Etag)
}
