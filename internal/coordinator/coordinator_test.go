package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/resource"
	"github.com/newsdesk/planning-coordinator/internal/session"
	"github.com/newsdesk/planning-coordinator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type updateCall struct {
	endpoint string
	itemID   string
	payload  interface{}
}

// fakeClient records calls and answers from canned responses.
type fakeClient struct {
	mu sync.Mutex

	events    map[string]*model.Event
	plannings map[string]*model.Planning

	queryEvents    func(params model.SearchParams) ([]*model.Event, error)
	queryPlannings func(params model.SearchParams) ([]*model.Planning, error)
	updateEvent    func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error)
	updatePlanning func(endpoint string, original *model.Planning, payload interface{}) (*model.Planning, error)

	eventQueries   []model.SearchParams
	updateCalls    []updateCall
	getEventCalls  int
	updateFailures map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		events:         map[string]*model.Event{},
		plannings:      map[string]*model.Planning{},
		updateFailures: map[string]error{},
	}
}

func (f *fakeClient) QueryEvents(_ context.Context, params model.SearchParams) ([]*model.Event, error) {
	f.mu.Lock()
	f.eventQueries = append(f.eventQueries, params)
	f.mu.Unlock()

	if f.queryEvents != nil {
		return f.queryEvents(params)
	}
	return nil, nil
}

func (f *fakeClient) QueryPlannings(_ context.Context, params model.SearchParams) ([]*model.Planning, error) {
	if f.queryPlannings != nil {
		return f.queryPlannings(params)
	}
	return nil, nil
}

func (f *fakeClient) GetEventByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	f.getEventCalls++
	f.mu.Unlock()

	if e, ok := f.events[id]; ok {
		clone := *e
		return &clone, nil
	}
	return nil, model.ErrNoRecord
}

func (f *fakeClient) GetPlanningByID(_ context.Context, id string) (*model.Planning, error) {
	if p, ok := f.plannings[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, model.ErrNoRecord
}

func (f *fakeClient) UpdateEvent(_ context.Context, endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, updateCall{endpoint: endpoint, itemID: original.ID, payload: payload})
	failure := f.updateFailures[original.ID]
	f.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	if f.updateEvent != nil {
		return f.updateEvent(endpoint, original, payload)
	}

	clone := *original
	return &clone, nil
}

func (f *fakeClient) UpdatePlanning(_ context.Context, endpoint string, original *model.Planning, payload interface{}) (*model.Planning, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, updateCall{endpoint: endpoint, itemID: original.ID, payload: payload})
	f.mu.Unlock()

	if f.updatePlanning != nil {
		return f.updatePlanning(endpoint, original, payload)
	}

	clone := *original
	return &clone, nil
}

func (f *fakeClient) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updateCalls)
}

func newTestService(client *fakeClient) (*Service, *store.Store) {
	items := store.NewStore()
	return NewService(zap.NewNop().Sugar(), client, items, 200), items
}

var testSession = session.Context{SessionID: "sess1", UserID: "u1"}

func TestLockAcquiresAndMergesIntoStore(t *testing.T) {
	client := newFakeClient()
	lockTime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	client.updateEvent = func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
		assert.Equal(t, resource.EndpointEventsLock, endpoint)
		assert.Equal(t, lockPayload{LockAction: "edit"}, payload)

		clone := *original
		clone.Etag = "v2"
		clone.LockUser = "u1"
		clone.LockSession = "sess1"
		clone.LockAction = "edit"
		clone.LockTime = &lockTime
		return &clone, nil
	}

	svc, items := newTestService(client)
	items.SetEvent(&model.Event{ID: "e1", Etag: "v1", Name: "briefing"})

	locked, err := svc.Lock(context.Background(), testSession, &model.Event{ID: "e1", Etag: "v1"}, "")
	require.NoError(t, err)

	assert.Equal(t, "sess1", locked.LockSession)
	assert.Equal(t, "edit", locked.LockAction)
	assert.Equal(t, "v2", locked.Etag)
	// Merged into the cached entry, not a replacement.
	assert.Equal(t, "briefing", locked.Name)

	lock, ok := items.LockFor("e1")
	require.True(t, ok)
	assert.Equal(t, "sess1", lock.SessionID)
}

func TestLockIsIdempotentWithinSession(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	held := &model.Event{
		ID:          "e1",
		LockSession: "sess1",
		LockUser:    "u1",
		LockAction:  "edit",
	}

	locked, err := svc.Lock(context.Background(), testSession, held, "edit")
	require.NoError(t, err)

	assert.Equal(t, held, locked)
	assert.Zero(t, client.updateCount(), "no request should go out for an already-held lock")
}

func TestLockDifferentActionGoesToServer(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	held := &model.Event{ID: "e1", LockSession: "sess1", LockAction: "edit"}

	_, err := svc.Lock(context.Background(), testSession, held, "reschedule")
	require.NoError(t, err)
	assert.Equal(t, 1, client.updateCount())
}

func TestLockFailureLeavesStoreUntouched(t *testing.T) {
	client := newFakeClient()
	client.updateFailures["e1"] = errors.New("lock held elsewhere")

	svc, items := newTestService(client)
	items.SetEvent(&model.Event{ID: "e1"})

	_, err := svc.Lock(context.Background(), testSession, &model.Event{ID: "e1"}, "")
	require.Error(t, err)

	_, ok := items.LockFor("e1")
	assert.False(t, ok)
}

func TestUnlockClearsLockState(t *testing.T) {
	client := newFakeClient()
	client.updateEvent = func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
		assert.Equal(t, resource.EndpointEventsUnlock, endpoint)
		clone := *original
		clone.Etag = "v3"
		clone.LockSession = ""
		return &clone, nil
	}

	svc, items := newTestService(client)
	lockTime := time.Now()
	items.SetEvent(&model.Event{
		ID:          "e1",
		Etag:        "v2",
		LockUser:    "u1",
		LockSession: "sess1",
		LockAction:  "edit",
		LockTime:    &lockTime,
	})

	unlocked, err := svc.Unlock(context.Background(), testSession, &model.Event{ID: "e1", Etag: "v2"})
	require.NoError(t, err)

	assert.Empty(t, unlocked.LockSession)
	assert.Empty(t, unlocked.LockUser)
	assert.Nil(t, unlocked.LockTime)
	assert.Equal(t, "v3", unlocked.Etag)

	_, ok := items.LockFor("e1")
	assert.False(t, ok)
}

func TestGetEventPrefersCache(t *testing.T) {
	client := newFakeClient()
	client.events["e1"] = &model.Event{ID: "e1", Name: "from backend"}

	svc, items := newTestService(client)
	items.SetEvent(&model.Event{ID: "e1", Name: "cached"})

	event, err := svc.GetEvent(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "cached", event.Name)
	assert.Zero(t, client.getEventCalls)

	event, err = svc.GetEvent(context.Background(), "e2")
	assert.ErrorIs(t, err, model.ErrNoRecord)
	assert.Nil(t, event)
}

func TestLoadSeriesBoundsFanOut(t *testing.T) {
	client := newFakeClient()
	client.queryEvents = func(params model.SearchParams) ([]*model.Event, error) {
		return []*model.Event{{ID: "e1", RecurrenceID: "rec1"}}, nil
	}

	svc, _ := newTestService(client)

	_, err := svc.LoadSeriesAndPlannings(context.Background(),
		&model.Event{ID: "e1", RecurrenceID: "rec1"},
		LoadOptions{LoadEvents: true},
	)
	require.NoError(t, err)

	require.Len(t, client.eventQueries, 1)
	params := client.eventQueries[0]
	assert.Equal(t, "rec1", params.RecurrenceID)
	assert.Equal(t, model.SpikeStateBoth, params.SpikeState)
	assert.False(t, params.OnlyFuture)
	assert.Equal(t, 200, params.MaxResults)
}

func TestLoadPlanningsFallsBackToCachedSibling(t *testing.T) {
	var gotEventItem string
	client := newFakeClient()
	client.queryPlannings = func(params model.SearchParams) ([]*model.Planning, error) {
		gotEventItem = params.EventItem
		return []*model.Planning{{ID: "p1", EventItem: params.EventItem}}, nil
	}

	svc, items := newTestService(client)
	items.SetEvent(&model.Event{ID: "e2", RecurrenceID: "rec1", PlanningIDs: []string{"p1"}})

	data, err := svc.LoadSeriesAndPlannings(context.Background(),
		&model.Event{ID: "e1", RecurrenceID: "rec1"},
		LoadOptions{LoadPlannings: true},
	)
	require.NoError(t, err)

	assert.Equal(t, "e2", gotEventItem)
	assert.Len(t, data.Plannings, 1)
}

func TestLoadSeriesEmptyIsNotAnError(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	data, err := svc.LoadSeriesAndPlannings(context.Background(),
		&model.Event{ID: "e1"},
		LoadOptions{LoadPlannings: true, LoadEvents: true},
	)
	require.NoError(t, err)
	assert.Empty(t, data.Events)
	assert.Empty(t, data.Plannings)
}

func TestLoadEventDataForAction(t *testing.T) {
	client := newFakeClient()
	client.queryEvents = func(params model.SearchParams) ([]*model.Event, error) {
		return []*model.Event{
			{ID: "e1", RecurrenceID: "rec1"},
			{ID: "e2", RecurrenceID: "rec1"},
		}, nil
	}
	client.queryPlannings = func(params model.SearchParams) ([]*model.Planning, error) {
		return []*model.Planning{
			{ID: "p1", EventItem: "e1"},
			{ID: "p2", EventItem: "e2"},
			{ID: "p3", EventItem: "e1", State: model.StateSpiked},
		}, nil
	}

	svc, _ := newTestService(client)
	event := &model.Event{ID: "e1", RecurrenceID: "rec1", Name: "before"}

	t.Run("related filtered to this occurrence", func(t *testing.T) {
		data, err := svc.LoadEventDataForAction(context.Background(), event, ActionDataOptions{
			LoadPlannings: true,
			LoadEvents:    true,
		})
		require.NoError(t, err)

		assert.Len(t, data.Series, 2)
		assert.Len(t, data.Plannings, 3)
		require.Len(t, data.RelatedPlannings, 2)
		for _, p := range data.RelatedPlannings {
			assert.Equal(t, "e1", p.EventItem)
		}

		require.NotNil(t, data.Original)
		assert.Equal(t, "before", data.Original.Name)
	})

	t.Run("post drops spiked plannings", func(t *testing.T) {
		data, err := svc.LoadEventDataForAction(context.Background(), event, ActionDataOptions{
			LoadPlannings: true,
			LoadEvents:    true,
			Post:          true,
		})
		require.NoError(t, err)

		require.Len(t, data.RelatedPlannings, 1)
		assert.Equal(t, "p1", data.RelatedPlannings[0].ID)
	})

	t.Run("every recurring planning keeps all", func(t *testing.T) {
		data, err := svc.LoadEventDataForAction(context.Background(), event, ActionDataOptions{
			LoadPlannings:              true,
			LoadEvents:                 true,
			LoadEveryRecurringPlanning: true,
		})
		require.NoError(t, err)
		assert.Len(t, data.RelatedPlannings, 3)
	})
}

func TestSpikeRunsPerItemWithItsOwnMethod(t *testing.T) {
	client := newFakeClient()
	client.updateEvent = func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
		clone := *original
		clone.State = model.StateSpiked
		return &clone, nil
	}

	svc, items := newTestService(client)

	e1 := &model.Event{ID: "e1"}
	e2 := &model.Event{ID: "e2", UpdateMethod: model.UpdateMethodFuture}

	updated, err := svc.Spike(context.Background(), testSession, e1, e2)
	require.NoError(t, err)

	require.Len(t, updated, 2)
	assert.Equal(t, "e1", updated[0].ID)
	assert.Equal(t, "e2", updated[1].ID)

	methods := map[string]model.UpdateMethod{}
	for _, call := range client.updateCalls {
		assert.Equal(t, resource.EndpointEventsSpike, call.endpoint)
		methods[call.itemID] = call.payload.(spikePayload).UpdateMethod
	}
	assert.Equal(t, model.UpdateMethodSingle, methods["e1"], "unset method resolves to single")
	assert.Equal(t, model.UpdateMethodFuture, methods["e2"])

	for _, id := range []string{"e1", "e2"} {
		e, ok := items.Event(id)
		require.True(t, ok)
		assert.Equal(t, model.StateSpiked, e.State)
	}
}

func TestSpikeFailsFastOnFirstRejection(t *testing.T) {
	client := newFakeClient()
	client.updateFailures["e2"] = errors.New("locked by someone else")

	svc, _ := newTestService(client)

	_, err := svc.Spike(context.Background(), testSession,
		&model.Event{ID: "e1"},
		&model.Event{ID: "e2"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "e2")
}

func TestUnspikeUsesUnspikeEndpoint(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	_, err := svc.Unspike(context.Background(), testSession, &model.Event{ID: "e1"})
	require.NoError(t, err)

	require.Len(t, client.updateCalls, 1)
	assert.Equal(t, resource.EndpointEventsUnspike, client.updateCalls[0].endpoint)
}

func TestCancelSendsReasonAndMethod(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	_, err := svc.Cancel(context.Background(), testSession, &model.Event{ID: "e1"}, CancelUpdates{
		Method: model.UpdateMethodAll,
		Reason: "venue burned down",
	})
	require.NoError(t, err)

	require.Len(t, client.updateCalls, 1)
	call := client.updateCalls[0]
	assert.Equal(t, resource.EndpointEventsCancel, call.endpoint)
	assert.Equal(t, cancelPayload{
		UpdateMethod: model.UpdateMethodAll,
		Reason:       "venue burned down",
	}, call.payload)
}

func TestUpdateRepetitionsValidatesBeforeSending(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	_, err := svc.UpdateRepetitions(context.Background(), testSession, &model.Event{ID: "e1"}, RepetitionsUpdates{
		Rule: model.RepeatRule{Frequency: "DAILY", Count: 500},
	})
	require.ErrorIs(t, err, model.ErrTooManyOccurrences)
	assert.Zero(t, client.updateCount(), "invalid rule must not reach the backend")
}

func TestPreviewRepetitionsCapsExpansion(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	original := &model.Event{ID: "e1", Dates: model.EventDates{Start: start, End: start.Add(2 * time.Hour)}}

	dates, err := svc.PreviewRepetitions(original, model.RepeatRule{Frequency: "DAILY"})
	require.NoError(t, err)

	assert.Len(t, dates, 200, "open-ended rule is cut at the occurrence limit")
	assert.Equal(t, start, dates[0].Start)
	assert.Equal(t, start.Add(2*time.Hour), dates[0].End)
}

func TestPostAndUnpost(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)
	original := &model.Event{ID: "e1", Etag: "v1"}

	_, err := svc.Post(context.Background(), testSession, original, "")
	require.NoError(t, err)
	_, err = svc.Unpost(context.Background(), testSession, original, model.UpdateMethodAll)
	require.NoError(t, err)

	require.Len(t, client.updateCalls, 2)

	post := client.updateCalls[0].payload.(postPayload)
	assert.Equal(t, model.PostStateUsable, post.PubStatus)
	assert.Equal(t, model.UpdateMethodSingle, post.UpdateMethod)
	assert.Equal(t, "e1", post.Event)
	assert.Equal(t, "v1", post.Etag)

	unpost := client.updateCalls[1].payload.(postPayload)
	assert.Equal(t, model.PostStateCancelled, unpost.PubStatus)
	assert.Equal(t, model.UpdateMethodAll, unpost.UpdateMethod)
}

func TestRescheduleLoadsReplacement(t *testing.T) {
	client := newFakeClient()
	client.updateEvent = func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
		clone := *original
		clone.State = model.StateRescheduled
		clone.RescheduleTo = "e2"
		return &clone, nil
	}
	client.events["e2"] = &model.Event{ID: "e2", RescheduledFrom: "e1"}

	svc, items := newTestService(client)

	res, err := svc.Reschedule(context.Background(), testSession, &model.Event{ID: "e1"}, RescheduleUpdates{})
	require.NoError(t, err)

	assert.Nil(t, res.FollowUpErr)
	require.NotNil(t, res.Replacement)
	assert.Equal(t, "e2", res.Replacement.ID)

	_, ok := items.Event("e2")
	assert.True(t, ok)
}

func TestRescheduleFollowUpFailureIsSecondary(t *testing.T) {
	client := newFakeClient()
	client.updateEvent = func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
		clone := *original
		clone.State = model.StateRescheduled
		clone.RescheduleTo = "gone"
		return &clone, nil
	}

	svc, items := newTestService(client)

	res, err := svc.Reschedule(context.Background(), testSession, &model.Event{ID: "e1"}, RescheduleUpdates{})
	require.NoError(t, err, "the reschedule itself succeeded")

	assert.Nil(t, res.Replacement)
	require.Error(t, res.FollowUpErr)
	assert.ErrorIs(t, res.FollowUpErr, model.ErrNoRecord)

	// The primary outcome is still applied.
	e, ok := items.Event("e1")
	require.True(t, ok)
	assert.Equal(t, model.StateRescheduled, e.State)
}

func TestRescheduleWithoutReplacementSkipsFollowUp(t *testing.T) {
	client := newFakeClient()
	client.updateEvent = func(endpoint string, original *model.Event, payload interface{}) (*model.Event, error) {
		clone := *original
		clone.State = model.StatePostponed
		return &clone, nil
	}

	svc, _ := newTestService(client)

	res, err := svc.Reschedule(context.Background(), testSession, &model.Event{ID: "e1"}, RescheduleUpdates{})
	require.NoError(t, err)
	assert.Nil(t, res.Replacement)
	assert.Nil(t, res.FollowUpErr)
	assert.Zero(t, client.getEventCalls)
}

func TestSearchEventsTracksVisibleAndParams(t *testing.T) {
	client := newFakeClient()
	client.queryEvents = func(params model.SearchParams) ([]*model.Event, error) {
		if params.Page > 1 {
			return []*model.Event{{ID: "e3"}}, nil
		}
		return []*model.Event{{ID: "e1"}, {ID: "e2"}}, nil
	}

	svc, items := newTestService(client)

	_, err := svc.SearchEvents(context.Background(), model.SearchParams{FullText: "fish", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, items.Visible(store.ViewEvents))

	more, err := svc.LoadMoreEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.Equal(t, []string{"e1", "e2", "e3"}, items.Visible(store.ViewEvents))

	params, ok := items.LastParams(store.ViewEvents)
	require.True(t, ok)
	assert.Equal(t, 2, params.Page)
	assert.Equal(t, "fish", params.FullText)
}

func TestLoadMoreWithoutBaselineIsNoop(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	events, err := svc.LoadMoreEvents(context.Background())
	require.NoError(t, err)
	assert.Nil(t, events)
	assert.Empty(t, client.eventQueries)
}

func TestRefetchRerunsBothViewsAtPageOne(t *testing.T) {
	client := newFakeClient()
	client.queryEvents = func(params model.SearchParams) ([]*model.Event, error) {
		return []*model.Event{{ID: "e1"}}, nil
	}
	client.queryPlannings = func(params model.SearchParams) ([]*model.Planning, error) {
		return []*model.Planning{{ID: "p1"}}, nil
	}

	svc, items := newTestService(client)

	_, err := svc.SearchEvents(context.Background(), model.SearchParams{FullText: "fish", Page: 3})
	require.NoError(t, err)
	_, err = svc.SearchPlannings(context.Background(), model.SearchParams{Slugline: "olympics"})
	require.NoError(t, err)

	require.NoError(t, svc.Refetch(context.Background()))

	params, ok := items.LastParams(store.ViewEvents)
	require.True(t, ok)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, "fish", params.FullText)
}
