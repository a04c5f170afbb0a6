// Package bridge routes the backend's push notifications into the item
// store and papers over the eventual-consistency gap between a write and
// the search index's visibility of it.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/newsdesk/planning-coordinator/internal/store"
	"go.uber.org/zap"
)

// Kind is the closed set of push-event names the feed can deliver.
type Kind string

const (
	KindEventsCreated                    Kind = "events:created"
	KindEventsCreatedRecurring           Kind = "events:created:recurring"
	KindEventsUpdated                    Kind = "events:updated"
	KindEventsUpdatedRecurring           Kind = "events:updated:recurring"
	KindEventsLock                       Kind = "events:lock"
	KindEventsUnlock                     Kind = "events:unlock"
	KindEventsSpiked                     Kind = "events:spiked"
	KindEventsUnspiked                   Kind = "events:unspiked"
	KindEventsCancel                     Kind = "events:cancel"
	KindEventsReschedule                 Kind = "events:reschedule"
	KindEventsRescheduleRecurring        Kind = "events:reschedule:recurring"
	KindEventsPostpone                   Kind = "events:postpone"
	KindEventsPosted                     Kind = "events:posted"
	KindEventsPostedRecurring            Kind = "events:posted:recurring"
	KindEventsUnposted                   Kind = "events:unposted"
	KindEventsUnpostedRecurring          Kind = "events:unposted:recurring"
	KindEventsUpdateTime                 Kind = "events:update_time"
	KindEventsUpdateTimeRecurring        Kind = "events:update_time:recurring"
	KindEventsUpdateRepetitionsRecurring Kind = "events:update_repetitions:recurring"
	KindEventsExpired                    Kind = "events:expired"
	KindEventsDelete                     Kind = "events:delete"

	KindPlanningCreated  Kind = "planning:created"
	KindPlanningUpdated  Kind = "planning:updated"
	KindPlanningSpiked   Kind = "planning:spiked"
	KindPlanningUnspiked Kind = "planning:unspiked"
)

var kinds = func() map[string]Kind {
	all := []Kind{
		KindEventsCreated, KindEventsCreatedRecurring,
		KindEventsUpdated, KindEventsUpdatedRecurring,
		KindEventsLock, KindEventsUnlock,
		KindEventsSpiked, KindEventsUnspiked,
		KindEventsCancel,
		KindEventsReschedule, KindEventsRescheduleRecurring,
		KindEventsPostpone,
		KindEventsPosted, KindEventsPostedRecurring,
		KindEventsUnposted, KindEventsUnpostedRecurring,
		KindEventsUpdateTime, KindEventsUpdateTimeRecurring,
		KindEventsUpdateRepetitionsRecurring,
		KindEventsExpired, KindEventsDelete,
		KindPlanningCreated, KindPlanningUpdated,
		KindPlanningSpiked, KindPlanningUnspiked,
	}

	m := make(map[string]Kind, len(all))
	for _, k := range all {
		m[string(k)] = k
	}
	return m
}()

// ParseKind maps a feed event name onto the closed Kind set.
func ParseKind(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// Payload is the JSON body attached to every push event. Only Item is
// always present; the rest depends on the event kind.
type Payload struct {
	Item           string              `json:"item"`
	Etag           string              `json:"etag,omitempty"`
	Reason         string              `json:"reason,omitempty"`
	OccurStatus    string              `json:"occur_status,omitempty"`
	CancelledItems []string            `json:"cancelled_items,omitempty"`
	LockSession    string              `json:"lock_session,omitempty"`
	LockAction     string              `json:"lock_action,omitempty"`
	LockTime       *time.Time          `json:"lock_time,omitempty"`
	User           string              `json:"user,omitempty"`
	State          model.WorkflowState `json:"state,omitempty"`
	PubStatus      model.PostState     `json:"pubstatus,omitempty"`
	RecurrenceID   string              `json:"recurrence_id,omitempty"`
}

type resourceClient interface {
	QueryEvents(ctx context.Context, params model.SearchParams) ([]*model.Event, error)
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	GetPlanningByID(ctx context.Context, id string) (*model.Planning, error)
}

type refetcher interface {
	Refetch(ctx context.Context) error
}

// notifier is how user-facing notices leave the bridge; the gateway
// satisfies it by pushing to attached UI sessions.
type notifier interface {
	ItemUnlocked(itemID, byUser string)
	ItemsChanged()
}

type Settings struct {
	LocalSession       string
	MaxRecurrentEvents int
	RetryAttempts      int
	RetryInterval      time.Duration
	RefetchDelay       time.Duration
}

type Bridge struct {
	logger   *zap.SugaredLogger
	client   resourceClient
	store    *store.Store
	refetch  refetcher
	notifier notifier
	settings Settings

	mu               sync.Mutex
	pendingRefetches int
}

func NewBridge(
	logger *zap.SugaredLogger,
	client resourceClient,
	items *store.Store,
	refetch refetcher,
	notifier notifier,
	settings Settings,
) *Bridge {
	return &Bridge{
		logger:   logger,
		client:   client,
		store:    items,
		refetch:  refetch,
		notifier: notifier,
		settings: settings,
	}
}

// Handle dispatches one push event to its handler. The switch is the
// single place a new Kind has to be wired in.
func (b *Bridge) Handle(ctx context.Context, kind Kind, payload *Payload) error {
	switch kind {
	case KindEventsCreated:
		return b.onEventCreated(ctx, payload)
	case KindEventsCreatedRecurring:
		return b.onRecurringCreated(ctx, payload)
	case KindEventsUpdated, KindEventsUpdatedRecurring,
		KindEventsUnspiked,
		KindEventsReschedule, KindEventsRescheduleRecurring,
		KindEventsPostpone,
		KindEventsPosted, KindEventsPostedRecurring,
		KindEventsUnposted, KindEventsUnpostedRecurring,
		KindEventsUpdateTime, KindEventsUpdateTimeRecurring,
		KindEventsUpdateRepetitionsRecurring:
		return b.onEventChanged(ctx, payload)
	case KindEventsLock:
		return b.onEventLock(ctx, payload)
	case KindEventsUnlock:
		return b.onEventUnlock(ctx, payload)
	case KindEventsSpiked:
		return b.onEventSpiked(ctx, payload)
	case KindEventsCancel:
		return b.onEventCancelled(ctx, payload)
	case KindEventsExpired, KindEventsDelete:
		return b.onEventRemoved(ctx, payload)
	case KindPlanningCreated, KindPlanningUpdated, KindPlanningUnspiked:
		return b.onPlanningChanged(ctx, payload)
	case KindPlanningSpiked:
		return b.onPlanningSpiked(ctx, payload)
	default:
		return fmt.Errorf("unhandled push event kind %q", kind)
	}
}
