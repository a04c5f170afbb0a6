package model

import "time"

type WorkflowState string

const (
	StateDraft       WorkflowState = "draft"
	StateIngested    WorkflowState = "ingested"
	StateScheduled   WorkflowState = "scheduled"
	StateKilled      WorkflowState = "killed"
	StateCancelled   WorkflowState = "cancelled"
	StateRescheduled WorkflowState = "rescheduled"
	StatePostponed   WorkflowState = "postponed"
	StateSpiked      WorkflowState = "spiked"
)

type PostState string

const (
	PostStateUsable    PostState = "usable"
	PostStateCancelled PostState = "cancelled"
)

// UpdateMethod selects which occurrences of a recurring series an action
// applies to. The zero value resolves to UpdateMethodSingle.
type UpdateMethod string

const (
	UpdateMethodSingle UpdateMethod = "single"
	UpdateMethodFuture UpdateMethod = "future"
	UpdateMethodAll    UpdateMethod = "all"
)

// Resolve returns the method itself, or single when unset.
func (m UpdateMethod) Resolve() UpdateMethod {
	if m == "" {
		return UpdateMethodSingle
	}
	return m
}

type EventDates struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	TZ    string    `json:"tz,omitempty"`
}

// RepeatRule describes a recurring schedule in the form the backend stores
// under dates.recurring_rule.
type RepeatRule struct {
	Frequency string     `json:"frequency"`
	Interval  int        `json:"interval,omitempty"`
	Count     int        `json:"count,omitempty"`
	Until     *time.Time `json:"until,omitempty"`
	ByDay     string     `json:"byday,omitempty"`
}

type Event struct {
	ID           string      `json:"_id"`
	Etag         string      `json:"_etag,omitempty"`
	Name         string      `json:"name,omitempty"`
	Slugline     string      `json:"slugline,omitempty"`
	RecurrenceID string      `json:"recurrence_id,omitempty"`
	Dates        EventDates  `json:"dates"`
	Rule         *RepeatRule `json:"recurring_rule,omitempty"`

	State     WorkflowState `json:"state,omitempty"`
	PubStatus PostState     `json:"pubstatus,omitempty"`

	// Lock fields are set and cleared together, never individually.
	LockUser    string     `json:"lock_user,omitempty"`
	LockSession string     `json:"lock_session,omitempty"`
	LockAction  string     `json:"lock_action,omitempty"`
	LockTime    *time.Time `json:"lock_time,omitempty"`

	RescheduleTo    string   `json:"reschedule_to,omitempty"`
	RescheduledFrom string   `json:"rescheduled_from,omitempty"`
	PlanningIDs     []string `json:"planning_ids,omitempty"`

	Calendars []string `json:"calendars,omitempty"`

	// UpdateMethod is a client-side annotation used by bulk actions, where
	// each item carries its own resolved scope. It is never read back from
	// the server.
	UpdateMethod UpdateMethod `json:"update_method,omitempty"`
}

// IsRecurring reports whether the event is one occurrence of a series.
func (e *Event) IsRecurring() bool {
	return e.RecurrenceID != ""
}

// LockedInSession reports whether the event is locked by the given session
// for the given action.
func (e *Event) LockedInSession(sessionID, action string) bool {
	return e.LockSession != "" && e.LockSession == sessionID && e.LockAction == action
}

// EventContext is an event decorated with everything an action needs:
// its series, the plannings of the series, the plannings of this exact
// occurrence and a snapshot of the event before the action ran.
type EventContext struct {
	Event            *Event
	Series           []*Event
	Plannings        []*Planning
	RelatedPlannings []*Planning
	Original         *Event
}
