package model

import "time"

type Coverage struct {
	ID             string        `json:"coverage_id"`
	ContentType    string        `json:"content_type,omitempty"`
	WorkflowStatus WorkflowState `json:"workflow_status,omitempty"`
	ScheduledAt    *time.Time    `json:"scheduled,omitempty"`
}

type Planning struct {
	ID           string        `json:"_id"`
	Etag         string        `json:"_etag,omitempty"`
	Slugline     string        `json:"slugline,omitempty"`
	EventItem    string        `json:"event_item,omitempty"`
	RecurrenceID string        `json:"recurrence_id,omitempty"`
	Coverages    []Coverage    `json:"coverages,omitempty"`
	State        WorkflowState `json:"state,omitempty"`

	LockUser    string     `json:"lock_user,omitempty"`
	LockSession string     `json:"lock_session,omitempty"`
	LockAction  string     `json:"lock_action,omitempty"`
	LockTime    *time.Time `json:"lock_time,omitempty"`
}

func (p *Planning) LockedInSession(sessionID, action string) bool {
	return p.LockSession != "" && p.LockSession == sessionID && p.LockAction == action
}
