package model

import "time"

type ItemType string

const (
	ItemTypeEvent    ItemType = "event"
	ItemTypePlanning ItemType = "planning"
)

// Lock is the client-side view of an edit lock. The server is the source
// of truth; entries here are replaced wholesale from fetch results and
// push notifications.
type Lock struct {
	ItemID    string
	ItemType  ItemType
	SessionID string
	UserID    string
	Action    string
	Time      time.Time
}
