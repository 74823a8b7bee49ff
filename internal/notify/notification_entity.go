package notify

import "time"

const TableName = "notifications"

// Notification types, one per originating domain.
const (
	TypeLeave      = "leave"
	TypeAttendance = "attendance"
	TypeTask       = "task"
	TypeSupport    = "support"
	TypeSystem     = "system"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification is one per-recipient record produced by the fan-out engine.
// IsRead starts false and only ever moves to true.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Priority  string         `json:"priority"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Link      string         `json:"link,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	IsRead    bool           `json:"isRead"`
}
