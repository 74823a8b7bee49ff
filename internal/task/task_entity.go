package task

import "time"

const TableName = "tasks"

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	// StatusOverdue is a derived display state, never stored.
	StatusOverdue = "overdue"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Author is the user snapshot captured on a follow-up at write time.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type FollowUp struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task rows are soft-deleted first (IsDeleted tombstone) and only removed
// physically by an explicit permanent delete.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"projectId,omitempty"`
	TeamID      string     `json:"teamId,omitempty"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	DueDate     string     `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	IsDeleted   bool       `json:"isDeleted"`
	FollowUps   []FollowUp `json:"followUps,omitempty"`
}

// EffectiveStatus derives the display status at read time: an incomplete
// task past its due date reads as overdue. The stored status is untouched.
func (t Task) EffectiveStatus(now time.Time) string {
	if t.Status == StatusCompleted || t.DueDate == "" {
		return t.Status
	}
	if t.DueDate < now.Format("2006-01-02") {
		return StatusOverdue
	}
	return t.Status
}
