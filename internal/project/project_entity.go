package project

import "time"

const (
	TableName     = "projects"
	TeamTableName = "teams"
)

const (
	StatusActive    = "active"
	StatusOnHold    = "on-hold"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	Status      string    `json:"status"`
	TeamIDs     []string  `json:"teamIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Team references its project and members by id only; membership is
// resolved by lookup at read time, never as embedded object graphs.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"projectId"`
	LeadID    string    `json:"leadId"`
	MemberIDs []string  `json:"memberIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AllMembers returns the member set with the lead always included, since
// the lead belongs to the team whether or not it is listed explicitly.
func (t Team) AllMembers() []string {
	out := make([]string, 0, len(t.MemberIDs)+1)
	seen := make(map[string]bool, len(t.MemberIDs)+1)
	if t.LeadID != "" {
		out = append(out, t.LeadID)
		seen[t.LeadID] = true
	}
	for _, id := range t.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func validStatus(status string) bool {
	switch status {
	case StatusActive, StatusOnHold, StatusCompleted, StatusArchived:
		return true
	}
	return false
}
