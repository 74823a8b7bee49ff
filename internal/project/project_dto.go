package project

type CreateProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type CreateTeamRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name" validate:"required"`
	ProjectID string   `json:"project_id" validate:"required"`
	LeadID    string   `json:"lead_id" validate:"required"`
	MemberIDs []string `json:"member_ids"`
}
