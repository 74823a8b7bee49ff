package task

type CreateTaskRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high urgent"`
	ProjectID   string `json:"project_id"`
	TeamID      string `json:"team_id"`
	AssignedTo  string `json:"assigned_to"`
	DueDate     string `json:"due_date"`
}

// UpdateTaskRequest carries only the fields to change; nil pointers leave
// the stored value alone.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}
