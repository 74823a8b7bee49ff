package leave

type ApplyLeaveRequest struct {
	ID        string `json:"id"`
	LeaveType string `json:"leave_type" validate:"required,oneof=casual sick earned unpaid"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason"`
}
