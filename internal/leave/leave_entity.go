package leave

import "time"

const TableName = "leave_requests"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// LeaveRequest is one leave application. Days is the inclusive day count
// derived at submission time. Approved and rejected are terminal.
type LeaveRequest struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	EmployeeName    string     `json:"employeeName"`
	LeaveType       string     `json:"leaveType"`
	StartDate       string     `json:"startDate"`
	EndDate         string     `json:"endDate"`
	Days            int        `json:"days"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	AppliedOn       time.Time  `json:"appliedOn"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedOn      *time.Time `json:"approvedOn,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
}
