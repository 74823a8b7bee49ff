package attendance

const TableName = "attendance_records"

const (
	StatusPresent      = "present"
	StatusAbsent       = "absent"
	StatusHalfDay      = "half-day"
	StatusLate         = "late"
	StatusWorkFromHome = "work-from-home"
)

const (
	RegularizationPending  = "pending"
	RegularizationApproved = "approved"
	RegularizationRejected = "rejected"
)

// Regularization is the request to reclassify a late or absent entry. Its
// presence on a record means regularization was requested.
type Regularization struct {
	Reason string `json:"reason"`
	Status string `json:"status"`
}

// AttendanceRecord is one employee-day. CheckIn/CheckOut are wall-clock
// "HH:MM" strings; WorkHours is derived on check-out.
type AttendanceRecord struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employeeId"`
	EmployeeName   string          `json:"employeeName"`
	Date           string          `json:"date"`
	CheckIn        string          `json:"checkIn"`
	CheckOut       string          `json:"checkOut,omitempty"`
	Status         string          `json:"status"`
	WorkHours      float64         `json:"workHours"`
	Regularization *Regularization `json:"regularization,omitempty"`
}
