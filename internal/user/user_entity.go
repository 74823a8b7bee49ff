package user

import "time"

const TableName = "users"

// Role values drive authorization and notification routing.
const (
	RoleAdmin     = "Admin"
	RoleHR        = "HR"
	RoleManager   = "Manager"
	RoleDeveloper = "Developer"
	RoleDesigner  = "Designer"
	RoleEmployee  = "Employee"
)

// ManagerialRoles are the roles notified about submitted leave and
// regularization requests.
func ManagerialRoles() []string {
	return []string{RoleAdmin, RoleHR, RoleManager}
}

// ValidRole reports whether role is one of the known role strings.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHR, RoleManager, RoleDeveloper, RoleDesigner, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor identifies who performs a mutation. It is always passed explicitly
// into domain helpers and the fan-out engine, never read from ambient state.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Actor converts the user into the explicit mutation context.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
