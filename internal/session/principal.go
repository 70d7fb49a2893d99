package session

// Role enumerates the user types recognised by the catalog suite. The set is
// closed: a principal carries exactly one of these for the whole session and a
// server-side role change only takes effect after a fresh login.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Roles returns every valid role in a stable order.
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdmin}
}

// ParseRole maps a wire value onto the closed enumeration.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(value), true
	}
	return "", false
}

// Valid reports whether the role belongs to the closed enumeration.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Principal is the authenticated identity the rest of the application reasons
// about. It is created by the authentication gateway on successful login,
// reconstituted from the persisted credential on later requests, and destroyed
// on logout.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
