package enums

import "fmt"

// TerminalRole distinguishes the admin/manager station from a salesman
// terminal when minting session tokens.
type TerminalRole string

const (
	TerminalRoleAdmin    TerminalRole = "admin"
	TerminalRoleSalesman TerminalRole = "salesman"
)

var validTerminalRoles = []TerminalRole{
	TerminalRoleAdmin,
	TerminalRoleSalesman,
}

// String implements fmt.Stringer.
func (r TerminalRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known TerminalRole.
func (r TerminalRole) IsValid() bool {
	for _, candidate := range validTerminalRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseTerminalRole converts raw input into a TerminalRole.
func ParseTerminalRole(value string) (TerminalRole, error) {
	for _, candidate := range validTerminalRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid terminal role %q", value)
}
