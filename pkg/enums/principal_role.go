package enums

import (
	"fmt"
	"strings"
)

// PrincipalRole is carried in access tokens and enforced by route guards.
type PrincipalRole string

const (
	PrincipalRoleAdmin PrincipalRole = "admin"
	PrincipalRoleUser  PrincipalRole = "user"
)

var validPrincipalRoles = []PrincipalRole{
	PrincipalRoleAdmin,
	PrincipalRoleUser,
}

// String implements fmt.Stringer.
func (r PrincipalRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known PrincipalRole.
func (r PrincipalRole) IsValid() bool {
	for _, candidate := range validPrincipalRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePrincipalRole converts raw input into a PrincipalRole.
func ParsePrincipalRole(value string) (PrincipalRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPrincipalRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid principal role %q", value)
}
