package enums

import (
	"fmt"
	"strings"
)

// RoleName identifies one of the predefined platform roles.
type RoleName string

const (
	RoleAdmin   RoleName = "admin"
	RoleCreator RoleName = "creator"
	RoleLearner RoleName = "learner"
)

var validRoleNames = []RoleName{RoleAdmin, RoleCreator, RoleLearner}

// DefaultRoles lists the roles seeded by the bootstrap operation.
func DefaultRoles() []RoleName {
	out := make([]RoleName, len(validRoleNames))
	copy(out, validRoleNames)
	return out
}

func (r RoleName) String() string {
	return string(r)
}

// IsValid reports whether the value is a predefined role.
func (r RoleName) IsValid() bool {
	for _, candidate := range validRoleNames {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRoleName converts raw input into a RoleName, ignoring case.
func ParseRoleName(value string) (RoleName, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoleNames {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
