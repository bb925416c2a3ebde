package enums

import "fmt"

// ActivityRole labels which side of a reservation a user was on in their
// merged activity timeline.
type ActivityRole string

const (
	ActivityRoleBorrowed ActivityRole = "borrowed"
	ActivityRoleLent     ActivityRole = "lent"
)

var validActivityRoles = []ActivityRole{
	ActivityRoleBorrowed,
	ActivityRoleLent,
}

// String implements fmt.Stringer.
func (r ActivityRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActivityRole.
func (r ActivityRole) IsValid() bool {
	for _, candidate := range validActivityRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActivityRole converts raw input into an ActivityRole.
func ParseActivityRole(value string) (ActivityRole, error) {
	for _, candidate := range validActivityRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity role %q", value)
}
