package enums

import "fmt"

// ToolStatus is the advisory display status of a listing. Date-range
// availability is always computed from reservation rows, never from this
// field; the two may diverge.
type ToolStatus string

const (
	ToolStatusAvailable   ToolStatus = "available"
	ToolStatusReserved    ToolStatus = "reserved"
	ToolStatusMaintenance ToolStatus = "maintenance"
)

var validToolStatuses = []ToolStatus{
	ToolStatusAvailable,
	ToolStatusReserved,
	ToolStatusMaintenance,
}

// String implements fmt.Stringer.
func (s ToolStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ToolStatus.
func (s ToolStatus) IsValid() bool {
	for _, candidate := range validToolStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseToolStatus converts raw input into a ToolStatus.
func ParseToolStatus(value string) (ToolStatus, error) {
	for _, candidate := range validToolStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tool status %q", value)
}
