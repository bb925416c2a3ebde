package enums

import "fmt"

// ReservationStatus tracks a reservation through its lifecycle.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusApproved  ReservationStatus = "approved"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
	ReservationStatusCompleted,
	ReservationStatusCancelled,
}

// OccupyingReservationStatuses are the statuses that hold a date range for
// conflict purposes. Completed and cancelled rows never conflict.
var OccupyingReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOccupying reports whether rows in this status count against availability.
func (s ReservationStatus) IsOccupying() bool {
	for _, candidate := range OccupyingReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// pending -> approved -> completed, and any non-terminal state -> cancelled.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch next {
	case ReservationStatusApproved:
		return s == ReservationStatusPending
	case ReservationStatusCompleted:
		return s == ReservationStatusApproved
	case ReservationStatusCancelled:
		return !s.IsTerminal()
	case ReservationStatusPending:
		return s == ReservationStatusPending
	}
	return false
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
