package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
)

// ReservationDTO is the transport shape for a reservation.
type ReservationDTO struct {
	ID         uuid.UUID               `json:"id"`
	ToolID     uuid.UUID               `json:"tool_id"`
	BorrowerID uuid.UUID               `json:"borrower_id"`
	StartDate  string                  `json:"start_date"`
	EndDate    string                  `json:"end_date"`
	Status     enums.ReservationStatus `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// CreateReservationInput carries the booking request.
type CreateReservationInput struct {
	ToolID     uuid.UUID
	BorrowerID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}

// AvailabilityInput identifies the tool and candidate date range to check.
// ExcludeReservationID skips one reservation, for re-checks while editing.
type AvailabilityInput struct {
	ToolID               uuid.UUID
	StartDate            time.Time
	EndDate              time.Time
	ExcludeReservationID uuid.UUID
}

// UpdateDatesInput carries a reschedule request for an existing reservation.
type UpdateDatesInput struct {
	ReservationID uuid.UUID
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
	StartDate     time.Time
	EndDate       time.Time
}

// AvailabilityResult reports whether the range is free plus any conflicts found.
type AvailabilityResult struct {
	Available bool             `json:"available"`
	Conflicts []ReservationDTO `json:"conflicts,omitempty"`
}

// UpdateStatusInput carries a requested status transition.
type UpdateStatusInput struct {
	ReservationID uuid.UUID
	ActorID       uuid.UUID
	ActorRole     enums.UserRole
	Next          enums.ReservationStatus
}

// ReservationList wraps paginated reservations plus the next cursor.
type ReservationList struct {
	Reservations []ReservationDTO `json:"reservations"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

func FromModel(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:         r.ID,
		ToolID:     r.ToolID,
		BorrowerID: r.BorrowerID,
		StartDate:  FormatDate(r.StartDate),
		EndDate:    FormatDate(r.EndDate),
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func fromModels(rows []models.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
