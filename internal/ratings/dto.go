package ratings

import (
	"time"

	"github.com/google/uuid"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
)

// RatingDTO is the transport shape for a submitted rating.
type RatingDTO struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	RaterID       uuid.UUID `json:"rater_id"`
	RatedUserID   uuid.UUID `json:"rated_user_id"`
	Score         int       `json:"score"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRatingInput carries a rating submission. The rated user is derived
// from the reservation, never supplied by the client.
type CreateRatingInput struct {
	ReservationID uuid.UUID
	RaterID       uuid.UUID
	Score         int
	Comment       string
}

// RatableReservation is a completed reservation the user has not rated yet.
type RatableReservation struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ToolID        uuid.UUID `json:"tool_id"`
	ToolName      string    `json:"tool_name"`
	CounterpartID uuid.UUID `json:"counterpart_id"`
	Counterpart   string    `json:"counterpart"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// TopRatedUser is a row from the reputation leaderboard.
type TopRatedUser struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	AverageScore float64   `json:"average_score"`
	RatingCount  int64     `json:"rating_count"`
}

// RatingList wraps paginated ratings plus the next cursor.
type RatingList struct {
	Ratings    []RatingDTO `json:"ratings"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(r *models.Rating) *RatingDTO {
	if r == nil {
		return nil
	}
	return &RatingDTO{
		ID:            r.ID,
		ReservationID: r.ReservationID,
		RaterID:       r.RaterID,
		RatedUserID:   r.RatedUserID,
		Score:         r.Score,
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt,
	}
}

func fromModels(rows []models.Rating) []RatingDTO {
	out := make([]RatingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
