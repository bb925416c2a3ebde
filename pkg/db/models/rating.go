package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating records one party scoring the other after a completed reservation.
// Rows are immutable once created; each insert triggers a full recompute of
// the rated user's trust score. One rating per (reservation, rater) pair.
type Rating struct {
	ID            uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	ReservationID uuid.UUID    `gorm:"column:reservation_id;type:uuid;not null;uniqueIndex:idx_ratings_reservation_rater"`
	RaterID       uuid.UUID    `gorm:"column:rater_id;type:uuid;not null;uniqueIndex:idx_ratings_reservation_rater"`
	RatedUserID   uuid.UUID    `gorm:"column:rated_user_id;type:uuid;not null;index"`
	Score         int          `gorm:"column:score;not null"`
	Comment       string       `gorm:"column:comment"`
	Reservation   *Reservation `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	Rater         *User        `gorm:"foreignKey:RaterID;constraint:OnDelete:CASCADE"`
	RatedUser     *User        `gorm:"foreignKey:RatedUserID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
}
