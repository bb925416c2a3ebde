package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/emirkaya/toolshare-backend/pkg/enums"
)

// Reservation books a tool for an inclusive calendar-day range.
// StartDate <= EndDate always holds for committed rows, and no two rows in an
// occupying status may overlap for the same tool.
type Reservation struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ToolID     uuid.UUID               `gorm:"column:tool_id;type:uuid;not null;index"`
	BorrowerID uuid.UUID               `gorm:"column:borrower_id;type:uuid;not null;index"`
	StartDate  time.Time               `gorm:"column:start_date;type:date;not null"`
	EndDate    time.Time               `gorm:"column:end_date;type:date;not null"`
	Status     enums.ReservationStatus `gorm:"column:status;not null;default:pending"`
	Tool       *Tool                   `gorm:"foreignKey:ToolID;constraint:OnDelete:CASCADE"`
	Borrower   *User                   `gorm:"foreignKey:BorrowerID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
