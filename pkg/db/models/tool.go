package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/emirkaya/toolshare-backend/pkg/enums"
)

// Tool represents an owner's listing. OwnerID is immutable after creation.
// Status is advisory display state; availability for a date range is always
// computed from reservation rows.
type Tool struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID     uuid.UUID        `gorm:"column:owner_id;type:uuid;not null;index"`
	Name        string           `gorm:"column:name;not null;index"`
	Description string           `gorm:"column:description"`
	Category    string           `gorm:"column:category;index"`
	Status      enums.ToolStatus `gorm:"column:status;not null;default:available"`
	Owner       *User            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
