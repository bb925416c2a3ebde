package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emirkaya/toolshare-backend/pkg/enums"
)

// User represents the canonical identity entity. TrustScore is derived state:
// only the reputation recompute may write it, never request payloads.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Username     string          `gorm:"column:username;not null;uniqueIndex"`
	Email        string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.UserRole  `gorm:"column:role;not null;default:user"`
	TrustScore   decimal.Decimal `gorm:"column:trust_score;type:numeric(3,2);not null;default:0"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
