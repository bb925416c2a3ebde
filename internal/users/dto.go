package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Role        enums.UserRole `json:"role"`
	TrustScore  string         `json:"trust_score"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	Role         enums.UserRole
}

// UserList is a cursor-paginated page of users.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		TrustScore:  u.TrustScore.StringFixed(2),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func fromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}

	return &models.User{
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		TrustScore:   decimal.Zero,
	}
}
