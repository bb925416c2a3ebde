package tools

import (
	"time"

	"github.com/google/uuid"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
)

// ToolDTO is the transport shape for a tool listing.
type ToolDTO struct {
	ID          uuid.UUID        `json:"id"`
	OwnerID     uuid.UUID        `json:"owner_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Status      enums.ToolStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateToolInput carries the fields required to list a new tool.
type CreateToolInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Category    string
}

// UpdateToolInput carries the mutable tool fields; nil means unchanged.
type UpdateToolInput struct {
	ToolID      uuid.UUID
	ActorID     uuid.UUID
	ActorRole   enums.UserRole
	Name        *string
	Description *string
	Category    *string
	Status      *enums.ToolStatus
}

// ListFilters describe the supported filter knobs for the tools browse endpoint.
type ListFilters struct {
	Query    string
	Category string
	OwnerID  *uuid.UUID
	Status   *enums.ToolStatus
}

// ToolList wraps the paginated tools plus the next page cursor.
type ToolList struct {
	Tools      []ToolDTO `json:"tools"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromModel(t *models.Tool) *ToolDTO {
	if t == nil {
		return nil
	}
	return &ToolDTO{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromModels(rows []models.Tool) []ToolDTO {
	out := make([]ToolDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
