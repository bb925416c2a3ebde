package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines tool catalog operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateToolInput) (*ToolDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ToolDTO, error)
	Update(ctx context.Context, input UpdateToolInput) (*ToolDTO, error)
	Delete(ctx context.Context, toolID, actorID uuid.UUID, actorRole enums.UserRole) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ToolList, error)
	ListNeverReserved(ctx context.Context, params pagination.Params) (*ToolList, error)
}

type service struct {
	repo Repository
}

// ServiceParams bundles the dependencies required to build a tools service.
type ServiceParams struct {
	Repo Repository
}

// NewService constructs a tools service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tools repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateToolInput) (*ToolDTO, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool name is required")
	}

	tool, err := s.repo.Create(ctx, &models.Tool{
		OwnerID:     input.OwnerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Status:      enums.ToolStatusAvailable,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tool")
	}
	return FromModel(tool), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ToolDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool id required")
	}
	tool, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
	}
	return FromModel(tool), nil
}

func (s *service) Update(ctx context.Context, input UpdateToolInput) (*ToolDTO, error) {
	if input.ToolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	tool, err := s.repo.FindByID(ctx, input.ToolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
	}
	if tool.OwnerID != input.ActorID && input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tool does not belong to user")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tool status")
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return FromModel(tool), nil
	}

	if err := s.repo.Update(ctx, tool.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tool")
	}

	updated, err := s.repo.FindByID(ctx, tool.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload tool")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, toolID, actorID uuid.UUID, actorRole enums.UserRole) error {
	if toolID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tool id required")
	}
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	tool, err := s.repo.FindByID(ctx, toolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
	}
	if tool.OwnerID != actorID && actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "tool does not belong to user")
	}

	if err := s.repo.Delete(ctx, toolID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tool")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ToolList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tools")
	}
	return list, nil
}

func (s *service) ListNeverReserved(ctx context.Context, params pagination.Params) (*ToolList, error) {
	list, err := s.repo.ListNeverReserved(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list never reserved tools")
	}
	return list, nil
}
