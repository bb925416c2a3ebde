package tools

import (
	"context"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the tools table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tool *models.Tool) (*models.Tool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tool, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ToolList, error)
	ListNeverReserved(ctx context.Context, params pagination.Params) (*ToolList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tools repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tool *models.Tool) (*models.Tool, error) {
	if tool.ID == uuid.Nil {
		tool.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tool).Error; err != nil {
		return nil, err
	}
	return tool, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	var tool models.Tool
	if err := r.db.WithContext(ctx).First(&tool, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tool{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Tool{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ToolList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Tool{})

	if filters.Query != "" {
		// LOWER(...) LIKE keeps the search portable across Postgres and SQLite
		pattern := "%" + filters.Query + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.Time, cursor.Time, cursor.ID)
	}

	var rows []models.Tool
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return buildToolList(rows, limit), nil
}

func (r *repository) ListNeverReserved(ctx context.Context, params pagination.Params) (*ToolList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Tool{}).
		Where("NOT EXISTS (SELECT 1 FROM reservations WHERE reservations.tool_id = tools.id)")

	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.Time, cursor.Time, cursor.ID)
	}

	var rows []models.Tool
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return buildToolList(rows, limit), nil
}

func buildToolList(rows []models.Tool, limit int) *ToolList {
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			Time: last.CreatedAt,
			ID:   last.ID,
		})
	}
	return &ToolList{
		Tools:      fromModels(rows),
		NextCursor: nextCursor,
	}
}
