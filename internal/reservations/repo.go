package reservations

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the reservations table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	FindOverlapping(ctx context.Context, toolID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]models.Reservation, error)
	LockToolBookings(ctx context.Context, toolID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error
	UpdateDates(ctx context.Context, id uuid.UUID, start, end time.Time) error
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID, params pagination.Params) (*ReservationList, error)
	ListByTool(ctx context.Context, toolID uuid.UUID, params pagination.Params) (*ReservationList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindOverlapping returns occupying reservations whose closed date range
// shares at least one day with [start, end]. excludeID skips the reservation
// being edited so it cannot conflict with itself.
func (r *repository) FindOverlapping(ctx context.Context, toolID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).
		Where("tool_id = ?", toolID).
		Where("status IN ?", occupyingStatusStrings()).
		Where("start_date <= ? AND end_date >= ?", NormalizeDate(end), NormalizeDate(start))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var rows []models.Reservation
	if err := query.
		Order("start_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LockToolBookings serializes booking writers for one tool within the current
// transaction. SQLite has a single writer, so the lock is Postgres-only.
func (r *repository) LockToolBookings(ctx context.Context, toolID uuid.UUID) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?)", advisoryLockKey(toolID)).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateDates(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{"start_date": start, "end_date": end})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID, params pagination.Params) (*ReservationList, error) {
	return r.list(ctx, params, "borrower_id = ?", borrowerID)
}

func (r *repository) ListByTool(ctx context.Context, toolID uuid.UUID, params pagination.Params) (*ReservationList, error) {
	return r.list(ctx, params, "tool_id = ?", toolID)
}

func (r *repository) list(ctx context.Context, params pagination.Params, cond string, arg any) (*ReservationList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Reservation{}).Where(cond, arg)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.Time, cursor.Time, cursor.ID)
	}

	var rows []models.Reservation
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			Time: last.CreatedAt,
			ID:   last.ID,
		})
	}
	return &ReservationList{
		Reservations: fromModels(rows),
		NextCursor:   nextCursor,
	}, nil
}

func occupyingStatusStrings() []string {
	out := make([]string, 0, len(enums.OccupyingReservationStatuses))
	for _, s := range enums.OccupyingReservationStatuses {
		out = append(out, s.String())
	}
	return out
}

// advisoryLockKey folds the tool UUID into the bigint keyspace pg_advisory_xact_lock expects.
func advisoryLockKey(toolID uuid.UUID) int64 {
	b := toolID[:]
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	return int64(hi ^ lo)
}
