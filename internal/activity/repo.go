package activity

import (
	"context"
	"time"

	"github.com/emirkaya/toolshare-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one row of a user's loan history, on either side of the loan.
type Entry struct {
	Role          enums.ActivityRole      `json:"role" gorm:"column:role"`
	ReservationID uuid.UUID               `json:"reservation_id" gorm:"column:reservation_id"`
	ToolID        uuid.UUID               `json:"tool_id" gorm:"column:tool_id"`
	ToolName      string                  `json:"tool_name" gorm:"column:tool_name"`
	CounterpartID uuid.UUID               `json:"counterpart_id" gorm:"column:counterpart_id"`
	Counterpart   string                  `json:"counterpart" gorm:"column:counterpart"`
	StartDate     time.Time               `json:"start_date" gorm:"column:start_date"`
	EndDate       time.Time               `json:"end_date" gorm:"column:end_date"`
	Status        enums.ReservationStatus `json:"status" gorm:"column:status"`
}

// Repository reads the two sides of a user's activity, each sorted by
// start date descending so the service can merge them.
type Repository interface {
	ListBorrowed(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	ListLent(ctx context.Context, userID uuid.UUID) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an activity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListBorrowed(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	var rows []Entry
	err := r.db.WithContext(ctx).Raw(`
SELECT
    'borrowed' AS role,
    res.id AS reservation_id,
    t.id AS tool_id,
    t.name AS tool_name,
    t.owner_id AS counterpart_id,
    ou.username AS counterpart,
    res.start_date,
    res.end_date,
    res.status
FROM reservations res
JOIN tools t ON t.id = res.tool_id
JOIN users ou ON ou.id = t.owner_id
WHERE res.borrower_id = ?
ORDER BY res.start_date DESC, res.id DESC
`, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListLent(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	var rows []Entry
	err := r.db.WithContext(ctx).Raw(`
SELECT
    'lent' AS role,
    res.id AS reservation_id,
    t.id AS tool_id,
    t.name AS tool_name,
    res.borrower_id AS counterpart_id,
    bu.username AS counterpart,
    res.start_date,
    res.end_date,
    res.status
FROM reservations res
JOIN tools t ON t.id = res.tool_id
JOIN users bu ON bu.id = res.borrower_id
WHERE t.owner_id = ?
ORDER BY res.start_date DESC, res.id DESC
`, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
