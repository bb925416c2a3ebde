package ratings

import (
	"context"

	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for ratings and trust scores.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	ExistsForReservationAndRater(ctx context.Context, reservationID, raterID uuid.UUID) (bool, error)
	ListScoresForUser(ctx context.Context, ratedUserID uuid.UUID) ([]int, error)
	UpdateUserTrustScore(ctx context.Context, userID uuid.UUID, score decimal.Decimal) error
	ListReceived(ctx context.Context, ratedUserID uuid.UUID, params pagination.Params) (*RatingList, error)
	ListRatable(ctx context.Context, userID uuid.UUID) ([]RatableReservation, error)
	TopRated(ctx context.Context, minAverage float64, limit int) ([]TopRatedUser, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ratings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		return nil, err
	}
	return rating, nil
}

func (r *repository) ExistsForReservationAndRater(ctx context.Context, reservationID, raterID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("reservation_id = ? AND rater_id = ?", reservationID, raterID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListScoresForUser(ctx context.Context, ratedUserID uuid.UUID) ([]int, error) {
	var scores []int
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("rated_user_id = ?", ratedUserID).
		Order("created_at ASC").
		Pluck("score", &scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *repository) UpdateUserTrustScore(ctx context.Context, userID uuid.UUID, score decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("trust_score", score)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListReceived(ctx context.Context, ratedUserID uuid.UUID, params pagination.Params) (*RatingList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("rated_user_id = ?", ratedUserID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.Time, cursor.Time, cursor.ID)
	}

	var rows []models.Rating
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
	return &RatingList{
		Ratings:    fromModels(rows),
		NextCursor: nextCursor,
	}, nil
}

// ListRatable returns completed reservations where the user took part, on
// either side of the loan, and has not submitted a rating yet.
func (r *repository) ListRatable(ctx context.Context, userID uuid.UUID) ([]RatableReservation, error) {
	var rows []RatableReservation
	err := r.db.WithContext(ctx).Raw(`
SELECT
    res.id AS reservation_id,
    t.id AS tool_id,
    t.name AS tool_name,
    CASE WHEN res.borrower_id = ? THEN t.owner_id ELSE res.borrower_id END AS counterpart_id,
    cu.username AS counterpart,
    res.start_date,
    res.end_date
FROM reservations res
JOIN tools t ON t.id = res.tool_id
JOIN users cu ON cu.id = CASE WHEN res.borrower_id = ? THEN t.owner_id ELSE res.borrower_id END
WHERE res.status = 'completed'
  AND (res.borrower_id = ? OR t.owner_id = ?)
  AND NOT EXISTS (
      SELECT 1 FROM ratings rt
      WHERE rt.reservation_id = res.id AND rt.rater_id = ?
  )
ORDER BY res.end_date DESC, res.id DESC
`, userID, userID, userID, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopRated lists users whose average received score clears the threshold.
func (r *repository) TopRated(ctx context.Context, minAverage float64, limit int) ([]TopRatedUser, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	var rows []TopRatedUser
	err := r.db.WithContext(ctx).Raw(`
SELECT
    u.id AS user_id,
    u.username,
    AVG(rt.score) AS average_score,
    COUNT(rt.id) AS rating_count
FROM users u
JOIN ratings rt ON rt.rated_user_id = u.id
GROUP BY u.id, u.username
HAVING AVG(rt.score) > ?
ORDER BY average_score DESC, rating_count DESC, u.username ASC
LIMIT ?
`, minAverage, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
