package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emirkaya/toolshare-backend/internal/tools"
	"github.com/emirkaya/toolshare-backend/pkg/db"
	"github.com/emirkaya/toolshare-backend/pkg/db/models"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/metrics"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TopRatedThreshold is the minimum average score for the leaderboard.
const TopRatedThreshold = 4.0

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines reputation operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, input CreateRatingInput) (*RatingDTO, error)
	ListReceived(ctx context.Context, ratedUserID uuid.UUID, params pagination.Params) (*RatingList, error)
	ListRatable(ctx context.Context, userID uuid.UUID) ([]RatableReservation, error)
	TopRated(ctx context.Context, limit int) ([]TopRatedUser, error)
	Recompute(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    Repository
	tools   tools.Repository
	tx      txRunner
	metrics *metrics.BookingMetrics
}

// ServiceParams bundles the dependencies required to build a ratings service.
type ServiceParams struct {
	Repo      Repository
	ToolsRepo tools.Repository
	Tx        txRunner
	Metrics   *metrics.BookingMetrics
}

// NewService constructs a ratings service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ratings repository is required")
	}
	if params.ToolsRepo == nil {
		return nil, fmt.Errorf("tools repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:    params.Repo,
		tools:   params.ToolsRepo,
		tx:      params.Tx,
		metrics: params.Metrics,
	}, nil
}

// Create validates the rating against its reservation, stores it, and
// recomputes the rated user's trust score in the same transaction so the
// aggregate can never drift from the rating rows.
func (s *service) Create(ctx context.Context, input CreateRatingInput) (*RatingDTO, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if input.RaterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Score < 1 || input.Score > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "score must be between 1 and 5")
	}

	var created *models.Rating
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		toolsRepo := s.tools.WithTx(tx)

		reservation, err := s.findReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "only completed reservations can be rated")
		}

		tool, err := toolsRepo.FindByID(ctx, reservation.ToolID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
		}

		ratedUserID, err := counterpart(reservation, tool, input.RaterID)
		if err != nil {
			return err
		}

		exists, err := repo.ExistsForReservationAndRater(ctx, reservation.ID, input.RaterID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing rating")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "reservation already rated")
		}

		created, err = repo.Create(ctx, &models.Rating{
			ReservationID: reservation.ID,
			RaterID:       input.RaterID,
			RatedUserID:   ratedUserID,
			Score:         input.Score,
			Comment:       input.Comment,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_ratings_reservation_rater") {
				return pkgerrors.New(pkgerrors.CodeConflict, "reservation already rated")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
		}

		started := time.Now()
		if err := s.recomputeTrustScore(ctx, repo, ratedUserID); err != nil {
			return err
		}
		s.metrics.ObserveTrustRecompute(time.Since(started))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) ListReceived(ctx context.Context, ratedUserID uuid.UUID, params pagination.Params) (*RatingList, error) {
	if ratedUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	list, err := s.repo.ListReceived(ctx, ratedUserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratings")
	}
	return list, nil
}

func (s *service) ListRatable(ctx context.Context, userID uuid.UUID) ([]RatableReservation, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListRatable(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ratable reservations")
	}
	return rows, nil
}

func (s *service) TopRated(ctx context.Context, limit int) ([]TopRatedUser, error) {
	rows, err := s.repo.TopRated(ctx, TopRatedThreshold, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list top rated users")
	}
	return rows, nil
}

// Recompute rebuilds a user's trust score from their full rating set in its
// own transaction. Create runs the same computation inline; this entry point
// exists for repair jobs and backfills.
func (s *service) Recompute(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	started := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.recomputeTrustScore(ctx, s.repo.WithTx(tx), userID)
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveTrustRecompute(time.Since(started))
	return nil
}

// recomputeTrustScore averages the full rating set so repeated recomputes
// stay idempotent, rounding half-up to two decimals.
func (s *service) recomputeTrustScore(ctx context.Context, repo Repository, userID uuid.UUID) error {
	scores, err := repo.ListScoresForUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating scores")
	}

	score := decimal.Zero
	if len(scores) > 0 {
		sum := decimal.Zero
		for _, v := range scores {
			sum = sum.Add(decimal.NewFromInt(int64(v)))
		}
		score = sum.Div(decimal.NewFromInt(int64(len(scores)))).Round(2)
	}

	if err := repo.UpdateUserTrustScore(ctx, userID, score); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trust score")
	}
	return nil
}

func (s *service) findReservation(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := tx.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return &reservation, nil
}

// counterpart resolves who is being rated: the borrower rates the owner,
// the owner rates the borrower, anyone else is rejected.
func counterpart(reservation *models.Reservation, tool *models.Tool, raterID uuid.UUID) (uuid.UUID, error) {
	switch raterID {
	case reservation.BorrowerID:
		return tool.OwnerID, nil
	case tool.OwnerID:
		return reservation.BorrowerID, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "only loan participants can rate")
}
