package reservations

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
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the booking operations exposed to controllers.
type Service interface {
	CheckAvailability(ctx context.Context, input AvailabilityInput) (*AvailabilityResult, error)
	Create(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*ReservationDTO, error)
	UpdateDates(ctx context.Context, input UpdateDatesInput) (*ReservationDTO, error)
	ListForBorrower(ctx context.Context, borrowerID uuid.UUID, params pagination.Params) (*ReservationList, error)
	ListForTool(ctx context.Context, toolID, actorID uuid.UUID, actorRole enums.UserRole, params pagination.Params) (*ReservationList, error)
}

type service struct {
	repo    Repository
	tools   tools.Repository
	tx      txRunner
	metrics *metrics.BookingMetrics
}

// ServiceParams bundles the dependencies required to build a reservations service.
type ServiceParams struct {
	Repo      Repository
	ToolsRepo tools.Repository
	Tx        txRunner
	Metrics   *metrics.BookingMetrics
}

// NewService constructs a reservations service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reservations repository is required")
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

func (s *service) CheckAvailability(ctx context.Context, input AvailabilityInput) (*AvailabilityResult, error) {
	if input.ToolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool id required")
	}
	start, end, err := normalizeRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.tools.FindByID(ctx, input.ToolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
	}

	conflicts, err := s.repo.FindOverlapping(ctx, input.ToolID, start, end, input.ExcludeReservationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find overlapping reservations")
	}

	return &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: fromModels(conflicts),
	}, nil
}

// Create runs the booking guard: self-booking and overlap checks happen
// inside one transaction, serialized per tool by an advisory lock. The
// exclusion constraint in Postgres backstops anything that slips through.
func (s *service) Create(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error) {
	if input.ToolID == uuid.Nil {
		s.metrics.IncDecision(metrics.OutcomeInvalidInput)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool id required")
	}
	if input.BorrowerID == uuid.Nil {
		s.metrics.IncDecision(metrics.OutcomeInvalidInput)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	start, end, err := normalizeRange(input.StartDate, input.EndDate)
	if err != nil {
		s.metrics.IncDecision(metrics.OutcomeInvalidInput)
		return nil, err
	}

	var created *models.Reservation
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		toolsRepo := s.tools.WithTx(tx)

		tool, err := toolsRepo.FindByID(ctx, input.ToolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
		}
		if tool.OwnerID == input.BorrowerID {
			return pkgerrors.New(pkgerrors.CodeSelfBooking, "you cannot reserve your own tool")
		}

		if err := repo.LockToolBookings(ctx, input.ToolID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock tool bookings")
		}

		conflicts, err := repo.FindOverlapping(ctx, input.ToolID, start, end, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find overlapping reservations")
		}
		if len(conflicts) > 0 {
			return pkgerrors.New(pkgerrors.CodeDateConflict, "tool is already reserved for the selected dates")
		}

		created, err = repo.Create(ctx, &models.Reservation{
			ToolID:     input.ToolID,
			BorrowerID: input.BorrowerID,
			StartDate:  start,
			EndDate:    end,
			Status:     enums.ReservationStatusPending,
		})
		if err != nil {
			if db.IsExclusionViolation(err, "reservations_no_overlap") {
				return pkgerrors.New(pkgerrors.CodeDateConflict, "tool is already reserved for the selected dates")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncDecision(outcomeForError(err))
		return nil, err
	}

	s.metrics.IncDecision(metrics.OutcomeGranted)
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return FromModel(reservation), nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*ReservationDTO, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status")
	}

	var updated *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		toolsRepo := s.tools.WithTx(tx)

		reservation, err := repo.FindByID(ctx, input.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		tool, err := toolsRepo.FindByID(ctx, reservation.ToolID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
		}

		if err := authorizeTransition(reservation, tool, input); err != nil {
			return err
		}
		if reservation.Status == input.Next {
			updated = reservation
			return nil
		}
		if !reservation.Status.CanTransitionTo(input.Next) {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("cannot move reservation from %s to %s", reservation.Status, input.Next))
		}

		if err := repo.UpdateStatus(ctx, reservation.ID, input.Next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		reservation.Status = input.Next
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// UpdateDates moves an existing reservation to a new range. The same guard
// as creation runs, with the reservation excluded from its own conflict set.
func (s *service) UpdateDates(ctx context.Context, input UpdateDatesInput) (*ReservationDTO, error) {
	if input.ReservationID == uuid.Nil {
		s.metrics.IncDecision(metrics.OutcomeInvalidInput)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if input.ActorID == uuid.Nil {
		s.metrics.IncDecision(metrics.OutcomeInvalidInput)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	start, end, err := normalizeRange(input.StartDate, input.EndDate)
	if err != nil {
		s.metrics.IncDecision(metrics.OutcomeInvalidInput)
		return nil, err
	}

	var updated *models.Reservation
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reservation, err := repo.FindByID(ctx, input.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}
		if reservation.BorrowerID != input.ActorID && input.ActorRole != enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "reservation does not belong to user")
		}
		if reservation.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("cannot reschedule a %s reservation", reservation.Status))
		}

		if err := repo.LockToolBookings(ctx, reservation.ToolID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock tool bookings")
		}

		conflicts, err := repo.FindOverlapping(ctx, reservation.ToolID, start, end, reservation.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find overlapping reservations")
		}
		if len(conflicts) > 0 {
			return pkgerrors.New(pkgerrors.CodeDateConflict, "tool is already reserved for the selected dates")
		}

		if err := repo.UpdateDates(ctx, reservation.ID, start, end); err != nil {
			if db.IsExclusionViolation(err, "reservations_no_overlap") {
				return pkgerrors.New(pkgerrors.CodeDateConflict, "tool is already reserved for the selected dates")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation dates")
		}
		reservation.StartDate = start
		reservation.EndDate = end
		updated = reservation
		return nil
	})
	if err != nil {
		s.metrics.IncDecision(outcomeForError(err))
		return nil, err
	}

	s.metrics.IncDecision(metrics.OutcomeGranted)
	return FromModel(updated), nil
}

func (s *service) ListForBorrower(ctx context.Context, borrowerID uuid.UUID, params pagination.Params) (*ReservationList, error) {
	if borrowerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByBorrower(ctx, borrowerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return list, nil
}

func (s *service) ListForTool(ctx context.Context, toolID, actorID uuid.UUID, actorRole enums.UserRole, params pagination.Params) (*ReservationList, error) {
	if toolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tool id required")
	}
	tool, err := s.tools.FindByID(ctx, toolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
	}
	if tool.OwnerID != actorID && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tool does not belong to user")
	}

	list, err := s.repo.ListByTool(ctx, toolID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return list, nil
}

// authorizeTransition enforces who may move a reservation where: the tool
// owner approves and completes, the borrower cancels, admins do anything.
func authorizeTransition(reservation *models.Reservation, tool *models.Tool, input UpdateStatusInput) error {
	if input.ActorRole == enums.UserRoleAdmin {
		return nil
	}
	switch input.Next {
	case enums.ReservationStatusApproved, enums.ReservationStatusCompleted:
		if tool.OwnerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the tool owner can perform this transition")
		}
	case enums.ReservationStatusCancelled:
		if reservation.BorrowerID != input.ActorID && tool.OwnerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the borrower or tool owner can cancel")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "transition not permitted")
	}
	return nil
}

func normalizeRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	s, e := NormalizeDate(start), NormalizeDate(end)
	if e.Before(s) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	return s, e, nil
}

func outcomeForError(err error) string {
	coded := pkgerrors.As(err)
	if coded == nil {
		return metrics.OutcomeInternalError
	}
	switch coded.Code() {
	case pkgerrors.CodeSelfBooking:
		return metrics.OutcomeSelfBooking
	case pkgerrors.CodeDateConflict:
		return metrics.OutcomeDateConflict
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeToolNotFound
	case pkgerrors.CodeValidation, pkgerrors.CodeForbidden, pkgerrors.CodeConflict, pkgerrors.CodeUnauthorized:
		return metrics.OutcomeInvalidInput
	}
	return metrics.OutcomeInternalError
}
