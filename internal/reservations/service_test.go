package reservations

import (
	"context"
	"testing"

	"github.com/emirkaya/toolshare-backend/internal/tools"
	"github.com/emirkaya/toolshare-backend/pkg/db"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := setupReservationsTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		ToolsRepo: tools.NewRepository(conn),
		Tx:        db.FromGorm(conn),
	})
	require.NoError(t, err)
	return svc, conn
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	coded := pkgerrors.As(err)
	require.NotNil(t, coded, "expected coded error, got %v", err)
	assert.Equal(t, code, coded.Code())
}

func TestCreateReservationHappyPath(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")

	dto, err := svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: borrower.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusPending, dto.Status)
	assert.Equal(t, "2025-06-01", dto.StartDate)
	assert.Equal(t, "2025-06-05", dto.EndDate)
	assert.NotEqual(t, uuid.Nil, dto.ID)
}

func TestCreateReservationSelfBooking(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	tool := newTool(t, conn, owner, "Drill")

	_, err := svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: owner.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	requireCode(t, err, pkgerrors.CodeSelfBooking)
}

func TestCreateReservationDateConflict(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	first := newUser(t, conn, "first")
	second := newUser(t, conn, "second")
	tool := newTool(t, conn, owner, "Drill")

	_, err := svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: first.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	require.NoError(t, err)

	// Overlapping range is rejected.
	_, err = svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: second.ID,
		StartDate:  day("2025-06-03"),
		EndDate:    day("2025-06-08"),
	})
	requireCode(t, err, pkgerrors.CodeDateConflict)

	// Sharing the boundary day is still a conflict.
	_, err = svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: second.ID,
		StartDate:  day("2025-06-05"),
		EndDate:    day("2025-06-07"),
	})
	requireCode(t, err, pkgerrors.CodeDateConflict)

	// The day after the range ends is free.
	_, err = svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: second.ID,
		StartDate:  day("2025-06-06"),
		EndDate:    day("2025-06-08"),
	})
	require.NoError(t, err)
}

func TestCreateReservationAfterCancellationFreesRange(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	first := newUser(t, conn, "first")
	second := newUser(t, conn, "second")
	tool := newTool(t, conn, owner, "Sander")

	created, err := svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: first.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		ReservationID: created.ID,
		ActorID:       first.ID,
		ActorRole:     enums.UserRoleUser,
		Next:          enums.ReservationStatusCancelled,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: second.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	require.NoError(t, err)
}

func TestCreateReservationValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")

	// Reversed dates.
	_, err := svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: borrower.ID,
		StartDate:  day("2025-06-10"),
		EndDate:    day("2025-06-05"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	// Unknown tool.
	_, err = svc.Create(ctx, CreateReservationInput{
		ToolID:     uuid.New(),
		BorrowerID: borrower.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCheckAvailability(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")

	newReservation(t, conn, tool, borrower, "2025-06-05", "2025-06-10", enums.ReservationStatusApproved)

	result, err := svc.CheckAvailability(ctx, AvailabilityInput{
		ToolID:    tool.ID,
		StartDate: day("2025-06-08"),
		EndDate:   day("2025-06-12"),
	})
	require.NoError(t, err)
	assert.False(t, result.Available)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "2025-06-05", result.Conflicts[0].StartDate)

	result, err = svc.CheckAvailability(ctx, AvailabilityInput{
		ToolID:    tool.ID,
		StartDate: day("2025-06-11"),
		EndDate:   day("2025-06-12"),
	})
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")

	created, err := svc.Create(ctx, CreateReservationInput{
		ToolID:     tool.ID,
		BorrowerID: borrower.ID,
		StartDate:  day("2025-06-01"),
		EndDate:    day("2025-06-05"),
	})
	require.NoError(t, err)

	// Borrower cannot approve.
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		ReservationID: created.ID,
		ActorID:       borrower.ID,
		ActorRole:     enums.UserRoleUser,
		Next:          enums.ReservationStatusApproved,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)

	// Owner approves, then completes.
	approved, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		ReservationID: created.ID,
		ActorID:       owner.ID,
		ActorRole:     enums.UserRoleUser,
		Next:          enums.ReservationStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusApproved, approved.Status)

	// Skipping straight back to pending is rejected.
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		ReservationID: created.ID,
		ActorID:       owner.ID,
		ActorRole:     enums.UserRoleUser,
		Next:          enums.ReservationStatusPending,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)

	completed, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		ReservationID: created.ID,
		ActorID:       owner.ID,
		ActorRole:     enums.UserRoleUser,
		Next:          enums.ReservationStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusCompleted, completed.Status)

	// Terminal states cannot be cancelled.
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		ReservationID: created.ID,
		ActorID:       borrower.ID,
		ActorRole:     enums.UserRoleUser,
		Next:          enums.ReservationStatusCancelled,
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestListForToolOwnership(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	stranger := newUser(t, conn, "stranger")
	tool := newTool(t, conn, owner, "Drill")
	newReservation(t, conn, tool, borrower, "2025-06-01", "2025-06-02", enums.ReservationStatusPending)

	_, err := svc.ListForTool(ctx, tool.ID, stranger.ID, enums.UserRoleUser, pagination.Params{})
	requireCode(t, err, pkgerrors.CodeForbidden)

	list, err := svc.ListForTool(ctx, tool.ID, owner.ID, enums.UserRoleUser, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, list.Reservations, 1)

	// Admin can inspect any tool.
	list, err = svc.ListForTool(ctx, tool.ID, stranger.ID, enums.UserRoleAdmin, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, list.Reservations, 1)
}

func TestUpdateDatesExcludesOwnRange(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")
	created := newReservation(t, conn, tool, borrower, "2025-06-01", "2025-06-05", enums.ReservationStatusApproved)

	// Shifting within the original range must not conflict with itself.
	dto, err := svc.UpdateDates(ctx, UpdateDatesInput{
		ReservationID: created.ID,
		ActorID:       borrower.ID,
		ActorRole:     enums.UserRoleUser,
		StartDate:     day("2025-06-02"),
		EndDate:       day("2025-06-06"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", dto.StartDate)
	assert.Equal(t, "2025-06-06", dto.EndDate)
}

func TestUpdateDatesConflictsWithOtherReservation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	other := newUser(t, conn, "other")
	tool := newTool(t, conn, owner, "Drill")
	created := newReservation(t, conn, tool, borrower, "2025-06-01", "2025-06-03", enums.ReservationStatusApproved)
	newReservation(t, conn, tool, other, "2025-06-10", "2025-06-12", enums.ReservationStatusPending)

	_, err := svc.UpdateDates(ctx, UpdateDatesInput{
		ReservationID: created.ID,
		ActorID:       borrower.ID,
		ActorRole:     enums.UserRoleUser,
		StartDate:     day("2025-06-11"),
		EndDate:       day("2025-06-14"),
	})
	requireCode(t, err, pkgerrors.CodeDateConflict)
}

func TestUpdateDatesAuthorization(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	stranger := newUser(t, conn, "stranger")
	tool := newTool(t, conn, owner, "Drill")
	created := newReservation(t, conn, tool, borrower, "2025-06-01", "2025-06-03", enums.ReservationStatusPending)

	_, err := svc.UpdateDates(ctx, UpdateDatesInput{
		ReservationID: created.ID,
		ActorID:       stranger.ID,
		ActorRole:     enums.UserRoleUser,
		StartDate:     day("2025-06-20"),
		EndDate:       day("2025-06-22"),
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateDatesTerminalReservation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")
	created := newReservation(t, conn, tool, borrower, "2025-06-01", "2025-06-03", enums.ReservationStatusCancelled)

	_, err := svc.UpdateDates(ctx, UpdateDatesInput{
		ReservationID: created.ID,
		ActorID:       borrower.ID,
		ActorRole:     enums.UserRoleUser,
		StartDate:     day("2025-06-20"),
		EndDate:       day("2025-06-22"),
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCheckAvailabilityWithExclusion(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := newUser(t, conn, "owner")
	borrower := newUser(t, conn, "borrower")
	tool := newTool(t, conn, owner, "Drill")
	created := newReservation(t, conn, tool, borrower, "2025-06-01", "2025-06-05", enums.ReservationStatusApproved)

	result, err := svc.CheckAvailability(ctx, AvailabilityInput{
		ToolID:    tool.ID,
		StartDate: day("2025-06-03"),
		EndDate:   day("2025-06-06"),
	})
	require.NoError(t, err)
	assert.False(t, result.Available)

	result, err = svc.CheckAvailability(ctx, AvailabilityInput{
		ToolID:               tool.ID,
		StartDate:            day("2025-06-03"),
		EndDate:              day("2025-06-06"),
		ExcludeReservationID: created.ID,
	})
	require.NoError(t, err)
	assert.True(t, result.Available)
}
