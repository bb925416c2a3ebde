package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/internal/reservations"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
	"github.com/emirkaya/toolshare-backend/pkg/types"
)

type stubReservationsService struct {
	createInput  reservations.CreateReservationInput
	createResult *reservations.ReservationDTO
	createErr    error

	availability *reservations.AvailabilityResult
}

func (s *stubReservationsService) CheckAvailability(_ context.Context, _ reservations.AvailabilityInput) (*reservations.AvailabilityResult, error) {
	return s.availability, nil
}

func (s *stubReservationsService) Create(_ context.Context, input reservations.CreateReservationInput) (*reservations.ReservationDTO, error) {
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResult, nil
}

func (s *stubReservationsService) Get(_ context.Context, _ uuid.UUID) (*reservations.ReservationDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
}

func (s *stubReservationsService) UpdateStatus(_ context.Context, _ reservations.UpdateStatusInput) (*reservations.ReservationDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
}

func (s *stubReservationsService) UpdateDates(_ context.Context, _ reservations.UpdateDatesInput) (*reservations.ReservationDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
}

func (s *stubReservationsService) ListForBorrower(_ context.Context, _ uuid.UUID, _ pagination.Params) (*reservations.ReservationList, error) {
	return &reservations.ReservationList{}, nil
}

func (s *stubReservationsService) ListForTool(_ context.Context, _, _ uuid.UUID, _ enums.UserRole, _ pagination.Params) (*reservations.ReservationList, error) {
	return &reservations.ReservationList{}, nil
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, "borrower", enums.UserRoleUser))
}

func TestReservationsCreateUsesCallerIdentity(t *testing.T) {
	borrower := uuid.New()
	toolID := uuid.New()
	stub := &stubReservationsService{
		createResult: &reservations.ReservationDTO{
			ID:         uuid.New(),
			ToolID:     toolID,
			BorrowerID: borrower,
			StartDate:  "2025-07-01",
			EndDate:    "2025-07-03",
			Status:     enums.ReservationStatusPending,
		},
	}

	body := `{"tool_id":"` + toolID.String() + `","start_date":"2025-07-01","end_date":"2025-07-03"}`
	req := authedRequest(http.MethodPost, "/api/v1/reservations", body, borrower)
	rec := httptest.NewRecorder()
	ReservationsCreate(stub, nil)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, borrower, stub.createInput.BorrowerID)
	assert.Equal(t, toolID, stub.createInput.ToolID)
}

func TestReservationsCreateRejectsBadDate(t *testing.T) {
	stub := &stubReservationsService{}
	body := `{"tool_id":"` + uuid.NewString() + `","start_date":"01/07/2025","end_date":"2025-07-03"}`
	req := authedRequest(http.MethodPost, "/api/v1/reservations", body, uuid.New())
	rec := httptest.NewRecorder()
	ReservationsCreate(stub, nil)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationsCreateMapsDateConflict(t *testing.T) {
	stub := &stubReservationsService{
		createErr: pkgerrors.New(pkgerrors.CodeDateConflict, "tool is already reserved for the selected dates"),
	}
	body := `{"tool_id":"` + uuid.NewString() + `","start_date":"2025-07-01","end_date":"2025-07-03"}`
	req := authedRequest(http.MethodPost, "/api/v1/reservations", body, uuid.New())
	rec := httptest.NewRecorder()
	ReservationsCreate(stub, nil)(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeDateConflict), envelope.Error.Code)
}

func TestReservationsCreateMapsSelfBooking(t *testing.T) {
	stub := &stubReservationsService{
		createErr: pkgerrors.New(pkgerrors.CodeSelfBooking, "you cannot reserve your own tool"),
	}
	body := `{"tool_id":"` + uuid.NewString() + `","start_date":"2025-07-01","end_date":"2025-07-03"}`
	req := authedRequest(http.MethodPost, "/api/v1/reservations", body, uuid.New())
	rec := httptest.NewRecorder()
	ReservationsCreate(stub, nil)(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReservationsCheckAvailabilityParsesRange(t *testing.T) {
	stub := &stubReservationsService{
		availability: &reservations.AvailabilityResult{Available: true},
	}

	router := chi.NewRouter()
	router.Get("/tools/{toolID}/availability", ReservationsCheckAvailability(stub, nil))

	req := httptest.NewRequest(http.MethodGet, "/tools/"+uuid.NewString()+"/availability?start_date=2025-07-01&end_date=2025-07-03", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data reservations.AvailabilityResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Available)
}

func TestReservationsCheckAvailabilityRequiresDates(t *testing.T) {
	stub := &stubReservationsService{}

	router := chi.NewRouter()
	router.Get("/tools/{toolID}/availability", ReservationsCheckAvailability(stub, nil))

	req := httptest.NewRequest(http.MethodGet, "/tools/"+uuid.NewString()+"/availability", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
