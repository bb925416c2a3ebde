package controllers

import (
	"net/http"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/api/validators"
	"github.com/emirkaya/toolshare-backend/internal/reservations"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
)

type createReservationRequest struct {
	ToolID    string `json:"tool_id" validate:"required,uuid4"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

type updateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved completed cancelled"`
}

type updateReservationDatesRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// ReservationsCheckAvailability answers whether a tool is free for a date range.
func ReservationsCheckAvailability(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolID, err := validators.ParseUUIDParam(r, "toolID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.ParseQueryDate(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reservations.AvailabilityInput{
			ToolID:    toolID,
			StartDate: start,
			EndDate:   end,
		}
		if raw := r.URL.Query().Get("exclude_reservation_id"); raw != "" {
			excludeID, err := parseBodyUUID(raw, "exclude_reservation_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ExcludeReservationID = excludeID
		}

		result, err := svc.CheckAvailability(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReservationsCreate books a tool for the caller.
func ReservationsCreate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateInput(r, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithReservationID(r.Context(), reservation.ID.String())
			logg.Info(ctx, "reservation.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

func buildCreateInput(r *http.Request, body createReservationRequest) (reservations.CreateReservationInput, error) {
	toolID, err := parseBodyUUID(body.ToolID, "tool_id")
	if err != nil {
		return reservations.CreateReservationInput{}, err
	}
	start, err := reservations.ParseDate(body.StartDate)
	if err != nil {
		return reservations.CreateReservationInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "start_date must be a YYYY-MM-DD date")
	}
	end, err := reservations.ParseDate(body.EndDate)
	if err != nil {
		return reservations.CreateReservationInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "end_date must be a YYYY-MM-DD date")
	}
	return reservations.CreateReservationInput{
		ToolID:     toolID,
		BorrowerID: middleware.UserIDFromContext(r.Context()),
		StartDate:  start,
		EndDate:    end,
	}, nil
}

func ReservationsGet(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := validators.ParseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Get(r.Context(), reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}

// ReservationsUpdateStatus drives the pending/approved/completed/cancelled lifecycle.
func ReservationsUpdateStatus(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := validators.ParseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateReservationStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := enums.ParseReservationStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation status"))
			return
		}

		reservation, err := svc.UpdateStatus(r.Context(), reservations.UpdateStatusInput{
			ReservationID: reservationID,
			ActorID:       middleware.UserIDFromContext(r.Context()),
			ActorRole:     middleware.RoleFromContext(r.Context()),
			Next:          next,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}

// ReservationsUpdateDates reschedules a reservation, guarding the new range
// against other bookings the same way creation does.
func ReservationsUpdateDates(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservationID, err := validators.ParseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateReservationDatesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := reservations.ParseDate(body.StartDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "start_date must be a YYYY-MM-DD date"))
			return
		}
		end, err := reservations.ParseDate(body.EndDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "end_date must be a YYYY-MM-DD date"))
			return
		}

		reservation, err := svc.UpdateDates(r.Context(), reservations.UpdateDatesInput{
			ReservationID: reservationID,
			ActorID:       middleware.UserIDFromContext(r.Context()),
			ActorRole:     middleware.RoleFromContext(r.Context()),
			StartDate:     start,
			EndDate:       end,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithReservationID(r.Context(), reservation.ID.String())
			logg.Info(ctx, "reservation.rescheduled")
		}
		responses.WriteSuccess(w, reservation)
	}
}

// ReservationsListMine returns the caller's reservations as a borrower.
func ReservationsListMine(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForBorrower(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ReservationsListForTool returns a tool's bookings to its owner or an admin.
func ReservationsListForTool(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolID, err := validators.ParseUUIDParam(r, "toolID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForTool(r.Context(), toolID, middleware.UserIDFromContext(r.Context()), middleware.RoleFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
