package controllers

import (
	"net/http"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/api/validators"
	"github.com/emirkaya/toolshare-backend/internal/ratings"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
)

type createRatingRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid4"`
	Score         int    `json:"score" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"max=1000"`
}

const topRatedDefaultLimit = 10

// RatingsCreate records a rating for a completed loan and refreshes trust scores.
func RatingsCreate(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createRatingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := parseBodyUUID(body.ReservationID, "reservation_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rating, err := svc.Create(r.Context(), ratings.CreateRatingInput{
			ReservationID: reservationID,
			RaterID:       middleware.UserIDFromContext(r.Context()),
			Score:         body.Score,
			Comment:       body.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rating)
	}
}

// RatingsListRatable returns completed loans the caller has not rated yet.
func RatingsListRatable(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListRatable(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"ratable": list})
	}
}

// RatingsListReceived returns the ratings a user has received.
func RatingsListReceived(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseUUIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListReceived(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// RatingsTopRated is the public leaderboard of highly trusted lenders.
func RatingsTopRated(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", topRatedDefaultLimit, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.TopRated(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"users": list})
	}
}
