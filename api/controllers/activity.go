package controllers

import (
	"net/http"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/api/validators"
	"github.com/emirkaya/toolshare-backend/internal/activity"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
	"github.com/emirkaya/toolshare-backend/pkg/pagination"
)

// ActivityTimeline returns the caller's merged borrow and lend history.
func ActivityTimeline(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		timeline, err := svc.Timeline(r.Context(), middleware.UserIDFromContext(r.Context()), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, timeline)
	}
}
