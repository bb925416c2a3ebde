package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/api/validators"
	"github.com/emirkaya/toolshare-backend/internal/tools"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
)

type createToolRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=64"`
}

type updateToolRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=64"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=available reserved maintenance"`
}

// ToolsCreate lists a new tool owned by the caller.
func ToolsCreate(svc tools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createToolRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tool, err := svc.Create(r.Context(), tools.CreateToolInput{
			OwnerID:     middleware.UserIDFromContext(r.Context()),
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tool)
	}
}

func ToolsGet(svc tools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolID, err := validators.ParseUUIDParam(r, "toolID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tool, err := svc.Get(r.Context(), toolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tool)
	}
}

// ToolsUpdate applies a partial update; only the owner or an admin may edit.
func ToolsUpdate(svc tools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolID, err := validators.ParseUUIDParam(r, "toolID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateToolRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tools.UpdateToolInput{
			ToolID:      toolID,
			ActorID:     middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
		}
		if body.Status != nil {
			status, parseErr := enums.ParseToolStatus(*body.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid tool status"))
				return
			}
			input.Status = &status
		}

		tool, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tool)
	}
}

func ToolsDelete(svc tools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolID, err := validators.ParseUUIDParam(r, "toolID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Delete(r.Context(), toolID, middleware.UserIDFromContext(r.Context()), middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ToolsList supports the public browse surface with search and filters.
func ToolsList(svc tools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := tools.ListFilters{
			Query:    strings.TrimSpace(r.URL.Query().Get("q")),
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("owner_id")); raw != "" {
			ownerID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "owner_id must be a UUID"))
				return
			}
			filters.OwnerID = &ownerID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseToolStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid tool status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ToolsNeverReserved surfaces listings that have never had a reservation.
func ToolsNeverReserved(svc tools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListNeverReserved(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
