package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/api/validators"
	"github.com/emirkaya/toolshare-backend/internal/users"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
)

// UsersMe returns the authenticated user's profile, trust score included.
func UsersMe(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := repo.FindByID(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		responses.WriteSuccess(w, users.FromModel(user))
	}
}

// UsersGet exposes a public profile by id.
func UsersGet(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseUUIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := repo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		responses.WriteSuccess(w, users.FromModel(user))
	}
}

// AdminUsersList returns the paginated user roster. Admin only; routing
// enforces the role.
func AdminUsersList(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users"))
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AdminUsersDelete removes an account. Admin only; routing enforces the role.
func AdminUsersDelete(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseUUIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID == middleware.UserIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account"))
			return
		}

		if err := repo.Delete(r.Context(), userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user"))
			return
		}

		if logg != nil {
			ctx := logg.WithUserID(r.Context(), userID.String())
			logg.Info(ctx, "admin.user.deleted")
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
