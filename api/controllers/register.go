package controllers

import (
	"net/http"

	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/api/validators"
	"github.com/emirkaya/toolshare-backend/internal/auth"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
)

// AuthRegister creates the account and immediately logs the new user in.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reg.Register(r.Context(), body); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Username: body.Username, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
