package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/emirkaya/toolshare-backend/api/responses"
	"github.com/emirkaya/toolshare-backend/pkg/config"
	"github.com/emirkaya/toolshare-backend/pkg/db"
	pkgerrors "github.com/emirkaya/toolshare-backend/pkg/errors"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
	"github.com/emirkaya/toolshare-backend/pkg/redis"
)

const envHeader = "X-ToolShare-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		var err error
		checks := map[string]string{}

		if database != nil {
			if pingErr := database.Ping(r.Context()); pingErr != nil {
				err = multierr.Append(err, pingErr)
				checks["database"] = "unreachable"
			} else {
				checks["database"] = "ok"
			}
		}
		if cache != nil {
			if pingErr := cache.Ping(r.Context()); pingErr != nil {
				err = multierr.Append(err, pingErr)
				checks["redis"] = "unreachable"
			} else {
				checks["redis"] = "ok"
			}
		}

		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check").
				WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
