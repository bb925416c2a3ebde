package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emirkaya/toolshare-backend/api/controllers"
	"github.com/emirkaya/toolshare-backend/api/middleware"
	"github.com/emirkaya/toolshare-backend/internal/activity"
	"github.com/emirkaya/toolshare-backend/internal/auth"
	"github.com/emirkaya/toolshare-backend/internal/ratings"
	"github.com/emirkaya/toolshare-backend/internal/reservations"
	"github.com/emirkaya/toolshare-backend/internal/tools"
	"github.com/emirkaya/toolshare-backend/internal/users"
	"github.com/emirkaya/toolshare-backend/pkg/auth/session"
	"github.com/emirkaya/toolshare-backend/pkg/config"
	"github.com/emirkaya/toolshare-backend/pkg/db"
	"github.com/emirkaya/toolshare-backend/pkg/enums"
	"github.com/emirkaya/toolshare-backend/pkg/logger"
	"github.com/emirkaya/toolshare-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB      db.Pinger
	Redis   *redis.Client
	Metrics prometheus.Gatherer

	Sessions session.Checker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersRepo       *users.Repository
	ToolsService    tools.Service
	Reservations    reservations.Service
	Ratings         ratings.Service
	Activity        activity.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).
			Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, p.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(p.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public browse surface.
		r.Get("/tools", controllers.ToolsList(p.ToolsService, logg))
		r.Get("/tools/never-reserved", controllers.ToolsNeverReserved(p.ToolsService, logg))
		r.Get("/tools/{toolID}", controllers.ToolsGet(p.ToolsService, logg))
		r.Get("/tools/{toolID}/availability", controllers.ReservationsCheckAvailability(p.Reservations, logg))
		r.Get("/users/top-rated", controllers.RatingsTopRated(p.Ratings, logg))
		r.Get("/users/{userID}", controllers.UsersGet(p.UsersRepo, logg))
		r.Get("/users/{userID}/ratings", controllers.RatingsListReceived(p.Ratings, logg))

		// Everything below requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

			r.Get("/me", controllers.UsersMe(p.UsersRepo, logg))
			r.Get("/me/activity", controllers.ActivityTimeline(p.Activity, logg))

			r.Post("/tools", controllers.ToolsCreate(p.ToolsService, logg))
			r.Patch("/tools/{toolID}", controllers.ToolsUpdate(p.ToolsService, logg))
			r.Delete("/tools/{toolID}", controllers.ToolsDelete(p.ToolsService, logg))
			r.Get("/tools/{toolID}/reservations", controllers.ReservationsListForTool(p.Reservations, logg))

			r.Post("/reservations", controllers.ReservationsCreate(p.Reservations, logg))
			r.Get("/reservations", controllers.ReservationsListMine(p.Reservations, logg))
			r.Get("/reservations/{reservationID}", controllers.ReservationsGet(p.Reservations, logg))
			r.Patch("/reservations/{reservationID}/status", controllers.ReservationsUpdateStatus(p.Reservations, logg))
			r.Patch("/reservations/{reservationID}/dates", controllers.ReservationsUpdateDates(p.Reservations, logg))

			r.Post("/ratings", controllers.RatingsCreate(p.Ratings, logg))
			r.Get("/ratings/ratable", controllers.RatingsListRatable(p.Ratings, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, p.Sessions, logg),
			middleware.RequireRole(enums.UserRoleAdmin, logg),
		)

		r.Get("/users", controllers.AdminUsersList(p.UsersRepo, logg))
		r.Delete("/users/{userID}", controllers.AdminUsersDelete(p.UsersRepo, logg))
	})

	return r
}
