package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/parkinglot-backend/api/controllers"
	"github.com/angelmondragon/parkinglot-backend/api/middleware"
	"github.com/angelmondragon/parkinglot-backend/internal/auth"
	"github.com/angelmondragon/parkinglot-backend/internal/lots"
	"github.com/angelmondragon/parkinglot-backend/internal/reports"
	"github.com/angelmondragon/parkinglot-backend/internal/reservations"
	"github.com/angelmondragon/parkinglot-backend/internal/spots"
	"github.com/angelmondragon/parkinglot-backend/internal/users"
	"github.com/angelmondragon/parkinglot-backend/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/parkinglot-backend/pkg/redis"
)

// RedisStore is the slice of the redis client used by the HTTP layer.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Dependencies carries everything the router hands to controllers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Pingers  map[string]controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer

	Auth         auth.Service
	Users        users.Service
	Lots         lots.Service
	Spots        spots.Service
	Reservations reservations.Service
	Reports      reports.Service
	Capacity     controllers.CapacityReconciler
	DLQ          controllers.DLQLister
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var rateStore interface {
		IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	}
	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		rateStore = deps.Redis
		idemStore = deps.Redis
	}
	idempotent := middleware.Idempotency(idemStore, cfg.Eventing.IdempotencyKeyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, rateStore, logg)).Post("/signup", controllers.AuthSignup(deps.Users, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	r.Route("/api/v1/admin/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AdminAuthLogin(deps.Auth, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.NoCache())

		r.Get("/api/ping", controllers.PrivatePing())
		r.Get("/api/v1/lots", controllers.ListLots(deps.Reports, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.PrincipalRoleUser, logg))

			r.Get("/api/v1/me", controllers.MeProfile(deps.Users, logg))
			r.Patch("/api/v1/me", controllers.MeUpdateProfile(deps.Users, logg))
			r.Post("/api/v1/me/password", controllers.MeUpdatePassword(deps.Users, logg))
			r.Get("/api/v1/me/summary", controllers.MeUsageSummary(deps.Reports, logg))

			r.With(idempotent).Post("/api/v1/bookings", controllers.BookSpot(deps.Reservations, logg))
			r.Get("/api/v1/bookings/active", controllers.ActiveBookings(deps.Reports, logg))
			r.Get("/api/v1/bookings/history", controllers.BookingHistory(deps.Reports, logg))
		})

		// Parkers release their own reservations; admins may release any.
		r.With(idempotent).Post("/api/v1/bookings/{reservationId}/release", controllers.ReleaseBooking(deps.Reservations, logg))

		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.PrincipalRoleAdmin, logg))

			r.With(idempotent).Post("/lots", controllers.AdminCreateLot(deps.Lots, logg))
			r.Get("/lots/{lotId}", controllers.AdminGetLot(deps.Lots, logg))
			r.Patch("/lots/{lotId}", controllers.AdminUpdateLot(deps.Lots, logg))
			r.Delete("/lots/{lotId}", controllers.AdminDeleteLot(deps.Lots, logg))
			r.Get("/lots/{lotId}/spots", controllers.AdminListSpots(deps.Lots, logg))
			r.Delete("/spots/{spotId}", controllers.AdminRemoveSpot(deps.Spots, logg))

			r.Get("/users", controllers.AdminListUsers(deps.Reports, logg))
			r.Get("/occupied", controllers.AdminOccupiedSpots(deps.Reports, logg))
			r.Get("/summary/occupancy", controllers.AdminOccupancySummary(deps.Reports, logg))
			r.Post("/capacity/reconcile", controllers.AdminReconcileCapacity(deps.Capacity, logg))
			r.Get("/outbox/dlq", controllers.AdminListDLQ(deps.DLQ, logg))
		})
	})

	return r
}
