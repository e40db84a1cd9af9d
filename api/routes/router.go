package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iodacademy/lendstock-backend/api/controllers"
	"github.com/iodacademy/lendstock-backend/api/middleware"
	"github.com/iodacademy/lendstock-backend/internal/auth"
	"github.com/iodacademy/lendstock-backend/internal/categories"
	"github.com/iodacademy/lendstock-backend/internal/inventory"
	"github.com/iodacademy/lendstock-backend/internal/notifications"
	"github.com/iodacademy/lendstock-backend/internal/reports"
	"github.com/iodacademy/lendstock-backend/internal/reservations"
	"github.com/iodacademy/lendstock-backend/internal/settings"
	"github.com/iodacademy/lendstock-backend/internal/sharedaccounts"
	"github.com/iodacademy/lendstock-backend/internal/transactions"
	"github.com/iodacademy/lendstock-backend/internal/users"
	"github.com/iodacademy/lendstock-backend/pkg/auth/session"
	"github.com/iodacademy/lendstock-backend/pkg/config"
	"github.com/iodacademy/lendstock-backend/pkg/db"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
	pkgredis "github.com/iodacademy/lendstock-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router exposes over HTTP.
type Services struct {
	Auth           auth.Service
	Users          users.Service
	Inventory      inventory.Service
	Transactions   transactions.Service
	Reservations   reservations.Service
	Categories     categories.Service
	SharedAccounts sharedaccounts.Service
	Settings       settings.Service
	Reports        reports.Service
	Notifications  notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// A typed nil *redis.Client must disable the redis-backed layers, so the
	// interfaces are only assigned when the client is present.
	var idemStore pkgredis.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	var cachePinger pkgredis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		limiterStore = redisClient
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/identity-sync", controllers.AuthSyncIdentity(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/v1/auth", func(r chi.Router) {
			r.Post("/set-password", controllers.AuthSetPassword(svcs.Auth, logg))
		})

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/me", controllers.GetMe(svcs.Users, logg))
			r.Patch("/me", controllers.UpdateMyProfile(svcs.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/", controllers.ListUsers(svcs.Users, logg))
				r.Post("/invite", controllers.InviteUser(svcs.Users, logg))
				r.Patch("/{userID}/role", controllers.UpdateUserRole(svcs.Users, logg))
				r.Delete("/{userID}", controllers.DeleteUser(svcs.Users, logg))
			})
		})

		r.Route("/v1/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListItems(svcs.Inventory, logg))
			r.Get("/{itemID}", controllers.GetItem(svcs.Inventory, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleStaff))
				r.Post("/", controllers.CreateItem(svcs.Inventory, logg))
				r.Patch("/{itemID}", controllers.UpdateItem(svcs.Inventory, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/{itemID}/adjust-stock", controllers.AdjustItemStock(svcs.Inventory, logg))
				r.Delete("/{itemID}", controllers.DeleteItem(svcs.Inventory, logg))
			})
		})

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(svcs.Transactions, logg))
			r.Get("/{transactionID}", controllers.GetTransaction(svcs.Transactions, logg))
			r.Post("/", controllers.CreateTransaction(svcs.Transactions, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/{transactionID}/decision", controllers.DecideTransaction(svcs.Transactions, logg))
		})

		r.Route("/v1/reservations", func(r chi.Router) {
			r.Get("/", controllers.ListReservations(svcs.Reservations, logg))
			r.Get("/{reservationID}", controllers.GetReservation(svcs.Reservations, logg))
			r.Post("/", controllers.CreateReservation(svcs.Reservations, logg))
			r.Patch("/{reservationID}", controllers.UpdateReservation(svcs.Reservations, logg))
			r.Delete("/{reservationID}", controllers.DeleteReservation(svcs.Reservations, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/{reservationID}/decision", controllers.DecideReservation(svcs.Reservations, logg))
		})

		r.Route("/v1/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svcs.Categories, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.CreateCategory(svcs.Categories, logg))
			r.With(middleware.RequireAdmin(logg)).Delete("/{categoryID}", controllers.DeleteCategory(svcs.Categories, logg))
		})

		r.Route("/v1/shared-accounts", func(r chi.Router) {
			r.Get("/", controllers.ListSharedAccounts(svcs.SharedAccounts, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CreateSharedAccount(svcs.SharedAccounts, logg))
				r.Patch("/{accountID}", controllers.UpdateSharedAccount(svcs.SharedAccounts, logg))
				r.Delete("/{accountID}", controllers.DeleteSharedAccount(svcs.SharedAccounts, logg))
			})
		})

		r.Route("/v1/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(svcs.Settings, logg))
			r.With(middleware.RequireAdmin(logg)).Patch("/", controllers.UpdateSettings(svcs.Settings, logg))
		})

		r.Route("/v1/reports", func(r chi.Router) {
			r.Get("/dashboard", controllers.Dashboard(svcs.Reports, logg))
			r.Get("/categories", controllers.CategoryReport(svcs.Reports, logg))
			r.Get("/stock-trend", controllers.StockTrendReport(svcs.Reports, logg))
			r.Get("/overdue", controllers.OverdueReport(svcs.Reports, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
