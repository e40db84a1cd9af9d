package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iodacademy/lendstock-backend/api/routes"
	"github.com/iodacademy/lendstock-backend/internal/auth"
	"github.com/iodacademy/lendstock-backend/internal/categories"
	"github.com/iodacademy/lendstock-backend/internal/inventory"
	"github.com/iodacademy/lendstock-backend/internal/ledger"
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
	"github.com/iodacademy/lendstock-backend/pkg/logger"
	"github.com/iodacademy/lendstock-backend/pkg/metrics"
	"github.com/iodacademy/lendstock-backend/pkg/migrate"
	"github.com/iodacademy/lendstock-backend/pkg/outbox"
	"github.com/iodacademy/lendstock-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager) (routes.Services, error) {
	gdb := dbClient.DB()
	publisher := outbox.NewService(outbox.NewRepository(gdb), logg)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gdb), metrics.NewLedgerMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		return routes.Services{}, err
	}

	usersSvc, err := users.NewService(users.NewRepository(gdb), dbClient, publisher, cfg.Lending.AdminEmails)
	if err != nil {
		return routes.Services{}, err
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gdb),
		Directory:      usersSvc,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	inventorySvc, err := inventory.NewService(inventory.NewRepository(gdb), dbClient, ledgerSvc, publisher)
	if err != nil {
		return routes.Services{}, err
	}

	transactionsSvc, err := transactions.NewService(transactions.NewRepository(gdb), dbClient, ledgerSvc, publisher, transactions.DefaultInitialStatus)
	if err != nil {
		return routes.Services{}, err
	}

	reservationsSvc, err := reservations.NewService(reservations.NewRepository(gdb), dbClient, publisher)
	if err != nil {
		return routes.Services{}, err
	}

	categoriesSvc, err := categories.NewService(gdb)
	if err != nil {
		return routes.Services{}, err
	}

	sharedAccountsSvc, err := sharedaccounts.NewService(gdb)
	if err != nil {
		return routes.Services{}, err
	}

	settingsSvc, err := settings.NewService(gdb)
	if err != nil {
		return routes.Services{}, err
	}

	reportsSvc, err := reports.NewService(gdb, settingsSvc)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:           authSvc,
		Users:          usersSvc,
		Inventory:      inventorySvc,
		Transactions:   transactionsSvc,
		Reservations:   reservationsSvc,
		Categories:     categoriesSvc,
		SharedAccounts: sharedAccountsSvc,
		Settings:       settingsSvc,
		Reports:        reportsSvc,
		Notifications:  notificationsSvc,
	}, nil
}
