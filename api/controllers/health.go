package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/iodacademy/lendstock-backend/api/responses"
	"github.com/iodacademy/lendstock-backend/pkg/config"
	pkgerrors "github.com/iodacademy/lendstock-backend/pkg/errors"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LendStock-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LendStock-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				checks["db"] = "down"
				ready = false
			} else {
				checks["db"] = "ok"
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				checks["redis"] = "down"
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}

		if !ready {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
