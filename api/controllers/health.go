package controllers

import (
	"context"
	"net/http"

	"github.com/migios-apps/migios-console-api/api/responses"
	"github.com/migios-apps/migios-console-api/pkg/config"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Migios-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both Redis and the core API answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisP, coreP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Migios-Env", cfg.App.Env)

		checks := map[string]string{}
		failed := false

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				failed = true
			} else {
				checks["redis"] = "ok"
			}
		}
		if coreP != nil {
			if err := coreP.Ping(r.Context()); err != nil {
				checks["core_api"] = err.Error()
				failed = true
			} else {
				checks["core_api"] = "ok"
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "readiness check failed").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
