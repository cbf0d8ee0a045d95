package controllers

import (
	"context"
	"net/http"

	"github.com/jinxed112/fritos-dispatch/api/responses"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
)

// Pinger is satisfied by the db and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers.
func HealthReady(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		checks := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "missing"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				continue
			}
			checks[name] = "up"
		}

		for name, state := range checks {
			if state != "up" {
				err := pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").
					WithDetails(map[string]any{"dependency": name, "checks": checks})
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
