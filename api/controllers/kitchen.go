package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/api/responses"
	"github.com/jinxed112/fritos-dispatch/api/validators"
	"github.com/jinxed112/fritos-dispatch/internal/kitchen"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
)

type launchRecalculator interface {
	Recalculate(ctx context.Context, establishmentID uuid.UUID) (kitchen.Result, error)
}

// KitchenRecalculate re-derives launch instants for the establishment's
// pending slotted orders. Safe to call repeatedly; a second run with nothing
// changed reports zero writes.
func KitchenRecalculate(svc launchRecalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kitchen service unavailable"))
			return
		}

		establishmentID, err := validators.ParseUUID(chi.URLParam(r, "establishmentID"), "establishmentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Recalculate(ctx, establishmentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
