package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/api/responses"
	"github.com/jinxed112/fritos-dispatch/api/validators"
	"github.com/jinxed112/fritos-dispatch/internal/rounds"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
)

type roundService interface {
	Commit(ctx context.Context, input rounds.CommitInput) (*models.DeliveryRound, error)
	Get(ctx context.Context, roundID uuid.UUID) (*models.DeliveryRound, error)
	List(ctx context.Context, establishmentID uuid.UUID) ([]models.DeliveryRound, error)
	Cancel(ctx context.Context, roundID uuid.UUID) error
}

type commitRoundPayload struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,dive,uuid"`
}

// RoundCommit persists a chosen cluster as a delivery round. The member
// orders are re-validated against each other first; 422 when they no longer
// form a single compatible cluster.
func RoundCommit(svc roundService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		establishmentID, err := validators.ParseUUID(chi.URLParam(r, "establishmentID"), "establishmentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload commitRoundPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderIDs := make([]uuid.UUID, 0, len(payload.OrderIDs))
		for _, raw := range payload.OrderIDs {
			id, parseErr := validators.ParseUUID(raw, "orderIds")
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, parseErr)
				return
			}
			orderIDs = append(orderIDs, id)
		}

		round, err := svc.Commit(ctx, rounds.CommitInput{
			EstablishmentID: establishmentID,
			OrderIDs:        orderIDs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, round)
	}
}

// RoundsList returns the establishment's rounds, stops in driving order.
func RoundsList(svc roundService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		establishmentID, err := validators.ParseUUID(chi.URLParam(r, "establishmentID"), "establishmentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.List(ctx, establishmentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// RoundGet returns one round by id.
func RoundGet(svc roundService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		roundID, err := validators.ParseUUID(chi.URLParam(r, "roundID"), "roundID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		round, err := svc.Get(ctx, roundID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, round)
	}
}

// RoundCancel releases a planned round and returns its orders to the pool.
func RoundCancel(svc roundService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		roundID, err := validators.ParseUUID(chi.URLParam(r, "roundID"), "roundID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Cancel(ctx, roundID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}
