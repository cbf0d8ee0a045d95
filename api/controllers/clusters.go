package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/api/responses"
	"github.com/jinxed112/fritos-dispatch/api/validators"
	"github.com/jinxed112/fritos-dispatch/internal/clustering"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
)

type clusterLister interface {
	ListClusters(ctx context.Context, establishmentID uuid.UUID) ([]clustering.Cluster, error)
}

// ClustersList returns the current delivery groupings with their timing
// annotations. The view is recomputed on every call and never persisted;
// committing a cluster into a round is a separate operation.
func ClustersList(svc clusterLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "clustering service unavailable"))
			return
		}

		establishmentID, err := validators.ParseUUID(chi.URLParam(r, "establishmentID"), "establishmentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		clusters, err := svc.ListClusters(ctx, establishmentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, clusters)
	}
}
