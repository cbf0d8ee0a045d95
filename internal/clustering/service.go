package clustering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
)

type prepEstimator interface {
	CurrentPrepMinutes(ctx context.Context, establishmentID uuid.UUID, includeConfirmed bool) (int, error)
}

type scheduleSource interface {
	Settings(ctx context.Context, establishmentID uuid.UUID) (models.EstablishmentSchedule, error)
}

// Service assembles the clustering snapshot: unassigned deliveries inside
// the establishment's booking horizon, with orders missing geodata silently
// excluded.
type Service struct {
	orders   orders.Repository
	prep     prepEstimator
	schedule scheduleSource
	cfg      config.ClusteringConfig
	now      func() time.Time
}

// ServiceParams holds dependencies for NewService.
type ServiceParams struct {
	Orders     orders.Repository
	Prep       prepEstimator
	Schedule   scheduleSource
	Clustering config.ClusteringConfig
	Now        func() time.Time
}

// NewService constructs the clustering Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Prep == nil {
		return nil, fmt.Errorf("prep estimator required")
	}
	if params.Schedule == nil {
		return nil, fmt.Errorf("schedule source required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{
		orders:   params.Orders,
		prep:     params.Prep,
		schedule: params.Schedule,
		cfg:      params.Clustering,
		now:      params.Now,
	}, nil
}

// ListClusters computes the current cluster view for an establishment. The
// result is a snapshot; it is stale the moment new orders arrive or rounds
// claim members.
func (s *Service) ListClusters(ctx context.Context, establishmentID uuid.UUID) ([]Cluster, error) {
	settings, err := s.schedule.Settings(ctx, establishmentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	horizon := now.Add(time.Duration(settings.MaxAdvanceHours) * time.Hour)

	candidates, err := s.orders.FindUnroundedDeliveries(ctx, establishmentID, now, horizon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery candidates")
	}

	members := MembersFromOrders(candidates)
	if len(members) == 0 {
		return []Cluster{}, nil
	}

	prep, err := s.prep.CurrentPrepMinutes(ctx, establishmentID, true)
	if err != nil {
		return nil, err
	}

	return ClusterOrders(members, Options{
		MaxDistanceKM:     s.cfg.MaxDistanceKM,
		MaxHopMinutes:     s.cfg.MaxHopMinutes,
		AssumedSpeedKMH:   s.cfg.AssumedSpeedKMH,
		PerStopMinutes:    s.cfg.PerStopMinutes,
		MaxOrdersPerRound: s.cfg.MaxOrdersPerRound,
		PrepMinutes:       prep,
		BufferMinutes:     settings.BufferMinutes,
	}), nil
}
