package rounds

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/internal/clustering"
	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/maps"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type prepEstimator interface {
	CurrentPrepMinutes(ctx context.Context, establishmentID uuid.UUID, includeConfirmed bool) (int, error)
}

type scheduleSource interface {
	Settings(ctx context.Context, establishmentID uuid.UUID) (models.EstablishmentSchedule, error)
}

type travelEstimator interface {
	TravelTime(ctx context.Context, origin, destination types.GeographyPoint) (maps.TravelEstimate, error)
}

// Service turns an ephemeral cluster into a persisted DeliveryRound. The
// cluster view is stale the moment it is returned, so committing re-validates
// the chosen orders against the same admission rules before writing.
type Service struct {
	repo     Repository
	orders   orders.Repository
	tx       txRunner
	prep     prepEstimator
	schedule scheduleSource
	travel   travelEstimator
	cfg      config.ClusteringConfig
}

// ServiceParams holds dependencies for NewService.
type ServiceParams struct {
	Repo       Repository
	Orders     orders.Repository
	Tx         txRunner
	Prep       prepEstimator
	Schedule   scheduleSource
	// Travel is optional; stop-to-stop times fall back to the haversine
	// heuristic when no routing client is configured.
	Travel     travelEstimator
	Clustering config.ClusteringConfig
}

// NewService constructs the rounds Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("rounds repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Prep == nil {
		return nil, fmt.Errorf("prep estimator required")
	}
	if params.Schedule == nil {
		return nil, fmt.Errorf("schedule source required")
	}
	return &Service{
		repo:     params.Repo,
		orders:   params.Orders,
		tx:       params.Tx,
		prep:     params.Prep,
		schedule: params.Schedule,
		travel:   params.Travel,
		cfg:      params.Clustering,
	}, nil
}

// CommitInput names the orders a dispatcher wants in one round.
type CommitInput struct {
	EstablishmentID uuid.UUID
	OrderIDs        []uuid.UUID
}

// Commit validates that the chosen orders still form a single compatible
// cluster, then persists the round, its stops and the order assignments in
// one transaction.
func (s *Service) Commit(ctx context.Context, input CommitInput) (*models.DeliveryRound, error) {
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order is required")
	}

	rows := make([]models.Order, 0, len(input.OrderIDs))
	for _, orderID := range input.OrderIDs {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		if order.EstablishmentID != input.EstablishmentID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order belongs to another establishment")
		}
		if order.Type != enums.OrderTypeDelivery {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only delivery orders can join a round")
		}
		if order.RoundID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already assigned to a round")
		}
		if !order.HasDeliveryGeodata() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is missing destination or travel data")
		}
		rows = append(rows, *order)
	}

	prep, err := s.prep.CurrentPrepMinutes(ctx, input.EstablishmentID, true)
	if err != nil {
		return nil, err
	}
	settings, err := s.schedule.Settings(ctx, input.EstablishmentID)
	if err != nil {
		return nil, err
	}

	clusters := clustering.ClusterOrders(clustering.MembersFromOrders(rows), clustering.Options{
		MaxDistanceKM:     s.cfg.MaxDistanceKM,
		MaxHopMinutes:     s.cfg.MaxHopMinutes,
		AssumedSpeedKMH:   s.cfg.AssumedSpeedKMH,
		PerStopMinutes:    s.cfg.PerStopMinutes,
		MaxOrdersPerRound: s.cfg.MaxOrdersPerRound,
		PrepMinutes:       prep,
		BufferMinutes:     settings.BufferMinutes,
	})
	if len(clusters) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders are no longer compatible for a single round")
	}
	cluster := clusters[0]

	round := &models.DeliveryRound{
		ID:                 uuid.New(),
		EstablishmentID:    input.EstablishmentID,
		Status:             enums.RoundStatusPlanned,
		DepartureAt:        cluster.DepartureAt,
		KitchenLaunchAt:    cluster.KitchenLaunchAt,
		TotalTravelMinutes: cluster.TotalTravelMinutes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		if err := repo.Create(ctx, round); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create round")
		}

		stops := make([]models.RoundStop, 0, len(cluster.Members))
		memberIDs := make([]uuid.UUID, 0, len(cluster.Members))
		prev := cluster.Members[0]
		for i, member := range cluster.Members {
			fromPrev := 0.0
			if i > 0 {
				fromPrev = s.hopMinutes(ctx, prev, member)
			}
			stops = append(stops, models.RoundStop{
				ID:                    uuid.New(),
				RoundID:               round.ID,
				OrderID:               member.OrderID,
				Position:              i + 1,
				Destination:           member.Destination,
				TravelMinutesFromPrev: fromPrev,
			})
			memberIDs = append(memberIDs, member.OrderID)
			prev = member
		}
		if err := repo.CreateStops(ctx, stops); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create round stops")
		}

		if err := ordersRepo.AssignRound(ctx, memberIDs, round.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign orders to round")
		}

		// The round's shared launch instant supersedes each order's own.
		for _, orderID := range memberIDs {
			if err := ordersRepo.UpdateScheduling(ctx, orderID, map[string]any{
				"kitchen_launch_at": round.KitchenLaunchAt,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp round launch time")
			}
		}
		round.Stops = stops
		return nil
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// Cancel releases a planned round: stops stay for audit, member orders
// return to the unassigned pool.
func (s *Service) Cancel(ctx context.Context, roundID uuid.UUID) error {
	round, err := s.repo.FindByID(ctx, roundID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "round not found")
	}
	if round.Status != enums.RoundStatusPlanned {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only planned rounds can be canceled")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		if err := repo.UpdateStatus(ctx, roundID, enums.RoundStatusCanceled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel round")
		}
		if err := ordersRepo.ClearRound(ctx, roundID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release round orders")
		}
		return nil
	})
}

// Get returns one round with its stops in driving order.
func (s *Service) Get(ctx context.Context, roundID uuid.UUID) (*models.DeliveryRound, error) {
	round, err := s.repo.FindByID(ctx, roundID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "round not found")
	}
	return round, nil
}

// List returns the establishment's rounds with stops in driving order.
func (s *Service) List(ctx context.Context, establishmentID uuid.UUID) ([]models.DeliveryRound, error) {
	rounds, err := s.repo.ListByEstablishment(ctx, establishmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rounds")
	}
	return rounds, nil
}

// hopMinutes prefers the routing client's live estimate and falls back to
// the haversine heuristic when it is absent or failing.
func (s *Service) hopMinutes(ctx context.Context, a, b clustering.Member) float64 {
	if s.travel != nil {
		if estimate, err := s.travel.TravelTime(ctx, a.Destination, b.Destination); err == nil {
			return estimate.Minutes
		}
	}
	return clustering.HopMinutes(a.Destination, b.Destination, s.cfg.AssumedSpeedKMH)
}
