package kitchen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
	"github.com/jinxed112/fritos-dispatch/pkg/metrics"
)

type prepEstimator interface {
	CurrentPrepMinutes(ctx context.Context, establishmentID uuid.UUID, includeConfirmed bool) (int, error)
}

type scheduleSource interface {
	Settings(ctx context.Context, establishmentID uuid.UUID) (models.EstablishmentSchedule, error)
}

// Result reports one recalculation pass.
type Result struct {
	Updated  int `json:"updated"`
	Launched int `json:"launched"`
}

// Service owns kitchen launch timing. On every pass it recomputes each
// pending slotted order's launch instant from the establishment's live prep
// estimate and promotes orders whose instant has arrived.
type Service struct {
	orders   orders.Repository
	prep     prepEstimator
	schedule scheduleSource
	logg     *logger.Logger
	metrics  *metrics.SchedulerMetrics

	rewriteThreshold time.Duration
	launchPriority   int
	now              func() time.Time
}

// ServiceParams holds dependencies for NewService.
type ServiceParams struct {
	Orders    orders.Repository
	Prep      prepEstimator
	Schedule  scheduleSource
	Logger    *logger.Logger
	Metrics   *metrics.SchedulerMetrics
	Scheduler config.SchedulerConfig
	Now       func() time.Time
}

// NewService constructs the launch scheduler service.
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
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	rewrite := params.Scheduler.RewriteThreshold
	if rewrite <= 0 {
		rewrite = time.Minute
	}
	priority := params.Scheduler.LaunchPriority
	if priority <= 0 {
		priority = 1000
	}
	return &Service{
		orders:           params.Orders,
		prep:             params.Prep,
		schedule:         params.Schedule,
		logg:             params.Logger,
		metrics:          params.Metrics,
		rewriteThreshold: rewrite,
		launchPriority:   priority,
		now:              params.Now,
	}, nil
}

// Recalculate runs one pass for a single establishment. Safe to call on
// demand between ticks; recomputing from the same inputs writes nothing.
func (s *Service) Recalculate(ctx context.Context, establishmentID uuid.UUID) (Result, error) {
	candidates, err := s.orders.FindLaunchCandidates(ctx, establishmentID)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load launch candidates")
	}
	return s.process(ctx, establishmentID, candidates)
}

// RecalculateAll runs one pass across every establishment with pending
// slotted orders, sharing one prep snapshot per establishment.
func (s *Service) RecalculateAll(ctx context.Context) (Result, error) {
	candidates, err := s.orders.FindLaunchCandidates(ctx, uuid.Nil)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load launch candidates")
	}

	grouped := make(map[uuid.UUID][]models.Order)
	keys := []uuid.UUID{}
	for _, order := range candidates {
		if _, ok := grouped[order.EstablishmentID]; !ok {
			keys = append(keys, order.EstablishmentID)
		}
		grouped[order.EstablishmentID] = append(grouped[order.EstablishmentID], order)
	}

	total := Result{}
	var errs error
	for _, establishmentID := range keys {
		result, err := s.process(ctx, establishmentID, grouped[establishmentID])
		if err != nil {
			s.logg.Error(s.logg.WithEstablishmentID(ctx, establishmentID.String()), "launch recalculation failed", err)
			errs = multierr.Append(errs, err)
			continue
		}
		total.Updated += result.Updated
		total.Launched += result.Launched
	}
	return total, errs
}

func (s *Service) process(ctx context.Context, establishmentID uuid.UUID, candidates []models.Order) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, nil
	}

	// The queue fallback counts confirmed orders here: they are in the
	// kitchen's near future even if prep has not started.
	prep, err := s.prep.CurrentPrepMinutes(ctx, establishmentID, true)
	if err != nil {
		return Result{}, err
	}
	settings, err := s.schedule.Settings(ctx, establishmentID)
	if err != nil {
		return Result{}, err
	}

	now := s.now().UTC()
	result := Result{}
	for _, order := range candidates {
		updates, rewrote, launched := s.planUpdates(order, prep, settings.BufferMinutes, now)
		if len(updates) == 0 {
			continue
		}
		if err := s.orders.UpdateScheduling(ctx, order.ID, updates); err != nil {
			// One stuck order must not stall the batch; the next tick
			// retries it.
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "persist launch update failed", err)
			continue
		}
		if rewrote {
			result.Updated++
		}
		if launched {
			result.Launched++
		}
	}

	if s.metrics != nil {
		s.metrics.AddUpdated(result.Updated)
		s.metrics.AddLaunched(result.Launched)
	}
	return result, nil
}

// planUpdates computes the writes one order needs, if any.
func (s *Service) planUpdates(order models.Order, prepMinutes, bufferMinutes int, now time.Time) (map[string]any, bool, bool) {
	offset := prepMinutes + bufferMinutes
	if order.Type == enums.OrderTypeDelivery && order.TravelMinutes != nil {
		offset += *order.TravelMinutes
	}
	launchAt := order.SlotStart.Add(-time.Duration(offset) * time.Minute)

	updates := map[string]any{}
	rewrote := false
	effective := launchAt
	if order.KitchenLaunchAt == nil || absDuration(order.KitchenLaunchAt.Sub(launchAt)) > s.rewriteThreshold {
		updates["kitchen_launch_at"] = launchAt
		rewrote = true
	} else {
		effective = *order.KitchenLaunchAt
	}

	launched := false
	if !effective.After(now) {
		updates["status"] = enums.OrderStatusConfirmed
		updates["priority"] = s.launchPriority
		launched = true
	}

	if !rewrote && !launched {
		return nil, false, false
	}
	return updates, rewrote, launched
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
