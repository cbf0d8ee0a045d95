package preptime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
)

// ordersReader is the slice of the orders repository the estimator needs.
type ordersReader interface {
	FindCompletedSince(ctx context.Context, establishmentID uuid.UUID, since time.Time) ([]models.Order, error)
	CountByStatus(ctx context.Context, establishmentID uuid.UUID, statuses []enums.OrderStatus) (int64, error)
}

// Service produces live prep-time estimates for an establishment.
type Service struct {
	orders ordersReader
	now    func() time.Time
}

// ServiceParams holds dependencies for NewService.
type ServiceParams struct {
	Orders ordersReader
	Now    func() time.Time
}

// NewService constructs a prep-time Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{orders: params.Orders, now: params.Now}, nil
}

// CurrentPrepMinutes estimates how long a new order would take to prepare
// right now. includeConfirmed widens the queue-depth fallback to count
// confirmed-but-unstarted orders as backlog.
func (s *Service) CurrentPrepMinutes(ctx context.Context, establishmentID uuid.UUID, includeConfirmed bool) (int, error) {
	since := s.now().UTC().Add(-SampleWindow)

	completed, err := s.orders.FindCompletedSince(ctx, establishmentID, since)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load completed orders")
	}

	samples := make([]Sample, 0, len(completed))
	for _, order := range completed {
		if order.CompletedAt == nil {
			continue
		}
		samples = append(samples, Sample{CreatedAt: order.CreatedAt, CompletedAt: *order.CompletedAt})
	}

	statuses := []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPreparing}
	if includeConfirmed {
		statuses = append(statuses, enums.OrderStatusConfirmed)
	}

	queued, err := s.orders.CountByStatus(ctx, establishmentID, statuses)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count queued orders")
	}

	return Estimate(samples, int(queued)), nil
}
