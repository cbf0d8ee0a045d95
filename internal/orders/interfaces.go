package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

// Repository defines the scheduling core's persistence operations against the
// orders table. The ordering collaborator owns order creation; this side only
// reads telemetry and writes scheduling fields.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindCompletedSince(ctx context.Context, establishmentID uuid.UUID, since time.Time) ([]models.Order, error)
	CountByStatus(ctx context.Context, establishmentID uuid.UUID, statuses []enums.OrderStatus) (int64, error)
	CountCreatedSince(ctx context.Context, establishmentID uuid.UUID, since time.Time) (int64, error)
	FindLaunchCandidates(ctx context.Context, establishmentID uuid.UUID) ([]models.Order, error)
	FindUnroundedDeliveries(ctx context.Context, establishmentID uuid.UUID, from, to time.Time) ([]models.Order, error)
	UpdateScheduling(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	AssignRound(ctx context.Context, orderIDs []uuid.UUID, roundID uuid.UUID) error
	ClearRound(ctx context.Context, roundID uuid.UUID) error
}
