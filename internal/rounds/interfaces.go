package rounds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

// Repository defines persistence operations for delivery rounds.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, round *models.DeliveryRound) error
	CreateStops(ctx context.Context, stops []models.RoundStop) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryRound, error)
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]models.DeliveryRound, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RoundStatus) error
}
