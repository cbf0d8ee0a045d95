package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
)

// Repository defines persistence operations for schedule configuration.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByEstablishment(ctx context.Context, establishmentID uuid.UUID) (*models.EstablishmentSchedule, error)
	FindOverride(ctx context.Context, establishmentID uuid.UUID, date time.Time) (*models.ScheduleOverride, error)
	Upsert(ctx context.Context, schedule *models.EstablishmentSchedule) error
}
