package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a schedule repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByEstablishment(ctx context.Context, establishmentID uuid.UUID) (*models.EstablishmentSchedule, error) {
	var schedule models.EstablishmentSchedule
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) FindOverride(ctx context.Context, establishmentID uuid.UUID, date time.Time) (*models.ScheduleOverride, error) {
	var override models.ScheduleOverride
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Where("date = ?", day).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *repository) Upsert(ctx context.Context, schedule *models.EstablishmentSchedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "establishment_id"}},
			UpdateAll: true,
		}).
		Create(schedule).Error
}
