package rounds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rounds repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, round *models.DeliveryRound) error {
	return r.db.WithContext(ctx).Omit("Stops").Create(round).Error
}

func (r *repository) CreateStops(ctx context.Context, stops []models.RoundStop) error {
	if len(stops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&stops).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryRound, error) {
	var round models.DeliveryRound
	err := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]models.DeliveryRound, error) {
	var rounds []models.DeliveryRound
	err := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("establishment_id = ?", establishmentID).
		Order("departure_at ASC").
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RoundStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryRound{}).
		Where("id = ?", id).
		Update("status", status).Error
}
