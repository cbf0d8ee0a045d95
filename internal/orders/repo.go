package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCompletedSince(ctx context.Context, establishmentID uuid.UUID, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Where("status = ?", enums.OrderStatusCompleted).
		Where("completed_at >= ?", since).
		Order("completed_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CountByStatus(ctx context.Context, establishmentID uuid.UUID, statuses []enums.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("establishment_id = ?", establishmentID).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountCreatedSince(ctx context.Context, establishmentID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("establishment_id = ?", establishmentID).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FindLaunchCandidates returns slotted orders still awaiting launch. Orders
// already promoted to confirmed are out of the scheduler's hands. A nil
// establishment ID scans all establishments.
func (r *repository) FindLaunchCandidates(ctx context.Context, establishmentID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).
		Where("slot_start IS NOT NULL").
		Where("status = ?", enums.OrderStatusPending).
		Order("slot_start ASC, created_at ASC")
	if establishmentID != uuid.Nil {
		q = q.Where("establishment_id = ?", establishmentID)
	}
	err := q.Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindUnroundedDeliveries(ctx context.Context, establishmentID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Where("type = ?", enums.OrderTypeDelivery).
		Where("round_id IS NULL").
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusConfirmed}).
		Where("slot_start >= ? AND slot_start < ?", from, to).
		Order("slot_start ASC, created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateScheduling(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) AssignRound(ctx context.Context, orderIDs []uuid.UUID, roundID uuid.UUID) error {
	if len(orderIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Update("round_id", roundID).Error
}

func (r *repository) ClearRound(ctx context.Context, roundID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("round_id = ?", roundID).
		Update("round_id", nil).Error
}
