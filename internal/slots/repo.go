package slots

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a slots repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureBucket lazily creates the bucket row for a window. A concurrent
// insert of the same window is absorbed by the unique index.
func (r *repository) EnsureBucket(ctx context.Context, bucket *models.SlotBucket) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "establishment_id"}, {Name: "slot_start"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(bucket).Error
}

func (r *repository) FindBucket(ctx context.Context, establishmentID uuid.UUID, slotStart time.Time, slotType enums.SlotType) (*models.SlotBucket, error) {
	var bucket models.SlotBucket
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Where("slot_start = ?", slotStart).
		Where("type = ?", slotType).
		First(&bucket).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *repository) FindBucketByID(ctx context.Context, id uuid.UUID) (*models.SlotBucket, error) {
	var bucket models.SlotBucket
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&bucket).Error
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (r *repository) ListBuckets(ctx context.Context, establishmentID uuid.UUID, from, to time.Time, slotType enums.SlotType) ([]models.SlotBucket, error) {
	var buckets []models.SlotBucket
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Where("type = ?", slotType).
		Where("slot_start >= ? AND slot_start < ?", from, to).
		Order("slot_start ASC").
		Find(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

// IncrementReserved takes one spot if any is free. The guard lives in the
// WHERE clause so the check and the write are a single statement.
func (r *repository) IncrementReserved(ctx context.Context, bucketID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SlotBucket{}).
		Where("id = ?", bucketID).
		Where("reserved_count < capacity").
		Update("reserved_count", gorm.Expr("reserved_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) DecrementReserved(ctx context.Context, bucketID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SlotBucket{}).
		Where("id = ?", bucketID).
		Where("reserved_count > 0").
		Update("reserved_count", gorm.Expr("reserved_count - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.SlotReservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) FindReservation(ctx context.Context, id uuid.UUID) (*models.SlotReservation, error) {
	var reservation models.SlotReservation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) FindActiveReservationByOrder(ctx context.Context, orderID uuid.UUID) (*models.SlotReservation, error) {
	var reservation models.SlotReservation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Where("active = ?", true).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// DeactivateReservation flips the active flag exactly once; a second cancel
// of the same reservation affects zero rows.
func (r *repository) DeactivateReservation(ctx context.Context, id uuid.UUID, canceledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SlotReservation{}).
		Where("id = ?", id).
		Where("active = ?", true).
		Updates(map[string]any{
			"active":      false,
			"canceled_at": canceledAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
