package slots

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

// Repository defines persistence operations for slot buckets and
// reservations. Occupancy moves only through the guarded increment and
// decrement so two concurrent bookings can never both take the last spot.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureBucket(ctx context.Context, bucket *models.SlotBucket) error
	FindBucket(ctx context.Context, establishmentID uuid.UUID, slotStart time.Time, slotType enums.SlotType) (*models.SlotBucket, error)
	FindBucketByID(ctx context.Context, id uuid.UUID) (*models.SlotBucket, error)
	ListBuckets(ctx context.Context, establishmentID uuid.UUID, from, to time.Time, slotType enums.SlotType) ([]models.SlotBucket, error)
	IncrementReserved(ctx context.Context, bucketID uuid.UUID) (bool, error)
	DecrementReserved(ctx context.Context, bucketID uuid.UUID) (bool, error)
	CreateReservation(ctx context.Context, reservation *models.SlotReservation) error
	FindReservation(ctx context.Context, id uuid.UUID) (*models.SlotReservation, error)
	FindActiveReservationByOrder(ctx context.Context, orderID uuid.UUID) (*models.SlotReservation, error)
	DeactivateReservation(ctx context.Context, id uuid.UUID, canceledAt time.Time) (bool, error)
}
