package models

import (
	"time"

	"github.com/google/uuid"
)

// SlotReservation is the handle returned to a caller that booked a slot.
// Cancellation flips Active and frees the bucket spot; the row itself stays
// for audit.
type SlotReservation struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	BucketID   uuid.UUID  `gorm:"column:bucket_id;type:uuid;not null;index"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	Active     bool       `gorm:"column:active;not null;default:true"`
	CanceledAt *time.Time `gorm:"column:canceled_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
