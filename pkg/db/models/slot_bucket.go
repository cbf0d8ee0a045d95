package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

// SlotBucket counts committed orders per (establishment, window, type).
// Rows are created lazily on first reservation and never deleted; occupancy
// only moves through the guarded increment/decrement in the slots ledger.
type SlotBucket struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	EstablishmentID uuid.UUID      `gorm:"column:establishment_id;type:uuid;not null;uniqueIndex:uq_slot_buckets_window"`
	Day             time.Time      `gorm:"column:day;type:date;not null"`
	SlotStart       time.Time      `gorm:"column:slot_start;not null;uniqueIndex:uq_slot_buckets_window"`
	SlotEnd         time.Time      `gorm:"column:slot_end;not null"`
	Type            enums.SlotType `gorm:"column:type;type:text;not null;uniqueIndex:uq_slot_buckets_window"`
	Capacity        int            `gorm:"column:capacity;not null"`
	ReservedCount   int            `gorm:"column:reserved_count;not null;default:0"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining returns the free spots left in the bucket.
func (b SlotBucket) Remaining() int {
	remaining := b.Capacity - b.ReservedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
