package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

// EstablishmentSchedule holds the per-establishment slot configuration and
// weekly opening hours. Missing rows fall back to documented defaults in the
// schedule service rather than failing requests.
type EstablishmentSchedule struct {
	EstablishmentID   uuid.UUID         `gorm:"column:establishment_id;type:uuid;primaryKey"`
	MinSlotMinutes    int               `gorm:"column:min_slot_minutes;not null"`
	MaxSlotMinutes    int               `gorm:"column:max_slot_minutes;not null"`
	AutoAdapt         bool              `gorm:"column:auto_adapt;not null;default:true"`
	LowOrdersPerHour  int               `gorm:"column:low_orders_per_hour;not null"`
	HighOrdersPerHour int               `gorm:"column:high_orders_per_hour;not null"`
	MaxOrdersPerSlot  int               `gorm:"column:max_orders_per_slot;not null"`
	MinAdvanceMinutes int               `gorm:"column:min_advance_minutes;not null"`
	MaxAdvanceHours   int               `gorm:"column:max_advance_hours;not null"`
	BufferMinutes     int               `gorm:"column:buffer_minutes;not null"`
	OpeningHours      types.WeeklyHours `gorm:"column:opening_hours;type:jsonb;serializer:json"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ScheduleOverride customizes a single date: full closure, altered hours or a
// different per-slot capacity (holidays, special events).
type ScheduleOverride struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"column:establishment_id;type:uuid;not null;uniqueIndex:uq_schedule_overrides_date"`
	Date            time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_schedule_overrides_date"`
	Closed          bool      `gorm:"column:closed;not null;default:false"`
	Open            *string   `gorm:"column:open"`
	Close           *string   `gorm:"column:close"`
	Capacity        *int      `gorm:"column:capacity"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
