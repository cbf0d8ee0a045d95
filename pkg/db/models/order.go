package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

// Order is the scheduling view of an order. The ordering collaborator owns
// the row; this core only reads telemetry fields and writes the slot window,
// launch timestamp, priority and the pending→confirmed transition.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	EstablishmentID uuid.UUID             `gorm:"column:establishment_id;type:uuid;not null;index"`
	Type            enums.OrderType       `gorm:"column:type;type:text;not null"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	Priority        int                   `gorm:"column:priority;not null;default:0"`
	SlotStart       *time.Time            `gorm:"column:slot_start"`
	SlotEnd         *time.Time            `gorm:"column:slot_end"`
	KitchenLaunchAt *time.Time            `gorm:"column:kitchen_launch_at"`
	Destination     *types.GeographyPoint `gorm:"column:destination;type:geography(Point,4326)"`
	TravelMinutes   *int                  `gorm:"column:travel_minutes"`
	RoundID         *uuid.UUID            `gorm:"column:round_id;type:uuid"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	CompletedAt     *time.Time            `gorm:"column:completed_at"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// HasDeliveryGeodata reports whether the order carries everything the
// clusterer needs. Orders missing any piece are excluded, never errored on.
func (o Order) HasDeliveryGeodata() bool {
	return o.Destination != nil && o.TravelMinutes != nil && o.SlotStart != nil && o.SlotEnd != nil
}
