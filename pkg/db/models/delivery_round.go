package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

// DeliveryRound is a committed cluster: an ordered sequence of delivery stops
// sharing one departure. Created once from a cluster snapshot, then owned by
// the delivery collaborator.
type DeliveryRound struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	EstablishmentID    uuid.UUID         `gorm:"column:establishment_id;type:uuid;not null;index"`
	Status             enums.RoundStatus `gorm:"column:status;type:text;not null;default:'planned'"`
	DepartureAt        time.Time         `gorm:"column:departure_at;not null"`
	KitchenLaunchAt    time.Time         `gorm:"column:kitchen_launch_at;not null"`
	TotalTravelMinutes float64           `gorm:"column:total_travel_minutes;not null"`
	Stops              []RoundStop       `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// RoundStop is one delivery in a round, in driving order.
type RoundStop struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	RoundID             uuid.UUID            `gorm:"column:round_id;type:uuid;not null;index"`
	OrderID             uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	Position            int                  `gorm:"column:position;not null"`
	Destination         types.GeographyPoint `gorm:"column:destination;type:geography(Point,4326)"`
	TravelMinutesFromPrev float64            `gorm:"column:travel_minutes_from_prev;not null"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
}
