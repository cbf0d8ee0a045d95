package enums

import "fmt"

// SlotType identifies which booking stream a slot bucket belongs to.
// Pickup and delivery capacity are counted independently.
type SlotType string

const (
	SlotTypePickup   SlotType = "pickup"
	SlotTypeDelivery SlotType = "delivery"
)

var validSlotTypes = []SlotType{
	SlotTypePickup,
	SlotTypeDelivery,
}

// String implements fmt.Stringer.
func (s SlotType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SlotType.
func (s SlotType) IsValid() bool {
	for _, candidate := range validSlotTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSlotType converts raw input into a SlotType.
func ParseSlotType(value string) (SlotType, error) {
	for _, candidate := range validSlotTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid slot type %q", value)
}
