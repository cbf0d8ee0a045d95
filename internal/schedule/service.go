package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

// Documented defaults applied when an establishment has no schedule row.
const (
	DefaultMinSlotMinutes    = 15
	DefaultMaxSlotMinutes    = 30
	DefaultLowOrdersPerHour  = 5
	DefaultHighOrdersPerHour = 10
	DefaultMaxOrdersPerSlot  = 8
	DefaultMinAdvanceMinutes = 30
	DefaultMaxAdvanceHours   = 48
	DefaultBufferMinutes     = 5
	DefaultOpen              = "11:00"
	DefaultClose             = "22:00"
)

// DaySchedule is the effective configuration for one establishment on one
// date, with any per-date override already applied.
type DaySchedule struct {
	Settings models.EstablishmentSchedule
	Date     time.Time
	Open     bool
	OpensAt  time.Time
	ClosesAt time.Time
	Capacity int
}

// Service resolves effective schedules, layering defaults, the stored
// configuration and per-date overrides.
type Service struct {
	repo Repository
}

// NewService constructs a schedule Service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("schedule repository required")
	}
	return &Service{repo: repo}, nil
}

// Defaults returns the schedule used when nothing is configured.
func Defaults(establishmentID uuid.UUID) models.EstablishmentSchedule {
	hours := types.WeeklyHours{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours[strings.ToLower(day.String())] = types.DayHours{Open: DefaultOpen, Close: DefaultClose}
	}
	return models.EstablishmentSchedule{
		EstablishmentID:   establishmentID,
		MinSlotMinutes:    DefaultMinSlotMinutes,
		MaxSlotMinutes:    DefaultMaxSlotMinutes,
		AutoAdapt:         true,
		LowOrdersPerHour:  DefaultLowOrdersPerHour,
		HighOrdersPerHour: DefaultHighOrdersPerHour,
		MaxOrdersPerSlot:  DefaultMaxOrdersPerSlot,
		MinAdvanceMinutes: DefaultMinAdvanceMinutes,
		MaxAdvanceHours:   DefaultMaxAdvanceHours,
		BufferMinutes:     DefaultBufferMinutes,
		OpeningHours:      hours,
	}
}

// Settings returns the stored configuration for the establishment, or the
// documented defaults when no row exists.
func (s *Service) Settings(ctx context.Context, establishmentID uuid.UUID) (models.EstablishmentSchedule, error) {
	stored, err := s.repo.FindByEstablishment(ctx, establishmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Defaults(establishmentID), nil
	}
	if err != nil {
		return models.EstablishmentSchedule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load establishment schedule")
	}
	return *stored, nil
}

// Resolve returns the effective schedule for the given date. Overrides can
// close the day entirely, shift the service window or change slot capacity.
func (s *Service) Resolve(ctx context.Context, establishmentID uuid.UUID, date time.Time) (DaySchedule, error) {
	settings, err := s.Settings(ctx, establishmentID)
	if err != nil {
		return DaySchedule{}, err
	}

	day := DaySchedule{
		Settings: settings,
		Date:     time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		Capacity: settings.MaxOrdersPerSlot,
	}

	hours, ok := settings.OpeningHours.For(date.Weekday())
	if !ok {
		hours = types.DayHours{Open: DefaultOpen, Close: DefaultClose}
	}

	override, err := s.repo.FindOverride(ctx, establishmentID, date)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		override = nil
	case err != nil:
		return DaySchedule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule override")
	}

	if override != nil {
		if override.Closed {
			return day, nil
		}
		if override.Open != nil {
			hours.Open = *override.Open
		}
		if override.Close != nil {
			hours.Close = *override.Close
		}
		if override.Capacity != nil {
			day.Capacity = *override.Capacity
		}
	}

	start, end, open, err := hours.Window(day.Date)
	if err != nil {
		return DaySchedule{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve service window")
	}
	day.Open = open
	day.OpensAt = start
	day.ClosesAt = end
	return day, nil
}
