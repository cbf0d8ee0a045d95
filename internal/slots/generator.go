package slots

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/internal/schedule"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
)

// Slot is one bookable window offered to a caller.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Remaining int       `json:"remaining"`
	Earliest  bool      `json:"earliest"`
}

type scheduleResolver interface {
	Resolve(ctx context.Context, establishmentID uuid.UUID, date time.Time) (schedule.DaySchedule, error)
}

type prepEstimator interface {
	CurrentPrepMinutes(ctx context.Context, establishmentID uuid.UUID, includeConfirmed bool) (int, error)
}

type demandCounter interface {
	CountCreatedSince(ctx context.Context, establishmentID uuid.UUID, since time.Time) (int64, error)
}

// Generator lists the bookable windows for one establishment, date and slot
// type. It never writes; booking goes through the Ledger.
type Generator struct {
	repo     Repository
	schedule scheduleResolver
	prep     prepEstimator
	demand   demandCounter
	now      func() time.Time
}

// GeneratorParams holds dependencies for NewGenerator.
type GeneratorParams struct {
	Repo     Repository
	Schedule scheduleResolver
	Prep     prepEstimator
	Demand   demandCounter
	Now      func() time.Time
}

// NewGenerator constructs a slot Generator.
func NewGenerator(params GeneratorParams) (*Generator, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("slots repository required")
	}
	if params.Schedule == nil {
		return nil, fmt.Errorf("schedule resolver required")
	}
	if params.Prep == nil {
		return nil, fmt.Errorf("prep estimator required")
	}
	if params.Demand == nil {
		return nil, fmt.Errorf("demand counter required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Generator{
		repo:     params.Repo,
		schedule: params.Schedule,
		prep:     params.Prep,
		demand:   params.Demand,
		now:      params.Now,
	}, nil
}

// DurationMinutes picks the slot granularity for the current demand. With
// auto-adaptation off it is the configured minimum. Otherwise the trailing
// hour's order count maps onto [min, max]: at or below the low threshold the
// minimum, at or above the high threshold the maximum, in between a linear
// ramp across the interior counts.
func DurationMinutes(settings models.EstablishmentSchedule, recentOrders int) int {
	if !settings.AutoAdapt {
		return settings.MinSlotMinutes
	}
	low, high := settings.LowOrdersPerHour, settings.HighOrdersPerHour
	switch {
	case recentOrders <= low:
		return settings.MinSlotMinutes
	case recentOrders >= high:
		return settings.MaxSlotMinutes
	}
	span := float64(settings.MaxSlotMinutes - settings.MinSlotMinutes)
	fraction := float64(recentOrders-low) / float64(high-low+1)
	return settings.MinSlotMinutes + int(math.Round(span*fraction))
}

// ceilToGrid rounds t up to the next multiple of the slot duration, anchored
// at midnight of t's day (18:37 becomes 18:45 on a 15 minute grid).
func ceilToGrid(t time.Time, duration time.Duration) time.Time {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(dayStart)
	steps := elapsed / duration
	if elapsed%duration != 0 {
		steps++
	}
	return dayStart.Add(steps * duration)
}

// ListSlotsInput identifies the availability query.
type ListSlotsInput struct {
	EstablishmentID uuid.UUID
	Date            time.Time
	Type            enums.SlotType
	TravelMinutes   int
}

// ListSlots enumerates the free windows for the given date. An empty result
// means no availability and is not an error. The chronologically first free
// window carries the earliest-available flag.
func (g *Generator) ListSlots(ctx context.Context, input ListSlotsInput) ([]Slot, error) {
	day, err := g.schedule.Resolve(ctx, input.EstablishmentID, input.Date)
	if err != nil {
		return nil, err
	}
	if !day.Open {
		return []Slot{}, nil
	}

	now := g.now().UTC()
	settings := day.Settings

	recent, err := g.demand.CountCreatedSince(ctx, input.EstablishmentID, now.Add(-time.Hour))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count recent orders")
	}
	duration := time.Duration(DurationMinutes(settings, int(recent))) * time.Minute

	prep, err := g.prep.CurrentPrepMinutes(ctx, input.EstablishmentID, false)
	if err != nil {
		return nil, err
	}

	leadMinutes := prep + settings.BufferMinutes + input.TravelMinutes
	if leadMinutes < settings.MinAdvanceMinutes {
		leadMinutes = settings.MinAdvanceMinutes
	}
	earliest := ceilToGrid(now.Add(time.Duration(leadMinutes)*time.Minute), duration)
	horizon := now.Add(time.Duration(settings.MaxAdvanceHours) * time.Hour)

	start := day.OpensAt
	if earliest.After(start) {
		start = earliest
	}
	start = ceilToGrid(start, duration)

	buckets, err := g.repo.ListBuckets(ctx, input.EstablishmentID, start, day.ClosesAt, input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot buckets")
	}
	occupied := make(map[int64]models.SlotBucket, len(buckets))
	for _, bucket := range buckets {
		occupied[bucket.SlotStart.Unix()] = bucket
	}

	slots := []Slot{}
	for cursor := start; !cursor.Add(duration).After(day.ClosesAt) && cursor.Before(horizon); cursor = cursor.Add(duration) {
		remaining := day.Capacity
		if bucket, ok := occupied[cursor.Unix()]; ok {
			remaining = bucket.Remaining()
		}
		if remaining < 1 {
			continue
		}
		slots = append(slots, Slot{
			Start:     cursor,
			End:       cursor.Add(duration),
			Remaining: remaining,
			Earliest:  len(slots) == 0,
		})
	}
	return slots, nil
}
