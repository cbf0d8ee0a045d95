package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Ledger guards slot occupancy. Reserve and Cancel run their bucket writes
// and order updates in one transaction; the occupancy guard itself is a
// conditional UPDATE, so two concurrent reservations racing for the last
// spot serialize in the database and exactly one wins.
type Ledger struct {
	repo   Repository
	orders orders.Repository
	tx     txRunner
	now    func() time.Time
}

// LedgerParams holds dependencies for NewLedger.
type LedgerParams struct {
	Repo   Repository
	Orders orders.Repository
	Tx     txRunner
	Now    func() time.Time
}

// NewLedger constructs the slot capacity ledger.
func NewLedger(params LedgerParams) (*Ledger, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("slots repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Ledger{repo: params.Repo, orders: params.Orders, tx: params.Tx, now: params.Now}, nil
}

// ReserveInput describes one slot booking.
type ReserveInput struct {
	EstablishmentID uuid.UUID
	OrderID         uuid.UUID
	SlotStart       time.Time
	SlotEnd         time.Time
	Type            enums.SlotType
	Capacity        int
}

// Reserve books one spot in the window's bucket and stamps the order with
// its slot. Returns a SLOT_FULL error when the bucket has no spot left.
func (l *Ledger) Reserve(ctx context.Context, input ReserveInput) (*models.SlotReservation, error) {
	if input.Capacity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
	}
	if !input.SlotEnd.After(input.SlotStart) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slot end must be after slot start")
	}

	reservation := &models.SlotReservation{
		ID:      uuid.New(),
		OrderID: input.OrderID,
		Active:  true,
	}

	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		ordersRepo := l.orders.WithTx(tx)

		day := input.SlotStart.Truncate(24 * time.Hour)
		bucket := &models.SlotBucket{
			ID:              uuid.New(),
			EstablishmentID: input.EstablishmentID,
			Day:             day,
			SlotStart:       input.SlotStart,
			SlotEnd:         input.SlotEnd,
			Type:            input.Type,
			Capacity:        input.Capacity,
		}
		if err := repo.EnsureBucket(ctx, bucket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure slot bucket")
		}

		stored, err := repo.FindBucket(ctx, input.EstablishmentID, input.SlotStart, input.Type)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot bucket")
		}

		taken, err := repo.IncrementReserved(ctx, stored.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve slot spot")
		}
		if !taken {
			return pkgerrors.New(pkgerrors.CodeSlotFull, "slot has no remaining capacity")
		}

		reservation.BucketID = stored.ID
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}

		return ordersRepo.UpdateScheduling(ctx, input.OrderID, map[string]any{
			"slot_start": input.SlotStart,
			"slot_end":   input.SlotEnd,
		})
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Cancel releases the reservation's spot. Canceling an already-canceled
// reservation is a no-op so a spot is never restored twice.
func (l *Ledger) Cancel(ctx context.Context, reservationID uuid.UUID) error {
	reservation, err := l.repo.FindReservation(ctx, reservationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return l.cancel(ctx, reservation)
}

// CancelByOrder releases the order's active reservation, if any.
func (l *Ledger) CancelByOrder(ctx context.Context, orderID uuid.UUID) error {
	reservation, err := l.repo.FindActiveReservationByOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no active reservation for order")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return l.cancel(ctx, reservation)
}

func (l *Ledger) cancel(ctx context.Context, reservation *models.SlotReservation) error {
	return l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		ordersRepo := l.orders.WithTx(tx)

		flipped, err := repo.DeactivateReservation(ctx, reservation.ID, l.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate reservation")
		}
		if !flipped {
			// Already canceled; the spot was restored on the first call.
			return nil
		}

		freed, err := repo.DecrementReserved(ctx, reservation.BucketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release slot spot")
		}
		if !freed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bucket occupancy already zero")
		}

		return ordersRepo.UpdateScheduling(ctx, reservation.OrderID, map[string]any{
			"slot_start": nil,
			"slot_end":   nil,
		})
	})
}

// CountActive returns the bucket's current occupancy. Windows without a
// bucket row have zero occupancy.
func (l *Ledger) CountActive(ctx context.Context, establishmentID uuid.UUID, slotStart time.Time, slotType enums.SlotType) (int, error) {
	bucket, err := l.repo.FindBucket(ctx, establishmentID, slotStart, slotType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot bucket")
	}
	return bucket.ReservedCount, nil
}
