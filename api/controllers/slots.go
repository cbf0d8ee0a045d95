package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/api/responses"
	"github.com/jinxed112/fritos-dispatch/api/validators"
	"github.com/jinxed112/fritos-dispatch/internal/schedule"
	"github.com/jinxed112/fritos-dispatch/internal/slots"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/logger"
)

type slotLister interface {
	ListSlots(ctx context.Context, input slots.ListSlotsInput) ([]slots.Slot, error)
}

type slotLedger interface {
	Reserve(ctx context.Context, input slots.ReserveInput) (*models.SlotReservation, error)
	Cancel(ctx context.Context, reservationID uuid.UUID) error
	CancelByOrder(ctx context.Context, orderID uuid.UUID) error
}

type dayResolver interface {
	Resolve(ctx context.Context, establishmentID uuid.UUID, date time.Time) (schedule.DaySchedule, error)
}

// SlotsList returns the bookable windows for one establishment and date.
func SlotsList(svc slotLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "slot service unavailable"))
			return
		}

		establishmentID, err := validators.ParseUUID(chi.URLParam(r, "establishmentID"), "establishmentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if date.IsZero() {
			date = time.Now().UTC()
		}

		slotType := enums.SlotTypePickup
		if raw := r.URL.Query().Get("type"); raw != "" {
			parsed, parseErr := enums.ParseSlotType(raw)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid slot type"))
				return
			}
			slotType = parsed
		}

		travelMinutes, err := validators.ParseQueryInt(r, "travelMinutes", 0, 0, 240)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		available, err := svc.ListSlots(ctx, slots.ListSlotsInput{
			EstablishmentID: establishmentID,
			Date:            date,
			Type:            slotType,
			TravelMinutes:   travelMinutes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, available)
	}
}

type createReservationPayload struct {
	OrderID string    `json:"orderId" validate:"required,uuid"`
	Start   time.Time `json:"start" validate:"required"`
	End     time.Time `json:"end" validate:"required"`
	Type    string    `json:"type" validate:"required,oneof=pickup delivery"`
}

// ReservationCreate books one spot in a slot bucket. Capacity comes from the
// establishment's resolved day schedule, so per-date overrides apply.
func ReservationCreate(ledger slotLedger, days dayResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ledger == nil || days == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		establishmentID, err := validators.ParseUUID(chi.URLParam(r, "establishmentID"), "establishmentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createReservationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := validators.ParseUUID(payload.OrderID, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if !payload.End.After(payload.Start) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slot end must be after slot start"))
			return
		}

		slotType, err := enums.ParseSlotType(payload.Type)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid slot type"))
			return
		}

		day, err := days.Resolve(ctx, establishmentID, payload.Start)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !day.Open {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "establishment is closed on that date"))
			return
		}

		reservation, err := ledger.Reserve(ctx, slots.ReserveInput{
			EstablishmentID: establishmentID,
			OrderID:         orderID,
			SlotStart:       payload.Start.UTC(),
			SlotEnd:         payload.End.UTC(),
			Type:            slotType,
			Capacity:        day.Capacity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// ReservationCancel releases the spot held by one reservation.
func ReservationCancel(ledger slotLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ledger == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		reservationID, err := validators.ParseUUID(chi.URLParam(r, "reservationID"), "reservationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := ledger.Cancel(ctx, reservationID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}

// OrderReservationCancel releases whatever active reservation an order holds.
func OrderReservationCancel(ledger slotLedger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ledger == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		orderID, err := validators.ParseUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := ledger.CancelByOrder(ctx, orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}
