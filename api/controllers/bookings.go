package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/parkinglot-backend/api/responses"
	"github.com/angelmondragon/parkinglot-backend/api/validators"
	"github.com/angelmondragon/parkinglot-backend/internal/reports"
	"github.com/angelmondragon/parkinglot-backend/internal/reservations"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
	"github.com/angelmondragon/parkinglot-backend/pkg/pagination"
)

type bookRequest struct {
	LotID       string          `json:"lot_id" validate:"required,uuid"`
	VehicleType string          `json:"vehicle_type" validate:"required,max=32"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// BookSpot allocates the first free spot in the requested lot.
func BookSpot(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lotID, err := uuid.Parse(body.LotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lot id"))
			return
		}

		result, err := svc.Book(r.Context(), reservations.BookInput{
			LotID:       lotID,
			UserID:      userID,
			VehicleType: body.VehicleType,
			UnitPrice:   body.UnitPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ReleaseBooking closes a reservation and returns the billed amount. Admins
// may release any reservation.
func ReleaseBooking(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}
		reservationID, err := validators.ParseUUIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reservations.ReleaseInput{ReservationID: reservationID, ActorIsAdmin: isAdmin(r)}
		if !input.ActorIsAdmin {
			userID, err := currentUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ActorUserID = &userID
		}

		result, err := svc.Release(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ActiveBookings(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := svc.ListActiveBookings(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, active)
	}
}

// BookingHistory pages through the caller's reservations, newest first.
func BookingHistory(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListHistory(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
