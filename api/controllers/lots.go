package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/parkinglot-backend/api/responses"
	"github.com/angelmondragon/parkinglot-backend/api/validators"
	"github.com/angelmondragon/parkinglot-backend/internal/lots"
	"github.com/angelmondragon/parkinglot-backend/internal/reports"
	"github.com/angelmondragon/parkinglot-backend/internal/spots"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/logger"
)

type createLotRequest struct {
	Name       string          `json:"name" validate:"required,max=120"`
	Price      decimal.Decimal `json:"price"`
	Address    string          `json:"address" validate:"required,max=255"`
	PostalCode string          `json:"postal_code" validate:"required,postalcode"`
	Capacity   int             `json:"capacity" validate:"required,gt=0,max=500"`
}

type updateLotRequest struct {
	Name       *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Address    *string          `json:"address,omitempty" validate:"omitempty,max=255"`
	PostalCode *string          `json:"postal_code,omitempty" validate:"omitempty,postalcode"`
	Capacity   *int             `json:"capacity,omitempty" validate:"omitempty,gt=0,max=500"`
}

// ListLots returns active lots that still have a free spot. The optional q
// parameter filters on address or postal code.
func ListLots(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		lotList, err := svc.ListAvailableLots(r.Context(), validators.SearchQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lotList)
	}
}

func AdminCreateLot(svc lots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lots service unavailable"))
			return
		}

		var body createLotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.Create(r.Context(), lots.CreateLotInput{
			Name:       body.Name,
			Price:      body.Price,
			Address:    body.Address,
			PostalCode: body.PostalCode,
			Capacity:   body.Capacity,
		}, actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lot)
	}
}

func AdminGetLot(svc lots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotID, err := validators.ParseUUIDParam(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.Get(r.Context(), lotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lot)
	}
}

// AdminUpdateLot applies a partial edit. Omitted fields keep their values.
func AdminUpdateLot(svc lots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotID, err := validators.ParseUUIDParam(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateLotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lot, err := svc.Update(r.Context(), lotID, lots.UpdateLotInput{
			Name:       body.Name,
			Price:      body.Price,
			Address:    body.Address,
			PostalCode: body.PostalCode,
			Capacity:   body.Capacity,
		}, actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lot)
	}
}

func AdminDeleteLot(svc lots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotID, err := validators.ParseUUIDParam(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), lotID, actorFromRequest(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted", "lot_id": lotID.String()})
	}
}

// AdminListSpots is the admin spot browser for one lot.
func AdminListSpots(svc lots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lotID, err := validators.ParseUUIDParam(r, "lotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		spotList, err := svc.ListSpots(r.Context(), lotID, validators.SearchQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, spotList)
	}
}

func AdminRemoveSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spotID, err := validators.ParseUUIDParam(r, "spotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Remove(r.Context(), spotID, actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
