package reservations

import pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"

var (
	ErrNoAvailableSpot     = pkgerrors.New(pkgerrors.CodeConflict, "no available spot")
	ErrAlreadyClosed       = pkgerrors.New(pkgerrors.CodeConflict, "reservation already closed")
	ErrReservationNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	ErrLotNotFound         = pkgerrors.New(pkgerrors.CodeNotFound, "lot not found")
	ErrUserNotFound        = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
)
