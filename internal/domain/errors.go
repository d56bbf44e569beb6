package domain

import "errors"

// Engine error kinds. Every failure surfaced by the facility maps to one of
// these so callers can branch with errors.Is.
var (
	ErrLotFull            = errors.New("no eligible free spot for this vehicle class")
	ErrAlreadyParked      = errors.New("vehicle already holds an active ticket")
	ErrUnknownTicket      = errors.New("ticket number does not exist")
	ErrInvalidTicketState = errors.New("ticket is not in the required state for this operation")
	ErrPaymentFailed      = errors.New("payment was declined")
	ErrInvalidTransition  = errors.New("ticket status transition not permitted")

	ErrSpotOccupied = errors.New("spot is already occupied")
	ErrSpotFree     = errors.New("spot is already free")

	ErrUnknownFloor    = errors.New("floor does not exist")
	ErrUnknownSpot     = errors.New("spot does not exist")
	ErrUnknownEntrance = errors.New("entrance does not exist")
	ErrUnknownExit     = errors.New("exit does not exist")
	ErrDuplicateID     = errors.New("identifier already registered")
)
