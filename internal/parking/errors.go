package parking

import "errors"

// Domain errors for the allocation service. Handlers map these onto HTTP
// statuses; none of them is retryable since the outcome is deterministic
// given current state.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrSlotNotFound    = errors.New("parking slot not found")
	ErrSlotOccupied    = errors.New("parking slot is already occupied")
	ErrRecordNotFound  = errors.New("parking record not found")
	ErrAlreadyExited   = errors.New("vehicle has already exited")
	ErrNoAvailableSlot = errors.New("no available parking slots")
	ErrMissingField    = errors.New("missing required data")
)
