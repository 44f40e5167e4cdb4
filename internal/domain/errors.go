package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource (room, receipt, or line item) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unknown tag action).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrRoomInactive is returned when a join is attempted on a room whose
// isActive flag has been cleared. Handlers should map this to HTTP 400.
var ErrRoomInactive = errors.New("room is no longer active")

// ErrConflict is returned when a join would create a second participant with
// the same case-insensitive name inside one room.
var ErrConflict = errors.New("participant name already taken")

// ErrVersionConflict is returned by the room repo when a compare-and-set
// write loses against a concurrent writer. Services retry on it; it must
// never escape to a handler.
var ErrVersionConflict = errors.New("room version conflict")

// ErrUpstream is returned when the receipt extraction collaborator is
// unreachable or its response does not contain parseable JSON.
var ErrUpstream = errors.New("extraction failed")
