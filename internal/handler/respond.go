package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/splitroom-app/backend/internal/domain"
)

// messageBody is the error envelope the web client expects: a status code
// plus one human-readable message, nothing structured beyond that.
type messageBody struct {
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures are logged
// and otherwise dropped, since the status line has already been written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeMessage writes the plain {message} envelope.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// writeError maps a service error onto the HTTP status taxonomy and a
// generic message. fallback is the catch-all message for unclassified
// failures, which are also logged; clients never see internals.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, domain.ErrRoomInactive):
		writeMessage(w, http.StatusBadRequest, "This room is no longer active")
	case errors.Is(err, domain.ErrConflict):
		writeMessage(w, http.StatusBadRequest, "A participant with this name already exists")
	case errors.Is(err, domain.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Missing or invalid request fields")
	case errors.Is(err, domain.ErrUpstream):
		slog.Error("extraction failure", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to process receipt")
	default:
		slog.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

// notFoundMessage picks the client-facing wording for a not-found error.
// The service wraps ErrNotFound with context; the handler only needs to
// distinguish "no receipt"/"item" from a missing room.
func notFoundMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no receipt"):
		return "No receipt found in this room"
	case strings.Contains(msg, "item"):
		return "Item not found"
	default:
		return "Room not found"
	}
}
