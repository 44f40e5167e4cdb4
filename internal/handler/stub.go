package handler

import "net/http"

// NotImplemented answers the routes the web client has never shipped
// against: the auth pair and the standalone receipts resource. They are
// part of the public surface, so they return an explicit 501 instead of
// falling through to 404.
//
// POST /api/auth/register, POST /api/auth/login,
// POST /api/receipts/upload, PUT /api/receipts/{receiptId}/items,
// GET /api/receipts/{receiptId}.
func NotImplemented(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotImplemented, "Not implemented yet")
}
