package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/splitroom-app/backend/internal/domain"
)

// uploadField is the multipart form field carrying the receipt image.
const uploadField = "receipt"

// UploadReceipt handles POST /api/rooms/{roomId}/upload-receipt.
// The request is multipart/form-data with the image under the "receipt"
// field. On success the extracted receipt JSON is returned as-is.
func (s *Server) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Room not found")
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	// Keep a copy in the uploads directory. Failure here is logged, not
	// fatal; extraction runs off the in-memory bytes.
	if s.uploads != nil {
		if _, serr := s.uploads.Save(uploadField, header.Filename, bytes.NewReader(image)); serr != nil {
			slog.Warn("saving upload failed", "error", serr)
		}
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	receipt, err := s.receipts.UploadReceipt(r.Context(), roomID, image, mimeType)
	if err != nil {
		writeError(w, err, "Failed to process receipt")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// SetItemTag handles POST /api/rooms/{roomId}/items/{itemRef}/tags.
// itemRef is the stable item id assigned at extraction time; a numeric
// index is accepted for older clients.
func (s *Server) SetItemTag(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Room not found")
		return
	}
	itemRef := chi.URLParam(r, "itemRef")

	var req struct {
		UserID string `json:"userId"`
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action, err := domain.ParseTagAction(req.Action)
	if err != nil {
		writeError(w, err, "Failed to update tags")
		return
	}

	items, err := s.receipts.SetItemTag(r.Context(), roomID, itemRef, req.UserID, action)
	if err != nil {
		writeError(w, err, "Failed to update tags")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   items,
	})
}
