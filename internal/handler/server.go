// Package handler implements the HTTP handlers for the Splitroom API.
// All handlers are methods on Server; methods are split into domain-specific
// files (room.go, receipt.go, ...) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/splitroom-app/backend/internal/domain"
)

// RoomServicer defines the business operations the room handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type RoomServicer interface {
	CreateRoom(ctx context.Context, roomName, creatorName, upiID string) (domain.RoomSnapshot, error)
	JoinRoom(ctx context.Context, roomID uuid.UUID, name, upiID string) (domain.RoomSnapshot, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (domain.RoomSnapshot, error)
}

// ReceiptServicer defines the business operations the receipt handlers
// depend on.
type ReceiptServicer interface {
	UploadReceipt(ctx context.Context, roomID uuid.UUID, image []byte, mimeType string) (domain.Receipt, error)
	SetItemTag(ctx context.Context, roomID uuid.UUID, itemRef, userID string, action domain.TagAction) ([]domain.Item, error)
}

// FileSaver persists uploaded files to the transient uploads directory.
// Saving is best-effort bookkeeping (the bytes already live in memory for
// extraction); the saved path is only used for later cleanup and the video
// posting flow.
type FileSaver interface {
	Save(field, originalName string, r io.Reader) (string, error)
}

// Server holds the dependencies shared by all API endpoints.
type Server struct {
	rooms    RoomServicer
	receipts ReceiptServicer
	uploads  FileSaver
}

// NewServer constructs the Server with all its dependencies.
// uploads may be nil, in which case uploaded images are not kept on disk.
func NewServer(rooms RoomServicer, receipts ReceiptServicer, uploads FileSaver) *Server {
	return &Server{rooms: rooms, receipts: receipts, uploads: uploads}
}
