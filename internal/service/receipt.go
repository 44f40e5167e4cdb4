package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/splitroom-app/backend/internal/domain"
	"github.com/splitroom-app/backend/internal/repo"
)

// Extractor turns an uploaded receipt image into structured line items.
// Implementations call an external vision model; the service treats the
// result as opaque beyond the items array.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (domain.Receipt, error)
}

// ReceiptService implements business logic for receipt extraction and
// per-item tag mutation.
type ReceiptService struct {
	rooms     repo.RoomRepo
	extractor Extractor
}

// NewReceiptService constructs a ReceiptService.
func NewReceiptService(rooms repo.RoomRepo, extractor Extractor) *ReceiptService {
	return &ReceiptService{rooms: rooms, extractor: extractor}
}

// UploadReceipt sends the image to the extraction collaborator and persists
// the normalized receipt onto the room, overwriting any prior receipt.
// Returns domain.ErrValidation when the image is empty, domain.ErrNotFound
// when the room is absent, and domain.ErrUpstream (wrapped) when extraction
// fails or returns unparseable output.
func (s *ReceiptService) UploadReceipt(ctx context.Context, roomID uuid.UUID, image []byte, mimeType string) (domain.Receipt, error) {
	if len(image) == 0 {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.UploadReceipt: %w: no file uploaded", domain.ErrValidation)
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.UploadReceipt: %w", err)
	}

	receipt, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.UploadReceipt: %w", err)
	}

	backoff := retry.WithMaxRetries(casRetries, retry.NewConstant(casBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		room.Receipt = &receipt

		_, uerr := s.rooms.Update(ctx, room)
		if uerr == nil {
			return nil
		}
		if !errors.Is(uerr, domain.ErrVersionConflict) {
			return uerr
		}
		fresh, gerr := s.rooms.GetByID(ctx, roomID)
		if gerr != nil {
			return gerr
		}
		room = fresh
		return retry.RetryableError(uerr)
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("service.ReceiptService.UploadReceipt: %w", err)
	}

	return receipt, nil
}

// SetItemTag toggles a participant's tag on one line item and returns the
// full updated item list.
//
// itemRef identifies the item by its stable id; a decimal value falls back
// to positional lookup so older clients that address items by index keep
// working. Both add and remove are idempotent. The whole receipt is written
// back under compare-and-set and replayed on version conflicts, so two
// concurrent tag edits on the same room cannot silently drop each other.
func (s *ReceiptService) SetItemTag(ctx context.Context, roomID uuid.UUID, itemRef, userID string, action domain.TagAction) ([]domain.Item, error) {
	if err := requireFields(map[string]string{"userId": userID}); err != nil {
		return nil, fmt.Errorf("service.ReceiptService.SetItemTag: %w", err)
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("service.ReceiptService.SetItemTag: %w", err)
	}

	var updated domain.Room
	backoff := retry.WithMaxRetries(casRetries, retry.NewConstant(casBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		item, rerr := resolveItem(room.Receipt, itemRef)
		if rerr != nil {
			return rerr
		}

		switch action {
		case domain.TagAdd:
			item.AddTag(userID)
		case domain.TagRemove:
			item.RemoveTag(userID)
		default:
			return fmt.Errorf("%w: unknown action %q", domain.ErrValidation, action)
		}

		var uerr error
		updated, uerr = s.rooms.Update(ctx, room)
		if uerr == nil {
			return nil
		}
		if !errors.Is(uerr, domain.ErrVersionConflict) {
			return uerr
		}
		fresh, gerr := s.rooms.GetByID(ctx, roomID)
		if gerr != nil {
			return gerr
		}
		room = fresh
		return retry.RetryableError(uerr)
	})
	if err != nil {
		return nil, fmt.Errorf("service.ReceiptService.SetItemTag: %w", err)
	}

	return updated.Receipt.Items, nil
}

// resolveItem finds the addressed item within the room's receipt.
// Stable id wins; a purely numeric ref that matches no id is treated as a
// zero-based positional index.
func resolveItem(receipt *domain.Receipt, itemRef string) (*domain.Item, error) {
	if receipt == nil {
		return nil, fmt.Errorf("%w: no receipt in this room", domain.ErrNotFound)
	}
	if item := receipt.ItemByID(itemRef); item != nil {
		return item, nil
	}
	if idx, err := strconv.Atoi(itemRef); err == nil && idx >= 0 && idx < len(receipt.Items) {
		return &receipt.Items[idx], nil
	}
	return nil, fmt.Errorf("%w: item %q", domain.ErrNotFound, itemRef)
}
