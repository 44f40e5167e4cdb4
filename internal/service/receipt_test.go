package service_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom-app/backend/internal/domain"
	"github.com/splitroom-app/backend/internal/service"
)

// mockExtractor is a hand-written test double for service.Extractor.
type mockExtractor struct {
	extract func(ctx context.Context, image []byte, mimeType string) (domain.Receipt, error)
}

func (m *mockExtractor) Extract(ctx context.Context, image []byte, mimeType string) (domain.Receipt, error) {
	return m.extract(ctx, image, mimeType)
}

var _ service.Extractor = (*mockExtractor)(nil)

func sampleReceipt() domain.Receipt {
	return domain.Receipt{
		Items: []domain.Item{
			{ID: "itm-1", Tags: []string{}},
			{ID: "itm-2", Tags: []string{"user-1"}},
		},
	}
}

// ---- UploadReceipt ---------------------------------------------------------

func TestReceiptService_UploadReceipt_OK(t *testing.T) {
	room := activeRoom(uuid.New())
	extracted := sampleReceipt()

	var persisted *domain.Receipt
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			persisted = r.Receipt
			r.Version++
			return r, nil
		},
	}
	extractor := &mockExtractor{
		extract: func(_ context.Context, image []byte, mimeType string) (domain.Receipt, error) {
			assert.Equal(t, "image/jpeg", mimeType)
			return extracted, nil
		},
	}
	svc := service.NewReceiptService(rooms, extractor)

	got, err := svc.UploadReceipt(context.Background(), room.ID, []byte("jpeg-bytes"), "image/jpeg")

	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	require.NotNil(t, persisted, "receipt must be written to the room")
	assert.Equal(t, "itm-1", persisted.Items[0].ID)
}

func TestReceiptService_UploadReceipt_EmptyImage(t *testing.T) {
	svc := service.NewReceiptService(&mockRoomRepo{}, &mockExtractor{})

	_, err := svc.UploadReceipt(context.Background(), uuid.New(), nil, "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReceiptService_UploadReceipt_RoomNotFound(t *testing.T) {
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return domain.Room{}, domain.ErrNotFound
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	_, err := svc.UploadReceipt(context.Background(), uuid.New(), []byte("jpeg"), "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiptService_UploadReceipt_ExtractionFails(t *testing.T) {
	room := activeRoom(uuid.New())
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
	}
	extractor := &mockExtractor{
		extract: func(_ context.Context, image []byte, mimeType string) (domain.Receipt, error) {
			return domain.Receipt{}, domain.ErrUpstream
		},
	}
	svc := service.NewReceiptService(rooms, extractor)

	_, err := svc.UploadReceipt(context.Background(), room.ID, []byte("jpeg"), "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

// A new upload replaces a prior receipt wholesale.
func TestReceiptService_UploadReceipt_Overwrites(t *testing.T) {
	room := activeRoom(uuid.New())
	room.Receipt = &domain.Receipt{Items: []domain.Item{{ID: "old", Tags: []string{"user-1"}}}}

	var persisted *domain.Receipt
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			persisted = r.Receipt
			return r, nil
		},
	}
	extractor := &mockExtractor{
		extract: func(_ context.Context, image []byte, mimeType string) (domain.Receipt, error) {
			return sampleReceipt(), nil
		},
	}
	svc := service.NewReceiptService(rooms, extractor)

	_, err := svc.UploadReceipt(context.Background(), room.ID, []byte("jpeg"), "image/jpeg")

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "itm-1", persisted.Items[0].ID, "old receipt is gone")
}

// ---- SetItemTag ------------------------------------------------------------

func roomWithReceipt() domain.Room {
	room := activeRoom(uuid.New())
	receipt := sampleReceipt()
	room.Receipt = &receipt
	return room
}

func TestReceiptService_SetItemTag_AddByID(t *testing.T) {
	room := roomWithReceipt()
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			r.Version++
			return r, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	items, err := svc.SetItemTag(context.Background(), room.ID, "itm-1", "user-2", domain.TagAdd)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"user-2"}, items[0].Tags)
}

func TestReceiptService_SetItemTag_AddByIndex(t *testing.T) {
	room := roomWithReceipt()
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			return r, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	// "1" matches no item id, so it addresses items[1] positionally.
	items, err := svc.SetItemTag(context.Background(), room.ID, "1", "user-2", domain.TagAdd)

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-2"}, items[1].Tags)
}

func TestReceiptService_SetItemTag_Remove(t *testing.T) {
	room := roomWithReceipt()
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			return r, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	items, err := svc.SetItemTag(context.Background(), room.ID, "itm-2", "user-1", domain.TagRemove)

	require.NoError(t, err)
	assert.Empty(t, items[1].Tags)
}

func TestReceiptService_SetItemTag_AddIdempotent(t *testing.T) {
	room := roomWithReceipt()
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			return r, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	// user-1 is already tagged on itm-2; adding again changes nothing.
	items, err := svc.SetItemTag(context.Background(), room.ID, "itm-2", "user-1", domain.TagAdd)

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, items[1].Tags)
}

func TestReceiptService_SetItemTag_NoReceipt(t *testing.T) {
	room := activeRoom(uuid.New())
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	_, err := svc.SetItemTag(context.Background(), room.ID, "itm-1", "user-1", domain.TagAdd)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiptService_SetItemTag_ItemNotFound(t *testing.T) {
	room := roomWithReceipt()
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	_, err := svc.SetItemTag(context.Background(), room.ID, "itm-99", "user-1", domain.TagAdd)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiptService_SetItemTag_MissingUserID(t *testing.T) {
	svc := service.NewReceiptService(&mockRoomRepo{}, &mockExtractor{})

	_, err := svc.SetItemTag(context.Background(), uuid.New(), "itm-1", "", domain.TagAdd)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReceiptService_SetItemTag_RetriesOnVersionConflict(t *testing.T) {
	room := roomWithReceipt()
	var updates atomic.Int32
	rooms := &mockRoomRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Room, error) {
			return room, nil
		},
		update: func(_ context.Context, r domain.Room) (domain.Room, error) {
			if updates.Add(1) == 1 {
				return domain.Room{}, domain.ErrVersionConflict
			}
			return r, nil
		},
	}
	svc := service.NewReceiptService(rooms, &mockExtractor{})

	items, err := svc.SetItemTag(context.Background(), room.ID, "itm-1", "user-2", domain.TagAdd)

	require.NoError(t, err)
	assert.Equal(t, int32(2), updates.Load())
	assert.Contains(t, items[0].Tags, "user-2")
}
