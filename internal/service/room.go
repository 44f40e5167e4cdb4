// Package service contains the business logic for the Splitroom backend.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here; services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/splitroom-app/backend/internal/domain"
	"github.com/splitroom-app/backend/internal/repo"
)

// casRetries bounds how often a read-modify-write is replayed after losing
// a version race before the request fails.
const casRetries = 3

// casBackoff is the fixed pause between compare-and-set replays.
const casBackoff = 25 * time.Millisecond

// RoomService implements business logic for room lifecycle operations:
// create, join, and snapshot reads.
type RoomService struct {
	users     repo.UserRepo
	rooms     repo.RoomRepo
	clientURL string
}

// NewRoomService constructs a RoomService. clientURL is the base URL of the
// web client, used to build invite links.
func NewRoomService(users repo.UserRepo, rooms repo.RoomRepo, clientURL string) *RoomService {
	return &RoomService{
		users:     users,
		rooms:     rooms,
		clientURL: strings.TrimRight(clientURL, "/"),
	}
}

// CreateRoom creates the creator's user record, then a room with that user
// as sole participant and isActive=true. The returned snapshot carries the
// invite link embedding the room id.
func (s *RoomService) CreateRoom(ctx context.Context, roomName, creatorName, upiID string) (domain.RoomSnapshot, error) {
	if err := requireFields(map[string]string{
		"roomName": roomName,
		"name":     creatorName,
		"upiId":    upiID,
	}); err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.CreateRoom: %w", err)
	}

	creator, err := s.users.Create(ctx, creatorName, upiID)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.CreateRoom: %w", err)
	}

	room := domain.Room{
		Name:          roomName,
		CreatorUserID: creator.ID,
		IsActive:      true,
		Participants: []domain.Participant{{
			UserID:   creator.ID,
			Name:     creator.Name,
			UpiID:    creator.UpiID,
			JoinedAt: time.Now().UTC(),
		}},
	}

	created, err := s.rooms.Create(ctx, room)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.CreateRoom: %w", err)
	}

	return domain.RoomSnapshot{
		Room:     created,
		Creator:  creator,
		JoinLink: fmt.Sprintf("%s/rooms/join/%s", s.clientURL, created.ID),
	}, nil
}

// JoinRoom admits a new participant into an existing room.
//
// Fails with domain.ErrNotFound when the room is absent, domain.ErrRoomInactive
// when isActive is false, and domain.ErrConflict when name collides
// case-insensitively with an existing participant, all without writing
// anything. On success a user record is created and appended to the
// participant list via a compare-and-set write, replayed on version conflicts
// so concurrent joins cannot drop each other.
func (s *RoomService) JoinRoom(ctx context.Context, roomID uuid.UUID, name, upiID string) (domain.RoomSnapshot, error) {
	if err := requireFields(map[string]string{"name": name, "upiId": upiID}); err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.JoinRoom: %w", err)
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.JoinRoom: %w", err)
	}
	if err := admissible(room, name); err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.JoinRoom: %w", err)
	}

	user, err := s.users.Create(ctx, name, upiID)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.JoinRoom: %w", err)
	}

	participant := domain.Participant{
		UserID:   user.ID,
		Name:     user.Name,
		UpiID:    user.UpiID,
		JoinedAt: time.Now().UTC(),
	}

	var updated domain.Room
	backoff := retry.WithMaxRetries(casRetries, retry.NewConstant(casBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		room.Participants = append(room.Participants, participant)

		var uerr error
		updated, uerr = s.rooms.Update(ctx, room)
		if uerr == nil {
			return nil
		}
		if !errors.Is(uerr, domain.ErrVersionConflict) {
			return uerr
		}

		// Lost the race: re-read and re-check admission before replaying,
		// since the concurrent writer may have closed the room or taken
		// the same name.
		fresh, gerr := s.rooms.GetByID(ctx, roomID)
		if gerr != nil {
			return gerr
		}
		if aerr := admissible(fresh, name); aerr != nil {
			return aerr
		}
		room = fresh
		return retry.RetryableError(uerr)
	})
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.JoinRoom: %w", err)
	}

	creator, err := s.users.GetByID(ctx, updated.CreatorUserID)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.JoinRoom: resolve creator: %w", err)
	}

	return domain.RoomSnapshot{Room: updated, Creator: creator}, nil
}

// GetRoom returns the room snapshot with the creator resolved and the
// receipt included when present.
func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (domain.RoomSnapshot, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.GetRoom: %w", err)
	}

	creator, err := s.users.GetByID(ctx, room.CreatorUserID)
	if err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("service.RoomService.GetRoom: resolve creator: %w", err)
	}

	return domain.RoomSnapshot{Room: room, Creator: creator}, nil
}

// admissible checks the join preconditions against a room snapshot.
func admissible(room domain.Room, name string) error {
	if !room.IsActive {
		return domain.ErrRoomInactive
	}
	if room.HasParticipantNamed(name) {
		return domain.ErrConflict
	}
	return nil
}

// requireFields returns ErrValidation naming the first empty field.
func requireFields(fields map[string]string) error {
	for _, key := range []string{"roomName", "name", "upiId", "userId"} {
		if v, ok := fields[key]; ok && strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, key)
		}
	}
	return nil
}
