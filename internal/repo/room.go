package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/splitroom-app/backend/internal/domain"
)

// RoomRepo defines the persistence operations for Rooms.
//
// A room row carries its participants and receipt as JSONB documents that
// are always written back whole, so every mutation goes through Update with
// the version the caller read. There is no delete; rooms live forever.
type RoomRepo interface {
	// Create inserts a new room and returns the persisted record.
	// The caller supplies name, creator and the initial participant list;
	// is_active is true and version is 1 on the returned room.
	Create(ctx context.Context, room domain.Room) (domain.Room, error)

	// GetByID retrieves a single room by its UUID primary key.
	// Returns domain.ErrNotFound if no room with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Room, error)

	// Update writes back the mutable document fields (participants, receipt,
	// is_active) using compare-and-set on room.Version. On success the
	// returned room carries the incremented version.
	// Returns domain.ErrVersionConflict when a concurrent writer got there
	// first, and domain.ErrNotFound when the room does not exist.
	Update(ctx context.Context, room domain.Room) (domain.Room, error)
}

// pgRoomRepo is the Postgres implementation of RoomRepo.
type pgRoomRepo struct {
	db db
}

// NewRoomRepo constructs a RoomRepo backed by the provided db connection.
func NewRoomRepo(db db) RoomRepo {
	return &pgRoomRepo{db: db}
}

func (r *pgRoomRepo) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	const q = `
		INSERT INTO rooms (name, creator_user_id, is_active, participants)
		VALUES (@name, @creator_user_id, @is_active, @participants)
		RETURNING id, name, creator_user_id, is_active, participants, receipt, version, created_at, updated_at`

	participants, err := json.Marshal(room.Participants)
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Create: marshal participants: %w", err)
	}

	args := pgx.NamedArgs{
		"name":            room.Name,
		"creator_user_id": room.CreatorUserID,
		"is_active":       room.IsActive,
		"participants":    participants,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRoom(row)
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Room, error) {
	const q = `
		SELECT id, name, creator_user_id, is_active, participants, receipt, version, created_at, updated_at
		FROM rooms
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRoom(row)
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.GetByID: %w", err)
	}
	return result, nil
}

// Update performs the compare-and-set write. The WHERE clause matches both
// id and the version the caller read; zero rows updated means either the
// room vanished or a concurrent writer bumped the version; a follow-up
// existence check decides which error to return.
func (r *pgRoomRepo) Update(ctx context.Context, room domain.Room) (domain.Room, error) {
	const q = `
		UPDATE rooms
		SET participants = @participants,
		    receipt      = @receipt,
		    is_active    = @is_active,
		    version      = version + 1,
		    updated_at   = now()
		WHERE id = @id AND version = @version
		RETURNING id, name, creator_user_id, is_active, participants, receipt, version, created_at, updated_at`

	participants, err := json.Marshal(room.Participants)
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: marshal participants: %w", err)
	}

	var receipt []byte // nil marshals to SQL NULL
	if room.Receipt != nil {
		receipt, err = json.Marshal(room.Receipt)
		if err != nil {
			return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: marshal receipt: %w", err)
		}
	}

	args := pgx.NamedArgs{
		"id":           room.ID,
		"version":      room.Version,
		"participants": participants,
		"receipt":      receipt,
		"is_active":    room.IsActive,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRoom(row)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: %w", err)
	}

	// CAS missed. Distinguish a stale version from a missing room.
	var exists bool
	const existsQ = `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = @id)`
	if err := r.db.QueryRow(ctx, existsQ, pgx.NamedArgs{"id": room.ID}).Scan(&exists); err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: existence check: %w", err)
	}
	if exists {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: %w", domain.ErrVersionConflict)
	}
	return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: %w", domain.ErrNotFound)
}

// scanRoom maps a single database row into a domain.Room, unmarshalling the
// JSONB participant and receipt documents.
func scanRoom(s scanner) (domain.Room, error) {
	var (
		room            domain.Room
		id, creatorID   pgtype.UUID
		participantsRaw []byte
		receiptRaw      []byte
	)

	err := s.Scan(&id, &room.Name, &creatorID, &room.IsActive, &participantsRaw, &receiptRaw,
		&room.Version, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}

	room.ID = uuid.UUID(id.Bytes)
	room.CreatorUserID = uuid.UUID(creatorID.Bytes)

	if err := json.Unmarshal(participantsRaw, &room.Participants); err != nil {
		return domain.Room{}, fmt.Errorf("unmarshal participants: %w", err)
	}
	if receiptRaw != nil {
		var receipt domain.Receipt
		if err := json.Unmarshal(receiptRaw, &receipt); err != nil {
			return domain.Room{}, fmt.Errorf("unmarshal receipt: %w", err)
		}
		room.Receipt = &receipt
	}

	return room, nil
}
