package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room is the top-level aggregate: a bill-splitting session grouping
// participants and at most one receipt. Participants and the receipt are
// stored as a document on the room row and always written back whole;
// Version is the optimistic-concurrency token guarding those writes.
type Room struct {
	ID            uuid.UUID
	Name          string
	CreatorUserID uuid.UUID
	IsActive      bool
	Participants  []Participant
	Receipt       *Receipt
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Participant is a user's membership record within a room. Name and UpiID
// are denormalized copies of the user's fields taken at join time, so a
// room snapshot never needs per-participant user lookups.
type Participant struct {
	UserID   uuid.UUID `json:"userId"`
	Name     string    `json:"name"`
	UpiID    string    `json:"upiId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// HasParticipantNamed reports whether the room already has a participant
// with the given name, compared case-insensitively.
func (r *Room) HasParticipantNamed(name string) bool {
	for _, p := range r.Participants {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// RoomSnapshot is what the room service returns to handlers: the room, its
// resolved creator, and (for freshly created rooms) the invite link.
type RoomSnapshot struct {
	Room    Room
	Creator User

	// JoinLink is the client URL a creator shares to invite participants.
	// Populated by CreateRoom only.
	JoinLink string
}
