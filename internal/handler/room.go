package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/splitroom-app/backend/internal/domain"
)

// creatorBody is the resolved creator embedded in every room response.
type creatorBody struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	UpiID string    `json:"upiId"`
}

// participantBody is one entry of the resolved participant list.
type participantBody struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	UpiID    string    `json:"upiId"`
	JoinedAt time.Time `json:"joinedAt"`
}

func creatorOf(snap domain.RoomSnapshot) creatorBody {
	return creatorBody{ID: snap.Creator.ID, Name: snap.Creator.Name, UpiID: snap.Creator.UpiID}
}

func participantsOf(room domain.Room) []participantBody {
	out := make([]participantBody, len(room.Participants))
	for i, p := range room.Participants {
		out[i] = participantBody{ID: p.UserID, Name: p.Name, UpiID: p.UpiID, JoinedAt: p.JoinedAt}
	}
	return out
}

// CreateRoom handles POST /api/rooms/create.
func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomName string `json:"roomName"`
		Name     string `json:"name"`
		UpiID    string `json:"upiId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.rooms.CreateRoom(r.Context(), req.RoomName, req.Name, req.UpiID)
	if err != nil {
		writeError(w, err, "Failed to create room")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Room created successfully",
		"room": struct {
			ID       uuid.UUID   `json:"id"`
			Name     string      `json:"name"`
			Creator  creatorBody `json:"creator"`
			JoinLink string      `json:"joinLink"`
		}{
			ID:       snap.Room.ID,
			Name:     snap.Room.Name,
			Creator:  creatorOf(snap),
			JoinLink: snap.JoinLink,
		},
	})
}

// JoinRoom handles POST /api/rooms/join/{roomId}.
func (s *Server) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Room not found")
		return
	}

	var req struct {
		Name  string `json:"name"`
		UpiID string `json:"upiId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.rooms.JoinRoom(r.Context(), roomID, req.Name, req.UpiID)
	if err != nil {
		writeError(w, err, "Failed to join room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Joined room successfully",
		"room": struct {
			ID           uuid.UUID         `json:"id"`
			Name         string            `json:"name"`
			Creator      creatorBody       `json:"creator"`
			Participants []participantBody `json:"participants"`
		}{
			ID:           snap.Room.ID,
			Name:         snap.Room.Name,
			Creator:      creatorOf(snap),
			Participants: participantsOf(snap.Room),
		},
	})
}

// GetRoom handles GET /api/rooms/{roomId}.
// The receipt is included as null until one has been uploaded.
func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Room not found")
		return
	}

	snap, err := s.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		writeError(w, err, "Failed to fetch room details")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room": struct {
			ID           uuid.UUID         `json:"id"`
			Name         string            `json:"name"`
			Creator      creatorBody       `json:"creator"`
			Participants []participantBody `json:"participants"`
			IsActive     bool              `json:"isActive"`
			Receipt      *domain.Receipt   `json:"receipt"`
		}{
			ID:           snap.Room.ID,
			Name:         snap.Room.Name,
			Creator:      creatorOf(snap),
			Participants: participantsOf(snap.Room),
			IsActive:     snap.Room.IsActive,
			Receipt:      snap.Room.Receipt,
		},
	})
}
