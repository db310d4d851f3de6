package apiserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"social-go/internal/middleware"
	"social-go/internal/models"
	"social-go/internal/services"
	"social-go/internal/storage"
)

const (
	defaultRoomLimit    = 50
	defaultMessageLimit = 100
)

// ChatHandler serves the REST read side of chat: the caller's room list and
// per-room message history. Sending, read-marking and recall go through the
// socket events.
type ChatHandler struct {
	chatService services.ChatService
	userRepo    storage.UserRepository
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(cs services.ChatService, userRepo storage.UserRepository) *ChatHandler {
	return &ChatHandler{chatService: cs, userRepo: userRepo}
}

// RoomView is one entry in the caller's room list, denormalized with the
// peer's public info and the latest message preview.
type RoomView struct {
	ID          uint                  `json:"id"`
	Type        models.RoomType       `json:"type"`
	Peer        *models.UserBasicInfo `json:"peer"`
	LastMessage *models.Message       `json:"lastMessage,omitempty"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// ListRoomsHandler handles GET /api/v1/rooms
func (h *ChatHandler) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	rooms, err := h.chatService.ListRooms(r.Context(), userID, parseLimit(r, defaultRoomLimit))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	peerIDs := make([]uint, 0, len(rooms))
	for i := range rooms {
		peerIDs = append(peerIDs, rooms[i].OtherParticipant(userID))
	}
	peers, err := h.userRepo.GetMultipleBasicInfoByIDs(r.Context(), peerIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	peerByID := make(map[uint]*models.UserBasicInfo, len(peers))
	for _, p := range peers {
		peerByID[p.ID] = p
	}

	views := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		views = append(views, RoomView{
			ID:          room.ID,
			Type:        room.Type,
			Peer:        peerByID[room.OtherParticipant(userID)],
			LastMessage: room.LastMessage,
			UpdatedAt:   room.UpdatedAt,
		})
	}
	writeJSONResponse(w, http.StatusOK, views)
}

// ListMessagesHandler handles GET /api/v1/rooms/{roomID}/messages
func (h *ChatHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	roomID, err := strconv.ParseUint(mux.Vars(r)["roomID"], 10, 32)
	if err != nil {
		writeJSONError(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	// Recalled messages come back with their tombstone content; history keeps
	// its full shape for pagination on the client.
	msgs, svcErr := h.chatService.ListMessages(r.Context(), uint(roomID), userID, parseLimit(r, defaultMessageLimit))
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}
	writeJSONResponse(w, http.StatusOK, msgs)
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
