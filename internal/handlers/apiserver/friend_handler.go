package apiserver

import (
	"net/http"

	"social-go/internal/middleware"
	"social-go/internal/services"
)

// FriendHandler serves the REST read side of the friend-request state
// machine. All lists are projections over the relationship rows; mutations go
// through the socket events.
type FriendHandler struct {
	friendService services.FriendService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(fs services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: fs}
}

// ListFriendsHandler handles GET /api/v1/friends
func (h *FriendHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// ListIncomingRequestsHandler handles GET /api/v1/friend-requests/incoming
func (h *FriendHandler) ListIncomingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	requesters, err := h.friendService.ListIncomingRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, requesters)
}

// ListOutgoingRequestsHandler handles GET /api/v1/friend-requests/outgoing
func (h *FriendHandler) ListOutgoingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	targets, err := h.friendService.ListOutgoingRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, targets)
}
