package apiserver

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"social-go/internal/middleware"
	"social-go/internal/services"
)

// UserHandler serves presence lookups.
type UserHandler struct {
	presenceService services.PresenceService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(ps services.PresenceService) *UserHandler {
	return &UserHandler{presenceService: ps}
}

// GetPresenceHandler handles GET /api/v1/users/{userID}/presence
func (h *UserHandler) GetPresenceHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		writeJSONError(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	userID, err := strconv.ParseUint(mux.Vars(r)["userID"], 10, 32)
	if err != nil {
		writeJSONError(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	snapshot, svcErr := h.presenceService.GetPresence(r.Context(), uint(userID))
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}
	writeJSONResponse(w, http.StatusOK, snapshot)
}
