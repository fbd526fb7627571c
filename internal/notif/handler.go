package notif

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
)

type Handler struct {
	service NotificationService
}

func NewHandler(service NotificationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not authenticated"})
		return
	}

	counts, err := h.service.UnreadCounts(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

type markSeenRequest struct {
	PeerID    uint64    `json:"peer_id"`
	SeenUntil time.Time `json:"seen_until"`
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not authenticated"})
		return
	}

	var req markSeenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.service.MarkSeen(r.Context(), userID, req.PeerID, req.SeenUntil); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
