package presence

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/PoofyPloop/chatapp/internal/common"
)

// Handler wires the presence endpoints to the service layer.
type Handler struct {
	service PresenceService
}

func NewHandler(service PresenceService) *Handler {
	return &Handler{service: service}
}

type signInResponse struct {
	User  common.UserInfo `json:"user"`
	Token string          `json:"token"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, token, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, signInResponse{
		User:  toUserInfo(user),
		Token: token,
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not authenticated"})
		return
	}

	if err := h.service.SignOut(r.Context(), userID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not authenticated"})
		return
	}

	if err := h.service.Heartbeat(r.Context(), userID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOnline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := RosterFilter{
		Search:      q.Get("search"),
		CountryCode: q.Get("country"),
	}
	if v := q.Get("min_age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinAge = n
		}
	}
	if v := q.Get("max_age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MaxAge = n
		}
	}

	users, err := h.service.ListOnline(r.Context(), filter)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
