package fanout

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/config"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler upgrades `/events` requests and streams hub events to the
// client. A client opens one socket per concern: the presence roster, or one
// conversation pair.
type EventsHandler struct {
	hub          *Hub
	pingInterval time.Duration
}

func NewEventsHandler(hub *Hub, cfg *config.Config) *EventsHandler {
	interval := time.Duration(cfg.Fanout.PingInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &EventsHandler{hub: hub, pingInterval: interval}
}

// HandleEvents (GET /events?scope=presence | ?scope=conversation&peer=<id>)
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserFromContext(r.Context())
	if !ok {
		common.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not authenticated"})
		return
	}

	var sub *Subscriber
	switch r.URL.Query().Get("scope") {
	case "presence":
		sub = h.hub.SubscribePresence()
	case "conversation":
		peerID, err := strconv.ParseUint(r.URL.Query().Get("peer"), 10, 64)
		if err != nil || peerID == userID {
			common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "valid peer id required"})
			return
		}
		sub = h.hub.SubscribeConversation(userID, peerID)
	default:
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "scope must be presence or conversation"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.Unsubscribe(sub)
		log.Printf("websocket upgrade failed for user %d: %v", userID, err)
		return
	}

	go h.readLoop(conn, sub)
	h.writeLoop(conn, sub)
}

// readLoop discards client frames; its job is noticing the peer went away.
func (h *EventsHandler) readLoop(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop streams the subscriber queue, pinging to keep the socket alive.
// Delivery is best effort; a failed write ends the session and the client
// reconciles through the pull endpoints after resubscribing.
func (h *EventsHandler) writeLoop(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("event delivery failed for subscriber %s: %v", sub.ID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
