package common

import (
	"fmt"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

type RosterEventType string

const (
	UserOnlineEvent  RosterEventType = "user_online"
	UserOfflineEvent RosterEventType = "user_offline"
	UserRemovedEvent RosterEventType = "user_removed"
)

// UserInfo is the roster-facing projection of a user row.
type UserInfo struct {
	ID          uint64         `json:"id"`
	Username    string         `json:"username"`
	Age         int            `json:"age"`
	Gender      Gender         `json:"gender"`
	Country     string         `json:"country"`
	CountryCode string         `json:"country_code"`
	Status      PresenceStatus `json:"status"`
	LastSeen    time.Time      `json:"last_seen"`
}

// RosterEvent announces a presence mutation (sign-in, sign-out, reap).
type RosterEvent struct {
	Type RosterEventType `json:"type"`
	User UserInfo        `json:"user"`
}

// MessageEvent announces a newly stored message to conversation subscribers.
type MessageEvent struct {
	MessageID  uint64    `json:"message_id"`
	SenderID   uint64    `json:"sender_id"`
	ReceiverID uint64    `json:"receiver_id"`
	Body       string    `json:"body"`
	Seq        uint64    `json:"seq"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationKey names the unordered user pair. It partitions message
// ordering and realtime delivery filtering.
func ConversationKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
