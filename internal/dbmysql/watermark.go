package dbmysql

import (
	"time"
)

// Watermark records the timestamp of the last message a user has viewed from
// a given peer. Unread counts are always recomputed from messages past this
// mark; the watermark row is the only state MarkSeen persists.
type Watermark struct {
	UserID    uint64    `gorm:"primaryKey;column:user_id;autoIncrement:false" json:"user_id"`
	PeerID    uint64    `gorm:"primaryKey;column:peer_id;autoIncrement:false" json:"peer_id"`
	SeenUntil time.Time `gorm:"column:seen_until" json:"seen_until"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
