package dbmysql

import (
	"time"
)

// Message is one directed text message. ConvKey names the unordered sender/
// receiver pair; Seq is strictly increasing within a ConvKey so history
// replay is deterministic even when created_at ties.
// The (receiver_id, sender_id, created_at) index backs unread-count queries.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConvKey    string    `gorm:"column:conv_key;size:41;not null;index:idx_conv_seq,priority:1" json:"-"`
	Seq        uint64    `gorm:"column:seq;not null;index:idx_conv_seq,priority:2" json:"seq"`
	SenderID   uint64    `gorm:"column:sender_id;not null;index:idx_unread,priority:2" json:"sender_id"`
	ReceiverID uint64    `gorm:"column:receiver_id;not null;index:idx_unread,priority:1" json:"receiver_id"`
	Body       string    `gorm:"column:body;type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"column:created_at;index:idx_unread,priority:3" json:"created_at"`
}
