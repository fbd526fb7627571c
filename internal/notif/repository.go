package notif

import (
	"context"
	"time"

	"github.com/PoofyPloop/chatapp/internal/dbmysql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PeerRow is one roster peer the user has exchanged messages with.
type PeerRow struct {
	PeerID   uint64 `gorm:"column:peer_id"`
	PeerName string `gorm:"column:peer_name"`
}

// UnreadRow is the per-sender unread tally past the recipient's watermark.
type UnreadRow struct {
	PeerID uint64 `gorm:"column:peer_id"`
	Count  int64  `gorm:"column:unread"`
}

type NotificationRepository interface {
	Peers(ctx context.Context, userID uint64) ([]PeerRow, error)
	UnreadCounts(ctx context.Context, userID uint64) ([]UnreadRow, error)
	SetWatermark(ctx context.Context, userID, peerID uint64, seenUntil time.Time) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Peers(ctx context.Context, userID uint64) ([]PeerRow, error) {
	var rows []PeerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.user_id AS peer_id, u.username AS peer_name
		FROM users u
		WHERE u.user_id IN (
			SELECT sender_id FROM messages WHERE receiver_id = ?
			UNION
			SELECT receiver_id FROM messages WHERE sender_id = ?
		)
		ORDER BY u.user_id`, userID, userID).Scan(&rows).Error
	return rows, err
}

// UnreadCounts recomputes the badge tallies from the message store: messages
// sent to the user after that sender's watermark (epoch when no watermark
// row exists). Backed by the (receiver_id, sender_id, created_at) index.
func (r *notificationRepository) UnreadCounts(ctx context.Context, userID uint64) ([]UnreadRow, error) {
	var rows []UnreadRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT m.sender_id AS peer_id, COUNT(*) AS unread
		FROM messages m
		LEFT JOIN watermarks w
			ON w.user_id = m.receiver_id AND w.peer_id = m.sender_id
		WHERE m.receiver_id = ?
			AND (w.seen_until IS NULL OR m.created_at > w.seen_until)
		GROUP BY m.sender_id`, userID).Scan(&rows).Error
	return rows, err
}

func (r *notificationRepository) SetWatermark(ctx context.Context, userID, peerID uint64, seenUntil time.Time) error {
	mark := &dbmysql.Watermark{
		UserID:    userID,
		PeerID:    peerID,
		SeenUntil: seenUntil,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "peer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"seen_until"}),
	}).Create(mark).Error
}
