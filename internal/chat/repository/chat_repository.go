package repository

import (
	"context"
	"errors"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/dbmysql"

	"gorm.io/gorm"
)

type ChatRepository interface {
	Append(ctx context.Context, msg *dbmysql.Message) error
	History(ctx context.Context, userA, userB uint64, since time.Time) ([]*dbmysql.Message, error)
	DeleteForUser(ctx context.Context, userID uint64) error
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

// Append stores the message inside one transaction: both participants must
// still exist, and the per-conversation sequence is claimed under a row lock
// so replay order is deterministic with insertion order breaking ties.
func (r *chatRepo) Append(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range []uint64{msg.SenderID, msg.ReceiverID} {
			var count int64
			if err := tx.Model(&dbmysql.User{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return common.NewNotFoundError("user", id)
			}
		}

		msg.ConvKey = common.ConversationKey(msg.SenderID, msg.ReceiverID)

		var maxSeq uint64
		if err := tx.Raw(
			"SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conv_key = ? FOR UPDATE",
			msg.ConvKey,
		).Scan(&maxSeq).Error; err != nil {
			return err
		}
		msg.Seq = maxSeq + 1

		return tx.Create(msg).Error
	})
}

// History returns the pair's messages ascending by sequence, optionally only
// those created after since.
func (r *chatRepo) History(ctx context.Context, userA, userB uint64, since time.Time) ([]*dbmysql.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conv_key = ?", common.ConversationKey(userA, userB))
	if !since.IsZero() {
		q = q.Where("created_at > ?", since)
	}

	var messages []*dbmysql.Message
	err := q.Order("seq ASC").Find(&messages).Error
	return messages, err
}

// DeleteForUser removes the account together with every message the user sent
// or received and the watermarks referencing them, all in one transaction.
// Callers hold the user's lock, so a send can never interleave between the
// message purge and the account removal.
func (r *chatRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Delete(&dbmysql.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR peer_id = ?", userID, userID).
			Delete(&dbmysql.Watermark{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&dbmysql.User{}).Error
	})
}

// IsNotFoundErr reports whether err is the store's missing-row error.
func IsNotFoundErr(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
