package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PoofyPloop/chatapp/internal/chat/repository"
	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/dbmysql"
)

const (
	readRetries    = 3
	readRetryDelay = 100 * time.Millisecond
)

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID uint64, body string) (*dbmysql.Message, error)
	GetHistory(ctx context.Context, userA, userB uint64, since time.Time) ([]*dbmysql.Message, error)
	DeleteForUser(ctx context.Context, userID uint64) error
}

type chatService struct {
	repo      repository.ChatRepository
	publisher common.Publisher
	locks     userLocks
}

// Constructor used in DI/wire
func NewChatService(repo repository.ChatRepository, publisher common.Publisher) ChatService {
	return &chatService{
		repo:      repo,
		publisher: publisher,
		locks:     userLocks{locks: make(map[uint64]*sync.Mutex)},
	}
}

// SendMessage validates, stores and fans out one message. Both participants
// are locked for the duration so a concurrent DeleteForUser acts as a
// barrier: after a delete completes, this send re-checks existence inside the
// append transaction and fails NotFound instead of resurrecting rows.
func (s *chatService) SendMessage(ctx context.Context, senderID, receiverID uint64, body string) (*dbmysql.Message, error) {
	if err := common.ValidateMessageBody(senderID, receiverID, body); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(senderID, receiverID)
	defer unlock()

	msg := &dbmysql.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       strings.TrimSpace(body),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Append(ctx, msg); err != nil {
		if common.IsNotFound(err) {
			return nil, err
		}
		return nil, common.Transient(err)
	}

	s.publisher.PublishMessage(common.MessageEvent{
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		Seq:        msg.Seq,
		CreatedAt:  msg.CreatedAt,
	})

	return msg, nil
}

// GetHistory returns the conversation in replay order, retrying transient
// storage failures.
func (s *chatService) GetHistory(ctx context.Context, userA, userB uint64, since time.Time) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := common.Retry(ctx, readRetries, readRetryDelay, func() error {
		var innerErr error
		messages, innerErr = s.repo.History(ctx, userA, userB, since)
		if innerErr != nil {
			return common.Transient(innerErr)
		}
		return nil
	})
	return messages, err
}

// DeleteForUser removes the account and its message history when a session is
// reaped. The user's lock drains in-flight sends before the delete runs, and
// account plus messages go in one transaction: a send racing the reap either
// lands before the purge (and is removed with it) or finds the account gone
// and fails its existence check.
func (s *chatService) DeleteForUser(ctx context.Context, userID uint64) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.repo.DeleteForUser(ctx, userID); err != nil {
		return common.Transient(err)
	}
	return nil
}

// userLocks serializes operations scoped to the same user while letting
// disjoint users proceed in parallel. Locks are taken in ascending id order
// so overlapping pairs cannot deadlock.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func (ul *userLocks) lock(ids ...uint64) func() {
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	acquired := make([]*sync.Mutex, 0, len(sorted))
	var prev uint64
	for i, id := range sorted {
		if i > 0 && id == prev {
			continue
		}
		prev = id

		ul.mu.Lock()
		m, ok := ul.locks[id]
		if !ok {
			m = &sync.Mutex{}
			ul.locks[id] = m
		}
		ul.mu.Unlock()

		m.Lock()
		acquired = append(acquired, m)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}
