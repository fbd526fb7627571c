package notif

import (
	"context"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
)

const (
	readRetries    = 3
	readRetryDelay = 100 * time.Millisecond
)

// PeerUnread is the badge entry for one conversation peer.
type PeerUnread struct {
	PeerName string `json:"peer_name"`
	Count    int64  `json:"count"`
}

// NotificationService derives unread-message badges from the message store
// plus per-peer watermarks. Counts are recomputed on every call, never stored,
// so they cannot drift from the store.
type NotificationService interface {
	UnreadCounts(ctx context.Context, userID uint64) (map[uint64]PeerUnread, error)
	MarkSeen(ctx context.Context, userID, peerID uint64, upTo time.Time) error
}

type notificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// UnreadCounts lists every peer the user has exchanged messages with; peers
// whose messages are all seen report a zero count rather than disappearing.
func (s *notificationService) UnreadCounts(ctx context.Context, userID uint64) (map[uint64]PeerUnread, error) {
	var peers []PeerRow
	var unread []UnreadRow

	err := common.Retry(ctx, readRetries, readRetryDelay, func() error {
		var innerErr error
		if peers, innerErr = s.repo.Peers(ctx, userID); innerErr != nil {
			return common.Transient(innerErr)
		}
		if unread, innerErr = s.repo.UnreadCounts(ctx, userID); innerErr != nil {
			return common.Transient(innerErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[uint64]int64, len(unread))
	for _, row := range unread {
		counts[row.PeerID] = row.Count
	}

	result := make(map[uint64]PeerUnread, len(peers))
	for _, peer := range peers {
		result[peer.PeerID] = PeerUnread{
			PeerName: peer.PeerName,
			Count:    counts[peer.PeerID],
		}
	}
	return result, nil
}

// MarkSeen advances the watermark; messages at or before upTo stop counting.
// Called when the user opens the conversation.
func (s *notificationService) MarkSeen(ctx context.Context, userID, peerID uint64, upTo time.Time) error {
	ve := common.NewValidationError()
	if peerID == 0 {
		ve.Add("peer_id", "peer id is required")
	}
	if upTo.IsZero() {
		ve.Add("seen_until", "seen_until is required")
	}
	if ve.HasErrors() {
		return ve
	}

	if err := s.repo.SetWatermark(ctx, userID, peerID, upTo); err != nil {
		return common.Transient(err)
	}
	return nil
}
