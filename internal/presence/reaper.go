package presence

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/config"
)

// MessagePurger removes a reaped account together with its message history.
// It is satisfied by the chat service so the delete runs under its per-user
// append barrier, in one transaction with the message purge.
type MessagePurger interface {
	DeleteForUser(ctx context.Context, userID uint64) error
}

// Reaper periodically expires stale sessions in two independent stages:
// users idle past the inactivity threshold are marked offline, and users that
// have stayed offline past the retention window are deleted together with
// their messages. Idling alone never destroys history.
type Reaper struct {
	repo      UserRepository
	purger    MessagePurger
	publisher common.Publisher

	interval   time.Duration
	inactivity time.Duration
	retention  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReaper(repo UserRepository, purger MessagePurger, publisher common.Publisher, cfg *config.Config) *Reaper {
	return &Reaper{
		repo:       repo,
		purger:     purger,
		publisher:  publisher,
		interval:   cfg.Presence.ReapInterval,
		inactivity: cfg.Presence.InactivityThreshold,
		retention:  cfg.Presence.RetentionWindow,
	}
}

// Start launches the sweep loop. Stop cancels it and waits for the current
// sweep to finish.
func (r *Reaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Sweep(ctx, time.Now().UTC())
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Reaper) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	log.Println("reaper stopped")
}

// Sweep runs both stages once. Failures on one user never abort the sweep for
// the rest; errors are counted and reported in one summary line.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) {
	expired, deleted := 0, 0
	failures := 0

	stale, err := r.repo.StaleOnline(ctx, now.Add(-r.inactivity))
	if err != nil {
		log.Printf("reaper: stale-online scan failed: %v", err)
	} else {
		for _, user := range stale {
			if err := r.repo.SetStatus(ctx, user.UserID, string(common.StatusOffline)); err != nil {
				failures++
				continue
			}
			user.Status = string(common.StatusOffline)
			r.publisher.PublishRoster(common.RosterEvent{
				Type: common.UserOfflineEvent,
				User: toUserInfo(user),
			})
			expired++
		}
	}

	gone, err := r.repo.StaleOffline(ctx, now.Add(-r.retention))
	if err != nil {
		log.Printf("reaper: stale-offline scan failed: %v", err)
	} else {
		for _, user := range gone {
			if err := r.purger.DeleteForUser(ctx, user.UserID); err != nil {
				failures++
				continue
			}
			r.publisher.PublishRoster(common.RosterEvent{
				Type: common.UserRemovedEvent,
				User: toUserInfo(user),
			})
			deleted++
		}
	}

	if expired > 0 || deleted > 0 || failures > 0 {
		log.Printf("reaper sweep: %d expired, %d deleted, %d failures", expired, deleted, failures)
	}
}
