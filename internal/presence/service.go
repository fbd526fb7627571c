package presence

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/config"
	"github.com/PoofyPloop/chatapp/internal/dbmysql"
)

const (
	readRetries    = 3
	readRetryDelay = 100 * time.Millisecond
)

// SignInRequest carries the client-supplied profile fields.
type SignInRequest struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Country  string `json:"country"`
}

// PresenceService defines the interface exposed to the handler layer
type PresenceService interface {
	SignIn(ctx context.Context, req SignInRequest) (*dbmysql.User, string, error)
	Heartbeat(ctx context.Context, userID uint64) error
	SignOut(ctx context.Context, userID uint64) error
	ListOnline(ctx context.Context, filter RosterFilter) ([]common.UserInfo, error)
}

type presenceService struct {
	repo      UserRepository
	publisher common.Publisher
	cfg       *config.Config
}

func NewPresenceService(repo UserRepository, publisher common.Publisher, cfg *config.Config) PresenceService {
	return &presenceService{repo: repo, publisher: publisher, cfg: cfg}
}

// SignIn validates every profile field, upserts the user keyed on username
// and returns the resolved row together with a fresh session token.
func (s *presenceService) SignIn(ctx context.Context, req SignInRequest) (*dbmysql.User, string, error) {
	if err := common.ValidateProfile(req.Username, req.Age, req.Gender, req.Country); err != nil {
		return nil, "", err
	}

	user := &dbmysql.User{
		Username: strings.TrimSpace(req.Username),
		Age:      req.Age,
		Gender:   strings.ToLower(strings.TrimSpace(req.Gender)),
		Country:  strings.TrimSpace(req.Country),
		Status:   string(common.StatusOnline),
		LastSeen: time.Now().UTC(),
	}

	resolved, err := s.repo.Upsert(ctx, user)
	if err != nil {
		return nil, "", common.Transient(err)
	}

	token, err := common.GenerateToken(resolved.UserID, resolved.Username, s.cfg.Presence.SessionTTL)
	if err != nil {
		return nil, "", err
	}

	s.publisher.PublishRoster(common.RosterEvent{
		Type: common.UserOnlineEvent,
		User: toUserInfo(resolved),
	})

	return resolved, token, nil
}

// Heartbeat refreshes last_seen. Called on any user interaction.
func (s *presenceService) Heartbeat(ctx context.Context, userID uint64) error {
	if err := s.repo.Touch(ctx, userID, time.Now().UTC()); err != nil {
		if IsNotFoundErr(err) {
			return common.NewNotFoundError("user", userID)
		}
		return common.Transient(err)
	}
	return nil
}

// SignOut flips the user offline. Idempotent: a second call, or a call for a
// user the reaper already removed, succeeds without effect.
func (s *presenceService) SignOut(ctx context.Context, userID uint64) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if IsNotFoundErr(err) {
			return nil
		}
		return common.Transient(err)
	}

	if user.Status == string(common.StatusOffline) {
		return nil
	}

	if err := s.repo.SetStatus(ctx, userID, string(common.StatusOffline)); err != nil {
		return common.Transient(err)
	}

	user.Status = string(common.StatusOffline)
	s.publisher.PublishRoster(common.RosterEvent{
		Type: common.UserOfflineEvent,
		User: toUserInfo(user),
	})

	log.Printf("user %d (%s) signed out", user.UserID, user.Username)
	return nil
}

// ListOnline returns the online roster matching every provided filter.
// The country filter compares ISO codes, so it is applied after mapping the
// stored country names.
func (s *presenceService) ListOnline(ctx context.Context, filter RosterFilter) ([]common.UserInfo, error) {
	var users []*dbmysql.User
	err := common.Retry(ctx, readRetries, readRetryDelay, func() error {
		var innerErr error
		users, innerErr = s.repo.ListOnline(ctx, filter)
		if innerErr != nil {
			return common.Transient(innerErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	code := strings.ToLower(strings.TrimSpace(filter.CountryCode))
	result := make([]common.UserInfo, 0, len(users))
	for _, u := range users {
		if code != "" && code != "all" && CountryCode(u.Country) != code {
			continue
		}
		result = append(result, toUserInfo(u))
	}
	return result, nil
}

func toUserInfo(u *dbmysql.User) common.UserInfo {
	return common.UserInfo{
		ID:          u.UserID,
		Username:    u.Username,
		Age:         u.Age,
		Gender:      common.Gender(u.Gender),
		Country:     u.Country,
		CountryCode: CountryCode(u.Country),
		Status:      common.PresenceStatus(u.Status),
		LastSeen:    u.LastSeen,
	}
}
