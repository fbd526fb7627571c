package presence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PoofyPloop/chatapp/internal/dbmysql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RosterFilter narrows ListOnline results. Zero values disable a criterion.
type RosterFilter struct {
	Search      string
	MinAge      int
	MaxAge      int
	CountryCode string
}

type UserRepository interface {
	Upsert(ctx context.Context, user *dbmysql.User) (*dbmysql.User, error)
	GetByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
	Touch(ctx context.Context, userID uint64, now time.Time) error
	SetStatus(ctx context.Context, userID uint64, status string) error
	ListOnline(ctx context.Context, filter RosterFilter) ([]*dbmysql.User, error)
	StaleOnline(ctx context.Context, cutoff time.Time) ([]*dbmysql.User, error)
	StaleOffline(ctx context.Context, cutoff time.Time) ([]*dbmysql.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert creates or refreshes the row keyed by username. A sign-in while the
// same username is already online reuses that row: profile fields, status and
// last_seen are updated in place and the stable user_id is preserved.
func (r *userRepository) Upsert(ctx context.Context, user *dbmysql.User) (*dbmysql.User, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"age", "gender", "country", "status", "last_seen"}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	// Resolve the surviving row; on the duplicate path the autoincrement id
	// in `user` is not the stored one.
	var out dbmysql.User
	if err := r.db.WithContext(ctx).Where("username = ?", user.Username).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Touch(ctx context.Context, userID uint64, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("user_id = ?", userID).
		Update("last_seen", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SetStatus(ctx context.Context, userID uint64, status string) error {
	return r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("user_id = ?", userID).
		Update("status", status).Error
}

func (r *userRepository) ListOnline(ctx context.Context, filter RosterFilter) ([]*dbmysql.User, error) {
	q := r.db.WithContext(ctx).Where("status = ?", "online")

	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.MinAge > 0 {
		q = q.Where("age >= ?", filter.MinAge)
	}
	if filter.MaxAge > 0 {
		q = q.Where("age <= ?", filter.MaxAge)
	}

	var users []*dbmysql.User
	err := q.Order("user_id").Find(&users).Error
	return users, err
}

func (r *userRepository) StaleOnline(ctx context.Context, cutoff time.Time) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	err := r.db.WithContext(ctx).
		Where("status = ? AND last_seen < ?", "online", cutoff).
		Find(&users).Error
	return users, err
}

// StaleOffline returns users whose offline transition is older than cutoff.
// The status write is the row's last update, so updated_at records when the
// user went offline; measuring retention from it means idling past the
// inactivity threshold alone never deletes anyone in the same sweep.
func (r *userRepository) StaleOffline(ctx context.Context, cutoff time.Time) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", "offline", cutoff).
		Find(&users).Error
	return users, err
}

// IsNotFoundErr reports whether err is the store's missing-row error.
func IsNotFoundErr(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
