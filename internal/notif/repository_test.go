package notif

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestNotificationRepository_Peers(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT u.user_id AS peer_id, u.username AS peer_name").
		WithArgs(1, 1).
		WillReturnRows(mock.NewRows([]string{"peer_id", "peer_name"}).
			AddRow(2, "bob").
			AddRow(3, "carol"))

	repo := NewNotificationRepository(gormDB)
	rows, err := repo.Peers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, PeerRow{PeerID: 2, PeerName: "bob"}, rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_UnreadCounts(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT m.sender_id AS peer_id, COUNT\\(\\*\\) AS unread").
		WithArgs(1).
		WillReturnRows(mock.NewRows([]string{"peer_id", "unread"}).
			AddRow(3, 4))

	repo := NewNotificationRepository(gormDB)
	rows, err := repo.UnreadCounts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, UnreadRow{PeerID: 3, Count: 4}, rows[0])
}

func TestNotificationRepository_SetWatermark(t *testing.T) {
	t.Run("upserts the mark", func(t *testing.T) {
		gormDB, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `watermarks`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewNotificationRepository(gormDB)
		err := repo.SetWatermark(context.Background(), 1, 2, time.Now().UTC())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates write failure", func(t *testing.T) {
		gormDB, mock, cleanup := setupTestDB(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `watermarks`").WillReturnError(assert.AnError)
		mock.ExpectRollback()

		repo := NewNotificationRepository(gormDB)
		err := repo.SetWatermark(context.Background(), 1, 2, time.Now().UTC())
		assert.Error(t, err)
	})
}
