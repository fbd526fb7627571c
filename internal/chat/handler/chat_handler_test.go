package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/dbmysql"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(ctx context.Context, senderID, receiverID uint64, body string) (*dbmysql.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.Message), args.Error(1)
}

func (m *MockChatService) GetHistory(ctx context.Context, userA, userB uint64, since time.Time) ([]*dbmysql.Message, error) {
	args := m.Called(ctx, userA, userB, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dbmysql.Message), args.Error(1)
}

func (m *MockChatService) DeleteForUser(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func authed(r *http.Request, userID uint64) *http.Request {
	ctx := context.WithValue(r.Context(), common.ContextUserID, userID)
	return r.WithContext(ctx)
}

func TestChatHandler_SendMessage(t *testing.T) {
	t.Run("created with the stored message", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		stored := &dbmysql.Message{ID: 10, ConvKey: "1:2", Seq: 3, SenderID: 1, ReceiverID: 2, Body: "hello"}
		svc.On("SendMessage", mock.Anything, uint64(1), uint64(2), "hello").
			Return(stored, nil).Once()

		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/messages",
			strings.NewReader(`{"receiver_id":2,"body":"hello"}`)), 1)
		rec := httptest.NewRecorder()

		h.SendMessage(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Message dbmysql.Message `json:"message"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, uint64(3), resp.Message.Seq)
	})

	t.Run("missing receiver maps to not found", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		svc.On("SendMessage", mock.Anything, uint64(1), uint64(9), "hi").
			Return(nil, common.NewNotFoundError("user", 9)).Once()

		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/messages",
			strings.NewReader(`{"receiver_id":9,"body":"hi"}`)), 1)
		rec := httptest.NewRecorder()

		h.SendMessage(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages",
			strings.NewReader(`{"receiver_id":2,"body":"hi"}`))
		rec := httptest.NewRecorder()

		h.SendMessage(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "SendMessage")
	})
}

func TestChatHandler_GetHistory(t *testing.T) {
	newRouter := func(h *ChatHandler) *mux.Router {
		r := mux.NewRouter()
		r.HandleFunc("/api/v1/messages/{peerID}", h.GetHistory).Methods(http.MethodGet)
		return r
	}

	t.Run("returns the conversation", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		svc.On("GetHistory", mock.Anything, uint64(1), uint64(2), time.Time{}).
			Return([]*dbmysql.Message{
				{ID: 1, Seq: 1, Body: "a"},
				{ID: 2, Seq: 2, Body: "b"},
			}, nil).Once()

		req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/messages/2", nil), 1)
		rec := httptest.NewRecorder()

		newRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Messages []dbmysql.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Messages, 2)
	})

	t.Run("since parameter narrows the window", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		svc.On("GetHistory", mock.Anything, uint64(1), uint64(2), since).
			Return([]*dbmysql.Message{}, nil).Once()

		req := authed(httptest.NewRequest(http.MethodGet,
			"/api/v1/messages/2?since=2025-06-01T12:00:00Z", nil), 1)
		rec := httptest.NewRecorder()

		newRouter(h).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed since is a bad request", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		req := authed(httptest.NewRequest(http.MethodGet,
			"/api/v1/messages/2?since=yesterday", nil), 1)
		rec := httptest.NewRecorder()

		newRouter(h).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetHistory")
	})

	t.Run("non-numeric peer id is a bad request", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/messages/bob", nil), 1)
		rec := httptest.NewRecorder()

		newRouter(h).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
