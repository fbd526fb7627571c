package presence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/dbmysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPresenceService struct {
	mock.Mock
}

func (m *MockPresenceService) SignIn(ctx context.Context, req SignInRequest) (*dbmysql.User, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*dbmysql.User), args.String(1), args.Error(2)
}

func (m *MockPresenceService) Heartbeat(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockPresenceService) SignOut(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockPresenceService) ListOnline(ctx context.Context, filter RosterFilter) ([]common.UserInfo, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.UserInfo), args.Error(1)
}

func authed(r *http.Request, userID uint64) *http.Request {
	ctx := context.WithValue(r.Context(), common.ContextUserID, userID)
	return r.WithContext(ctx)
}

func TestHandler_SignIn(t *testing.T) {
	t.Run("returns the profile and token", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		svc.On("SignIn", mock.Anything, SignInRequest{
			Username: "alice", Age: 25, Gender: "female", Country: "Germany",
		}).Return(&dbmysql.User{
			UserID: 1, Username: "alice", Age: 25, Gender: "female",
			Country: "Germany", Status: "online", LastSeen: time.Now().UTC(),
		}, "token-123", nil).Once()

		body := `{"username":"alice","age":25,"gender":"female","country":"Germany"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.SignIn(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp signInResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "token-123", resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "de", resp.User.CountryCode)
	})

	t.Run("validation failure reports every field", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		ve := common.NewValidationError()
		ve.Add("username", "Username cannot be empty")
		ve.Add("age", "Please enter a valid age (18 - 60)")
		svc.On("SignIn", mock.Anything, mock.Anything).Return(nil, "", ve).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.SignIn(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Fields, 2)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		handler.SignIn(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "SignIn")
	})
}

func TestHandler_Heartbeat(t *testing.T) {
	t.Run("no content on success", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		svc.On("Heartbeat", mock.Anything, uint64(1)).Return(nil).Once()

		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/presence/heartbeat", nil), 1)
		rec := httptest.NewRecorder()

		handler.Heartbeat(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/presence/heartbeat", nil)
		rec := httptest.NewRecorder()

		handler.Heartbeat(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "Heartbeat")
	})

	t.Run("reaped user maps to not found", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		svc.On("Heartbeat", mock.Anything, uint64(9)).
			Return(common.NewNotFoundError("user", 9)).Once()

		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/presence/heartbeat", nil), 9)
		rec := httptest.NewRecorder()

		handler.Heartbeat(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_ListOnline(t *testing.T) {
	t.Run("parses every filter parameter", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		svc.On("ListOnline", mock.Anything, RosterFilter{
			Search: "ali", MinAge: 20, MaxAge: 40, CountryCode: "de",
		}).Return([]common.UserInfo{
			{ID: 1, Username: "alice", CountryCode: "de", Status: common.StatusOnline},
		}, nil).Once()

		req := authed(httptest.NewRequest(http.MethodGet,
			"/api/v1/presence/online?search=ali&min_age=20&max_age=40&country=de", nil), 1)
		rec := httptest.NewRecorder()

		handler.ListOnline(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Users []common.UserInfo `json:"users"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Users, 1)
		assert.Equal(t, "alice", resp.Users[0].Username)
	})

	t.Run("ignores unparseable age bounds", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		svc.On("ListOnline", mock.Anything, RosterFilter{}).
			Return([]common.UserInfo{}, nil).Once()

		req := authed(httptest.NewRequest(http.MethodGet,
			"/api/v1/presence/online?min_age=abc", nil), 1)
		rec := httptest.NewRecorder()

		handler.ListOnline(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("transient storage failure maps to service unavailable", func(t *testing.T) {
		svc := new(MockPresenceService)
		handler := NewHandler(svc)

		svc.On("ListOnline", mock.Anything, RosterFilter{}).
			Return(nil, common.Transient(errors.New("down"))).Once()

		req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/presence/online", nil), 1)
		rec := httptest.NewRecorder()

		handler.ListOnline(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
