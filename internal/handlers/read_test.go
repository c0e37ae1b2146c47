package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-pipeline/internal/cache"
	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/mocks"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/services"
)

type readFixture struct {
	members  *mocks.MemberRepositoryMock
	messages *mocks.MessageRepositoryMock
	rooms    *mocks.RoomRepositoryMock
	statuses *mocks.ReadStatusRepositoryMock
	router   *gin.Engine
}

func setupReadRouter() *readFixture {
	gin.SetMode(gin.TestMode)
	f := &readFixture{
		members:  new(mocks.MemberRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		rooms:    new(mocks.RoomRepositoryMock),
		statuses: new(mocks.ReadStatusRepositoryMock),
	}
	tracker := services.NewReadTracker(f.members, f.messages, f.rooms, f.statuses, cache.NewUnreadCache(nil, 0), zap.NewNop())
	handler := NewReadHandler(tracker)

	r := gin.New()
	r.POST("/rooms/:room_id/read", handler.MarkRead)
	r.GET("/unread", handler.GetUnreadCounts)
	f.router = r
	return f
}

func TestMarkReadSuccess(t *testing.T) {
	f := setupReadRouter()

	f.members.On("UpdateReadPosition", mock.Anything, "room-1", "y@example.com", (*string)(nil), mock.Anything).
		Return(models.ChatRoomMember{ChatRoomID: "room-1", UserID: "y@example.com"}, nil).Once()

	body := bytes.NewBufferString(`{"user_id":"y@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/read", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ChatRoomMember
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "room-1", resp.ChatRoomID)
	f.members.AssertExpectations(t)
}

func TestMarkReadMembershipMissing(t *testing.T) {
	f := setupReadRouter()

	f.members.On("UpdateReadPosition", mock.Anything, "room-1", "stranger@example.com", (*string)(nil), mock.Anything).
		Return(models.ChatRoomMember{}, chaterr.ErrMembershipNotFound).Once()

	body := bytes.NewBufferString(`{"user_id":"stranger@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/read", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkReadMissingUserID(t *testing.T) {
	f := setupReadRouter()

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/read", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.members.AssertNotCalled(t, "UpdateReadPosition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUnreadCountsSuccess(t *testing.T) {
	f := setupReadRouter()

	f.members.On("GetMembership", mock.Anything, "r1", "y@example.com").
		Return(models.ChatRoomMember{ChatRoomID: "r1"}, nil).Once()
	f.messages.On("CountUnread", mock.Anything, "r1", "y@example.com", (*time.Time)(nil)).Return(5, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/unread?user_id=y@example.com&room_ids=r1", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, map[string]int{"r1": 5}, resp.Counts)
}

func TestGetUnreadCountsMissingUserID(t *testing.T) {
	f := setupReadRouter()

	req := httptest.NewRequest(http.MethodGet, "/unread", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
