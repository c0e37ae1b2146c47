package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-pipeline/internal/mocks"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/services"
)

type messageFixture struct {
	members  *mocks.MemberRepositoryMock
	messages *mocks.MessageRepositoryMock
	delivery *mocks.DeliveryStrategyMock
	router   *gin.Engine
}

func setupMessageRouter() *messageFixture {
	gin.SetMode(gin.TestMode)
	f := &messageFixture{
		members:  new(mocks.MemberRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		delivery: new(mocks.DeliveryStrategyMock),
	}
	ingest := services.NewIngestService(f.members, f.delivery, zap.NewNop())
	handler := NewMessageHandler(ingest, f.members, f.messages)

	r := gin.New()
	r.POST("/rooms/:room_id/messages", handler.SendMessage)
	r.GET("/rooms/:room_id/messages", handler.GetMessages)
	f.router = r
	return f
}

func TestSendMessageAccepted(t *testing.T) {
	f := setupMessageRouter()

	f.members.On("IsMember", mock.Anything, "room-1", "y@example.com").Return(true, nil).Once()
	f.delivery.On("Deliver", mock.Anything, mock.MatchedBy(func(job models.DeliveryJob) bool {
		return job.RoomID == "room-1" && job.Content == "hello" && job.MessageID != ""
	})).Return(nil).Once()

	body := bytes.NewBufferString(`{"content":"hello","sender_id":"y@example.com","sender_nickname":"y"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/messages", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "hello", resp.Content)
	require.NotEmpty(t, resp.ID)
	f.delivery.AssertExpectations(t)
}

func TestSendMessageNotAMember(t *testing.T) {
	f := setupMessageRouter()

	f.members.On("IsMember", mock.Anything, "room-1", "outsider@example.com").Return(false, nil).Once()

	body := bytes.NewBufferString(`{"content":"hello","sender_id":"outsider@example.com","sender_nickname":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/messages", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.delivery.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestSendMessageMissingContent(t *testing.T) {
	f := setupMessageRouter()

	body := bytes.NewBufferString(`{"sender_id":"y@example.com","sender_nickname":"y"}`)
	req := httptest.NewRequest(http.MethodPost, "/rooms/room-1/messages", body)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.members.AssertNotCalled(t, "IsMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMessagesSuccess(t *testing.T) {
	f := setupMessageRouter()

	f.members.On("IsMember", mock.Anything, "room-1", "y@example.com").Return(true, nil).Once()
	f.messages.On("ListRoomMessages", mock.Anything, "room-1").
		Return([]models.Message{{ID: "m1", Content: "hi"}, {ID: "m2", Content: "there"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/room-1/messages?user_id=y@example.com", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
}

func TestGetMessagesForbiddenForNonMember(t *testing.T) {
	f := setupMessageRouter()

	f.members.On("IsMember", mock.Anything, "room-1", "outsider@example.com").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/room-1/messages?user_id=outsider@example.com", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.messages.AssertNotCalled(t, "ListRoomMessages", mock.Anything, mock.Anything)
}

func TestGetMessagesMissingUserID(t *testing.T) {
	f := setupMessageRouter()

	req := httptest.NewRequest(http.MethodGet, "/rooms/room-1/messages", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
