package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chat-pipeline/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, email, nickname, avatar, description string) (models.User, error) {
	args := m.Called(ctx, email, nickname, avatar, description)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context, emails []string) ([]models.User, error) {
	args := m.Called(ctx, emails)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateIfAbsent(ctx context.Context, room models.ChatRoom) (models.ChatRoom, bool, error) {
	args := m.Called(ctx, room)
	var created models.ChatRoom
	if val := args.Get(0); val != nil {
		created = val.(models.ChatRoom)
	}
	return created, args.Bool(1), args.Error(2)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID string) (models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) UpdatePreview(ctx context.Context, roomID, content string, at time.Time) error {
	args := m.Called(ctx, roomID, content, at)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	args := m.Called(ctx, userID)
	var rooms []models.ChatRoom
	if val := args.Get(0); val != nil {
		rooms = val.([]models.ChatRoom)
	}
	return rooms, args.Error(1)
}

type MemberRepositoryMock struct {
	mock.Mock
}

func (m *MemberRepositoryMock) CreateMember(ctx context.Context, member models.ChatRoomMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MemberRepositoryMock) GetMembership(ctx context.Context, roomID, userID string) (models.ChatRoomMember, error) {
	args := m.Called(ctx, roomID, userID)
	var member models.ChatRoomMember
	if val := args.Get(0); val != nil {
		member = val.(models.ChatRoomMember)
	}
	return member, args.Error(1)
}

func (m *MemberRepositoryMock) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MemberRepositoryMock) UpdateReadPosition(ctx context.Context, roomID, userID string, lastMessageID *string, at time.Time) (models.ChatRoomMember, error) {
	args := m.Called(ctx, roomID, userID, lastMessageID, at)
	var member models.ChatRoomMember
	if val := args.Get(0); val != nil {
		member = val.(models.ChatRoomMember)
	}
	return member, args.Error(1)
}

func (m *MemberRepositoryMock) ListRoomIDsForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var roomIDs []string
	if val := args.Get(0); val != nil {
		roomIDs = val.([]string)
	}
	return roomIDs, args.Error(1)
}

func (m *MemberRepositoryMock) ListMembers(ctx context.Context, roomID string) ([]models.ChatRoomMember, error) {
	args := m.Called(ctx, roomID)
	var members []models.ChatRoomMember
	if val := args.Get(0); val != nil {
		members = val.([]models.ChatRoomMember)
	}
	return members, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) InsertIfAbsent(ctx context.Context, msg models.Message) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, roomID, userID string, since *time.Time) (int, error) {
	args := m.Called(ctx, roomID, userID, since)
	return args.Int(0), args.Error(1)
}

type ReadStatusRepositoryMock struct {
	mock.Mock
}

func (m *ReadStatusRepositoryMock) InsertOnce(ctx context.Context, status models.MessageReadStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}
