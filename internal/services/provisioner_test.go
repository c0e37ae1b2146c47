package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/mocks"
	"chat-pipeline/internal/models"
)

func newProvisioner(users *mocks.UserRepositoryMock, rooms *mocks.RoomRepositoryMock, members *mocks.MemberRepositoryMock) *Provisioner {
	return NewProvisioner(users, rooms, members, zap.NewNop())
}

func TestPrivateRoomIDOrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"alice@example.com", "bob@example.com"},
		{"Zed@Example.com", "ann@example.com"},
		{"user+tag@mail.io", "other_user@mail.io"},
	}
	for _, p := range pairs {
		require.Equal(t, PrivateRoomID(p[0], p[1]), PrivateRoomID(p[1], p[0]))
	}
}

func TestPrivateRoomIDDistinctPairsDiffer(t *testing.T) {
	idAB := PrivateRoomID("alice@example.com", "bob@example.com")
	idAC := PrivateRoomID("alice@example.com", "carol@example.com")
	require.NotEqual(t, idAB, idAC)
}

func TestPrivateRoomIDSanitizes(t *testing.T) {
	id := PrivateRoomID("A lice@Example.com", "bob@example.com")
	require.Equal(t, "a-lice@example.com#bob@example.com", id)
}

func TestCreatePrivateRoomCreatesRoomAndBothMemberships(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	p := newProvisioner(users, rooms, members)

	roomID := PrivateRoomID("alice@example.com", "bob@example.com")
	users.On("ListUsers", mock.Anything, []string{"alice@example.com", "bob@example.com"}).Return([]models.User{
		{Email: "alice@example.com", Nickname: "alice"},
		{Email: "bob@example.com", Nickname: "bob"},
	}, nil).Once()
	rooms.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(room models.ChatRoom) bool {
		return room.ID == roomID && room.Type == models.RoomTypePrivate
	})).Return(models.ChatRoom{ID: roomID, Type: models.RoomTypePrivate}, true, nil).Once()
	members.On("CreateMember", mock.Anything, mock.MatchedBy(func(m models.ChatRoomMember) bool {
		return m.ChatRoomID == roomID && m.Role == models.RoleMember
	})).Return(nil).Twice()

	room, err := p.CreatePrivateRoom(context.Background(), "alice@example.com", "bob@example.com", "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, roomID, room.ID)

	users.AssertExpectations(t)
	rooms.AssertExpectations(t)
	members.AssertExpectations(t)
}

// A second create for the same pair loses the conditional insert and gets the
// stored room back; memberships are re-asserted as read-repair.
func TestCreatePrivateRoomIdempotent(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	p := newProvisioner(users, rooms, members)

	roomID := PrivateRoomID("alice@example.com", "bob@example.com")
	existing := models.ChatRoom{ID: roomID, Type: models.RoomTypePrivate}

	users.On("ListUsers", mock.Anything, mock.Anything).Return([]models.User{
		{Email: "alice@example.com", Nickname: "alice"},
		{Email: "bob@example.com", Nickname: "bob"},
	}, nil).Once()
	rooms.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(existing, false, nil).Once()
	members.On("CreateMember", mock.Anything, mock.Anything).Return(nil).Twice()

	room, err := p.CreatePrivateRoom(context.Background(), "bob@example.com", "alice@example.com", "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, roomID, room.ID)
}

func TestCreatePrivateRoomSelfChat(t *testing.T) {
	p := newProvisioner(new(mocks.UserRepositoryMock), new(mocks.RoomRepositoryMock), new(mocks.MemberRepositoryMock))

	_, err := p.CreatePrivateRoom(context.Background(), "alice@example.com", "alice@example.com", "alice", "alice")
	require.True(t, chaterr.IsValidation(err))
}

func TestCreatePrivateRoomUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	p := newProvisioner(users, rooms, new(mocks.MemberRepositoryMock))

	users.On("ListUsers", mock.Anything, mock.Anything).Return([]models.User{
		{Email: "alice@example.com", Nickname: "alice"},
	}, nil).Once()

	_, err := p.CreatePrivateRoom(context.Background(), "alice@example.com", "ghost@example.com", "alice", "ghost")
	var notFound *chaterr.UserNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"ghost@example.com"}, notFound.Missing)
	rooms.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestCreateGroupRoomAssignsRoles(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	p := newProvisioner(users, rooms, members)

	users.On("ListUsers", mock.Anything, []string{"carol@example.com", "dan@example.com"}).Return([]models.User{
		{Email: "carol@example.com", Nickname: "carol"},
		{Email: "dan@example.com", Nickname: "dan"},
	}, nil).Once()
	rooms.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(room models.ChatRoom) bool {
		return room.Type == models.RoomTypeGroup && room.Name == "Team"
	})).Return(models.ChatRoom{ID: "g1", Name: "Team", Type: models.RoomTypeGroup}, true, nil).Once()
	members.On("CreateMember", mock.Anything, mock.MatchedBy(func(m models.ChatRoomMember) bool {
		return m.UserID == "carol@example.com" && m.Role == models.RoleAdmin
	})).Return(nil).Once()
	members.On("CreateMember", mock.Anything, mock.MatchedBy(func(m models.ChatRoomMember) bool {
		return m.UserID == "dan@example.com" && m.Role == models.RoleMember
	})).Return(nil).Once()

	room, err := p.CreateGroupRoom(context.Background(), CreateGroupInput{
		Name:            "Team",
		CreatorID:       "carol@example.com",
		CreatorNickname: "carol",
		MemberIDs:       []string{"dan@example.com", "carol@example.com", "dan@example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, "g1", room.ID)
	members.AssertExpectations(t)
}

// 51 distinct participants (creator included) must fail before any write.
func TestCreateGroupRoomTooManyMembers(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	p := newProvisioner(users, rooms, members)

	memberIDs := make([]string, 50)
	for i := range memberIDs {
		memberIDs[i] = "user" + string(rune('a'+i%26)) + string(rune('0'+i/26)) + "@example.com"
	}

	_, err := p.CreateGroupRoom(context.Background(), CreateGroupInput{
		Name:            "Big",
		CreatorID:       "creator@example.com",
		CreatorNickname: "creator",
		MemberIDs:       memberIDs,
	})
	var tooMany *chaterr.TooManyMembersError
	require.ErrorAs(t, err, &tooMany)
	require.Equal(t, 51, tooMany.Count)
	users.AssertNotCalled(t, "ListUsers", mock.Anything, mock.Anything)
	rooms.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	members.AssertNotCalled(t, "CreateMember", mock.Anything, mock.Anything)
}

func TestCreateGroupRoomMissingMemberAbortsBeforeWrites(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	p := newProvisioner(users, rooms, members)

	users.On("ListUsers", mock.Anything, []string{"c@example.com", "m1@example.com", "m2@example.com"}).Return([]models.User{
		{Email: "c@example.com", Nickname: "c"},
		{Email: "m1@example.com", Nickname: "m1"},
	}, nil).Once()

	_, err := p.CreateGroupRoom(context.Background(), CreateGroupInput{
		Name:            "Team",
		CreatorID:       "c@example.com",
		CreatorNickname: "c",
		MemberIDs:       []string{"m1@example.com", "m2@example.com"},
	})
	var notFound *chaterr.UserNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"m2@example.com"}, notFound.Missing)
	rooms.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	members.AssertNotCalled(t, "CreateMember", mock.Anything, mock.Anything)
}

func TestCreateGroupRoomNameLength(t *testing.T) {
	p := newProvisioner(new(mocks.UserRepositoryMock), new(mocks.RoomRepositoryMock), new(mocks.MemberRepositoryMock))

	for _, name := range []string{"", "   ", strings.Repeat("x", 51), strings.Repeat("ü", 51)} {
		_, err := p.CreateGroupRoom(context.Background(), CreateGroupInput{
			Name:            name,
			CreatorID:       "c@example.com",
			CreatorNickname: "c",
		})
		require.Error(t, err)
	}
}

// The limit counts characters, not bytes: a 50-rune multibyte name is valid.
func TestCreateGroupRoomNameLengthCountsRunes(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	rooms := new(mocks.RoomRepositoryMock)
	members := new(mocks.MemberRepositoryMock)
	p := newProvisioner(users, rooms, members)

	name := strings.Repeat("ü", 50)
	users.On("ListUsers", mock.Anything, []string{"c@example.com"}).
		Return([]models.User{{Email: "c@example.com", Nickname: "c"}}, nil).Once()
	rooms.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(room models.ChatRoom) bool {
		return room.Name == name
	})).Return(models.ChatRoom{ID: "g-1", Name: name, Type: models.RoomTypeGroup}, true, nil).Once()
	members.On("CreateMember", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := p.CreateGroupRoom(context.Background(), CreateGroupInput{
		Name:            name,
		CreatorID:       "c@example.com",
		CreatorNickname: "c",
	})
	require.NoError(t, err)
	rooms.AssertExpectations(t)
}
