package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-pipeline/internal/cache"
	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/observability"
	"chat-pipeline/internal/repositories"
)

// ReadTracker owns read positions and unread counts. It is the only writer of
// a member's read position.
type ReadTracker struct {
	members  repositories.MemberRepository
	messages repositories.MessageRepository
	rooms    repositories.RoomRepository
	statuses repositories.ReadStatusRepository
	unread   *cache.UnreadCache
	log      *zap.Logger
}

// NewReadTracker constructs a ReadTracker.
func NewReadTracker(members repositories.MemberRepository, messages repositories.MessageRepository, rooms repositories.RoomRepository, statuses repositories.ReadStatusRepository, unread *cache.UnreadCache, log *zap.Logger) *ReadTracker {
	return &ReadTracker{
		members:  members,
		messages: messages,
		rooms:    rooms,
		statuses: statuses,
		unread:   unread,
		log:      log,
	}
}

// MarkRead advances the caller's read position in a room. For group rooms it
// also drops a per-message read receipt when a message id is given.
func (t *ReadTracker) MarkRead(ctx context.Context, roomID, userID string, lastMessageID *string) (models.ChatRoomMember, error) {
	if strings.TrimSpace(roomID) == "" {
		return models.ChatRoomMember{}, chaterr.Validation("roomId", "must not be empty")
	}
	if strings.TrimSpace(userID) == "" {
		return models.ChatRoomMember{}, chaterr.Validation("userId", "must not be empty")
	}

	now := time.Now().UTC()
	member, err := t.members.UpdateReadPosition(ctx, roomID, userID, lastMessageID, now)
	if err != nil {
		return models.ChatRoomMember{}, err
	}

	if lastMessageID != nil && *lastMessageID != "" {
		t.recordReceipt(ctx, roomID, userID, *lastMessageID, now)
	}

	t.unread.InvalidateRoom(ctx, roomID, userID)
	return member, nil
}

// recordReceipt inserts the group-room read receipt. Receipts are a trail,
// not an input to unread counts, so failures only log.
func (t *ReadTracker) recordReceipt(ctx context.Context, roomID, userID, messageID string, now time.Time) {
	room, err := t.rooms.GetRoom(ctx, roomID)
	if err != nil || room.Type != models.RoomTypeGroup {
		return
	}
	err = t.statuses.InsertOnce(ctx, models.MessageReadStatus{
		ID:        uuid.NewString(),
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    now,
	})
	if err != nil {
		t.log.Warn("read receipt insert failed",
			zap.String("message_id", messageID), zap.String("user_id", userID), zap.Error(err))
	}
}

// GetUnreadCounts returns the unread count per room for the user. With no
// explicit room list, every room the user belongs to is counted. A failure in
// one room yields a zero count for that room, never a failed response. Own
// messages are never counted.
func (t *ReadTracker) GetUnreadCounts(ctx context.Context, userID string, roomIDs []string) (map[string]int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, chaterr.Validation("userId", "must not be empty")
	}

	if len(roomIDs) == 0 {
		var err error
		roomIDs, err = t.members.ListRoomIDsForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	counts := make(map[string]int, len(roomIDs))
	for _, roomID := range roomIDs {
		if count, ok := t.unread.GetCount(ctx, userID, roomID); ok {
			observability.IncUnreadCache(true)
			counts[roomID] = count
			continue
		}
		observability.IncUnreadCache(false)

		count, err := t.countRoom(ctx, roomID, userID)
		if err != nil {
			t.log.Warn("unread count failed, reporting zero",
				zap.String("room_id", roomID), zap.String("user_id", userID), zap.Error(err))
			counts[roomID] = 0
			continue
		}
		counts[roomID] = count
		t.unread.SetCount(ctx, userID, roomID, count)
	}
	return counts, nil
}

func (t *ReadTracker) countRoom(ctx context.Context, roomID, userID string) (int, error) {
	member, err := t.members.GetMembership(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}

	var since *time.Time
	if member.LastReadAt.Valid {
		since = &member.LastReadAt.Time
	}
	return t.messages.CountUnread(ctx, roomID, userID, since)
}
