package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/repositories"
)

const (
	// MaxGroupMembers caps total membership of a group room, creator included.
	MaxGroupMembers = 50
	// MaxGroupNameLen caps the display name of a group room.
	MaxGroupNameLen = 50
)

// Provisioner creates chat rooms and their memberships.
type Provisioner struct {
	users   repositories.UserRepository
	rooms   repositories.RoomRepository
	members repositories.MemberRepository
	log     *zap.Logger
}

// NewProvisioner constructs a Provisioner.
func NewProvisioner(users repositories.UserRepository, rooms repositories.RoomRepository, members repositories.MemberRepository, log *zap.Logger) *Provisioner {
	return &Provisioner{users: users, rooms: rooms, members: members, log: log}
}

// PrivateRoomID derives the canonical room id for an unordered pair of user
// identities: lower-case, sort, sanitize, join. Both orders of the same pair
// produce the same id, which lets a conditional insert dedupe concurrent
// creation without a prior query.
func PrivateRoomID(userA, userB string) string {
	ids := []string{sanitizeKey(userA), sanitizeKey(userB)}
	sort.Strings(ids)
	return ids[0] + "#" + ids[1]
}

func sanitizeKey(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '@' || r == '.' || r == '_' || r == '-' || r == '+':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(id))
}

// CreatePrivateRoom resolves the 1:1 room for two users, creating it and both
// memberships on first call. Repeated and concurrent calls for the same pair
// converge on the same room.
func (p *Provisioner) CreatePrivateRoom(ctx context.Context, userA, userB, nickA, nickB string) (models.ChatRoom, error) {
	if strings.TrimSpace(userA) == "" || strings.TrimSpace(userB) == "" {
		return models.ChatRoom{}, chaterr.Validation("user", "both user identities are required")
	}
	if userA == userB {
		return models.ChatRoom{}, chaterr.Validation("user", "cannot create a chat with yourself")
	}

	found, err := p.users.ListUsers(ctx, []string{userA, userB})
	if err != nil {
		return models.ChatRoom{}, fmt.Errorf("resolve users: %w", err)
	}
	if missing := missingFrom([]string{userA, userB}, found); len(missing) > 0 {
		return models.ChatRoom{}, chaterr.UserNotFound(missing...)
	}

	room, created, err := p.rooms.CreateIfAbsent(ctx, models.ChatRoom{
		ID:   PrivateRoomID(userA, userB),
		Name: nickA + " & " + nickB,
		Type: models.RoomTypePrivate,
	})
	if err != nil {
		return models.ChatRoom{}, err
	}
	if !created && room.Type != models.RoomTypePrivate {
		return models.ChatRoom{}, fmt.Errorf("room id %s exists with type %s", room.ID, room.Type)
	}

	// Membership creation runs even when the room already existed: the inserts
	// are conditional, so this doubles as read-repair for a prior call that
	// died between room and membership writes.
	memberRows := make([]models.ChatRoomMember, 0, 2)
	for _, u := range found {
		memberRows = append(memberRows, newMember(room.ID, u.Email, u.Nickname, models.RoleMember))
	}
	if err := p.createMembers(ctx, memberRows); err != nil {
		return models.ChatRoom{}, err
	}

	if created {
		p.log.Info("private room provisioned", zap.String("room_id", room.ID))
	}
	return room, nil
}

// CreateGroupInput is the contract for group room creation.
type CreateGroupInput struct {
	Name            string
	Description     string
	CreatorID       string
	CreatorNickname string
	MemberIDs       []string
}

// CreateGroupRoom creates a group room and one membership per participant.
// All referenced users must exist before any write happens.
func (p *Provisioner) CreateGroupRoom(ctx context.Context, in CreateGroupInput) (models.ChatRoom, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxGroupNameLen {
		return models.ChatRoom{}, chaterr.Validation("name", fmt.Sprintf("must be 1-%d characters", MaxGroupNameLen))
	}
	if strings.TrimSpace(in.CreatorID) == "" {
		return models.ChatRoom{}, chaterr.Validation("creatorId", "must not be empty")
	}

	participants := dedupeWithCreator(in.CreatorID, in.MemberIDs)
	if len(participants) > MaxGroupMembers {
		return models.ChatRoom{}, &chaterr.TooManyMembersError{Count: len(participants), Limit: MaxGroupMembers}
	}

	found, err := p.users.ListUsers(ctx, participants)
	if err != nil {
		return models.ChatRoom{}, fmt.Errorf("resolve users: %w", err)
	}
	if missing := missingFrom(participants, found); len(missing) > 0 {
		return models.ChatRoom{}, chaterr.UserNotFound(missing...)
	}

	room, _, err := p.rooms.CreateIfAbsent(ctx, models.ChatRoom{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        models.RoomTypeGroup,
		Description: nullString(in.Description),
	})
	if err != nil {
		return models.ChatRoom{}, err
	}

	memberRows := make([]models.ChatRoomMember, 0, len(found))
	for _, u := range found {
		role := models.RoleMember
		if u.Email == in.CreatorID {
			role = models.RoleAdmin
		}
		memberRows = append(memberRows, newMember(room.ID, u.Email, u.Nickname, role))
	}
	if err := p.createMembers(ctx, memberRows); err != nil {
		return models.ChatRoom{}, err
	}

	p.log.Info("group room provisioned",
		zap.String("room_id", room.ID), zap.Int("members", len(memberRows)))
	return room, nil
}

// createMembers fans the membership inserts out concurrently and waits for
// all of them. A partial failure leaves the room short of members; the caller
// surfaces the error and a retried create repairs the gap.
func (p *Provisioner) createMembers(ctx context.Context, members []models.ChatRoomMember) error {
	errs := make(chan error, len(members))
	var wg sync.WaitGroup
	for _, m := range members {
		wg.Add(1)
		go func(m models.ChatRoomMember) {
			defer wg.Done()
			if err := p.members.CreateMember(ctx, m); err != nil {
				errs <- fmt.Errorf("membership %s/%s: %w", m.ChatRoomID, m.UserID, err)
			}
		}(m)
	}
	wg.Wait()
	close(errs)
	return <-errs
}

func newMember(roomID, userID, nickname, role string) models.ChatRoomMember {
	now := time.Now().UTC()
	return models.ChatRoomMember{
		ID:           uuid.NewString(),
		ChatRoomID:   roomID,
		UserID:       userID,
		UserNickname: nickname,
		Role:         role,
		JoinedAt:     now,
	}
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func dedupeWithCreator(creatorID string, memberIDs []string) []string {
	seen := map[string]struct{}{creatorID: {}}
	out := []string{creatorID}
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingFrom(requested []string, found []models.User) []string {
	foundSet := make(map[string]struct{}, len(found))
	for _, u := range found {
		foundSet[u.Email] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
