package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

var ErrNotFound = errors.New("conversation not found")

// Service persists the support channel: conversations keyed by the
// unordered participant pair, append-only messages and per-user seen marks.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func participantKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// GetOrCreateConversation returns the conversation between the two users,
// creating it on first contact.
func (s *Service) GetOrCreateConversation(ctx context.Context, userA, userB int64) (*domain.Conversation, error) {
	key := participantKey(userA, userB)
	var conv domain.Conversation
	err := s.db.WithContext(ctx).Where("participant_key = ?", key).First(&conv).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		conv = domain.Conversation{
			ID:             common.UUIDint64(),
			ParticipantKey: key,
			UserA:          min64(userA, userB),
			UserB:          max64(userA, userB),
		}
		if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
			return nil, err
		}
		return &conv, nil
	case err != nil:
		return nil, err
	}
	return &conv, nil
}

func (s *Service) GetConversation(ctx context.Context, id int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := s.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the conversations the user participates in,
// most recently active first. Support and Master see every conversation.
func (s *Service) ListConversations(ctx context.Context, user *domain.User) ([]domain.Conversation, error) {
	query := s.db.WithContext(ctx).Model(&domain.Conversation{})
	if !user.Role.IsSupport() {
		query = query.Where("user_a = ? OR user_b = ?", user.ID, user.ID)
	}
	var rows []domain.Conversation
	err := query.Order("last_message_at DESC").Find(&rows).Error
	return rows, err
}

// Append stores a message. ClientRef deduplicates outbox retries: a replay
// with a known ref returns the stored row instead of inserting a duplicate.
func (s *Service) Append(ctx context.Context, conversationID, senderID int64, clientRef, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("message body is required")
	}
	if clientRef != "" {
		var existing domain.Message
		err := s.db.WithContext(ctx).Where("client_ref = ?", clientRef).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msg := domain.Message{
		ID:             common.UUIDint64(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		ClientRef:      clientRef,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).Where("id = ?", conv.ID).
			Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Messages returns the conversation messages after the given cursor id,
// oldest first.
func (s *Service) Messages(ctx context.Context, conversationID, afterID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	var rows []domain.Message
	err := query.Order("created_at ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// MarkSeen records the user's last-seen moment for a conversation.
func (s *Service) MarkSeen(ctx context.Context, conversationID, userID int64) error {
	now := time.Now()
	var seen domain.ConversationSeen
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&seen).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.db.WithContext(ctx).Create(&domain.ConversationSeen{
			ID:             common.UUIDint64(),
			ConversationID: conversationID,
			UserID:         userID,
			LastSeenAt:     now,
		}).Error
	case err != nil:
		return err
	}
	return s.db.WithContext(ctx).Model(&domain.ConversationSeen{}).
		Where("id = ?", seen.ID).
		Updates(map[string]interface{}{"last_seen_at": now, "updated_at": now}).Error
}

// UnreadCount counts messages newer than the user's seen mark, excluding
// the user's own.
func (s *Service) UnreadCount(ctx context.Context, conversationID, userID int64) (int64, error) {
	var seen domain.ConversationSeen
	since := time.Time{}
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&seen).Error
	if err == nil {
		since = seen.LastSeenAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	var count int64
	err = s.db.WithContext(ctx).Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND created_at > ?", conversationID, userID, since).
		Count(&count).Error
	return count, err
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
