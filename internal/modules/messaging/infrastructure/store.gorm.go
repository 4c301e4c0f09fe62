package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

// MessageRecord es la fila persistida de un mensaje directo. Reactions se
// guarda como JSON plano (emoji -> user ids) para no arrastrar una tabla de
// unión por cada emoji.
type MessageRecord struct {
	ID         string     `gorm:"primarykey;size:36"`
	SenderID   string     `gorm:"size:36;not null;index:idx_messages_pair"`
	ReceiverID string     `gorm:"size:36;not null;index:idx_messages_pair"`
	Content    string     `gorm:"size:4000;not null"`
	ReplyTo    string     `gorm:"size:36"`
	Reactions  string     `gorm:"size:4000"`
	Edited     bool       `gorm:"not null;default:false"`
	EditedAt   *time.Time
	Deleted    bool       `gorm:"not null;default:false"`
	Delivered  bool       `gorm:"not null;default:false"`
	Read       bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (MessageRecord) TableName() string { return "messages" }

// GormMessageStore implements the message store against a relational database.
type GormMessageStore struct {
	db *gorm.DB
}

// NewGormMessageStore migrates the messages table and returns the store.
func NewGormMessageStore(db *gorm.DB) (*GormMessageStore, error) {
	if err := db.AutoMigrate(&MessageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate messages: %w", err)
	}
	return &GormMessageStore{db: db}, nil
}

func (s *GormMessageStore) SendMessage(ctx context.Context, senderID, receiverID, content, replyTo string) (*domain.Message, error) {
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return nil, domain.ErrMissingSender
	}
	if err := domain.ValidateOutgoing(receiverID, content); err != nil {
		return nil, err
	}
	record := MessageRecord{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: strings.TrimSpace(receiverID),
		Content:    strings.TrimSpace(content),
		ReplyTo:    strings.TrimSpace(replyTo),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return recordToDomain(&record), nil
}

func (s *GormMessageStore) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	record, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return recordToDomain(record), nil
}

func (s *GormMessageStore) ListConversation(ctx context.Context, userA, userB string, query domain.ConversationQuery) ([]*domain.Message, error) {
	normalized := query.Normalize()
	var records []MessageRecord
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("created_at DESC").
		Limit(normalized.Limit).
		Offset(query.Offset()).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	messages := make([]*domain.Message, 0, len(records))
	for i := range records {
		messages = append(messages, recordToDomain(&records[i]))
	}
	return messages, nil
}

func (s *GormMessageStore) EditMessage(ctx context.Context, messageID, actorID, content string) (*domain.Message, error) {
	record, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if record.SenderID != strings.TrimSpace(actorID) {
		return nil, port.ErrNotSender
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, domain.ErrEmptyContent
	}
	now := time.Now().UTC()
	record.Content = trimmed
	record.Edited = true
	record.EditedAt = &now
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("edit message: %w", err)
	}
	return recordToDomain(record), nil
}

func (s *GormMessageStore) DeleteMessage(ctx context.Context, messageID, actorID string) (*domain.Message, error) {
	record, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if record.SenderID != strings.TrimSpace(actorID) {
		return nil, port.ErrNotSender
	}
	record.Deleted = true
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return recordToDomain(record), nil
}

func (s *GormMessageStore) AddReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error) {
	return s.mutateReactions(ctx, messageID, actorID, func(msg *domain.Message) {
		msg.AddReaction(emoji, actorID)
	})
}

func (s *GormMessageStore) RemoveReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error) {
	return s.mutateReactions(ctx, messageID, actorID, func(msg *domain.Message) {
		msg.RemoveReaction(emoji, actorID)
	})
}

func (s *GormMessageStore) mutateReactions(ctx context.Context, messageID, actorID string, mutate func(*domain.Message)) (*domain.Message, error) {
	record, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}
	msg := recordToDomain(record)
	if !msg.IsParticipant(actorID) {
		return nil, port.ErrNotParticipant
	}
	mutate(msg)
	record.Reactions = reactionsToJSON(msg.Reactions)
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("save reactions: %w", err)
	}
	return recordToDomain(record), nil
}

func (s *GormMessageStore) MarkDelivered(ctx context.Context, messageID, actorID string) (*domain.Message, error) {
	record, err := s.find(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if record.ReceiverID != strings.TrimSpace(actorID) {
		return nil, port.ErrNotParticipant
	}
	record.Delivered = true
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	return recordToDomain(record), nil
}

func (s *GormMessageStore) MarkRead(ctx context.Context, peerID, actorID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&MessageRecord{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ? AND deleted = ?", strings.TrimSpace(peerID), strings.TrimSpace(actorID), false, false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("mark read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormMessageStore) find(ctx context.Context, messageID string) (*MessageRecord, error) {
	var record MessageRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", strings.TrimSpace(messageID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, port.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &record, nil
}

func recordToDomain(record *MessageRecord) *domain.Message {
	return &domain.Message{
		ID:         record.ID,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		Content:    record.Content,
		ReplyTo:    record.ReplyTo,
		Reactions:  reactionsFromJSON(record.Reactions),
		Edited:     record.Edited,
		EditedAt:   record.EditedAt,
		Deleted:    record.Deleted,
		Delivered:  record.Delivered,
		Read:       record.Read,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func reactionsToJSON(reactions map[string][]string) string {
	if len(reactions) == 0 {
		return ""
	}
	data, err := json.Marshal(reactions)
	if err != nil {
		return ""
	}
	return string(data)
}

func reactionsFromJSON(raw string) map[string][]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var reactions map[string][]string
	if err := json.Unmarshal([]byte(raw), &reactions); err != nil {
		return nil
	}
	return reactions
}

var _ port.MessageStore = (*GormMessageStore)(nil)
