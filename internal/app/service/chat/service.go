package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrInboxMissing  = errors.New("inbox not found")
	ErrNotMember     = errors.New("user is not part of this conversation")
	ErrEmptyMessage  = errors.New("message content must not be empty")
	ErrSelfInbox     = errors.New("cannot open a conversation with yourself")
)

type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	notify *notification.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, notify *notification.Service) *Service {
	return &Service{db: db, log: log, notify: notify}
}

// OpenInbox finds the two-party conversation, creating it on first contact.
func (s *Service) OpenInbox(ctx context.Context, userID, peerID string) (*models.Inbox, error) {
	if userID == peerID {
		return nil, ErrSelfInbox
	}

	var inbox models.Inbox
	err := s.db.WithContext(ctx).
		Where("(user_1_id = ? AND user_2_id = ?) OR (user_1_id = ? AND user_2_id = ?)",
			userID, peerID, peerID, userID).
		First(&inbox).Error
	if err == nil {
		return &inbox, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up inbox: %w", err)
	}

	inbox = models.Inbox{
		ID:      tool.GenerateUUIDV7(),
		User1ID: userID,
		User2ID: peerID,
	}
	if err := s.db.WithContext(ctx).Create(&inbox).Error; err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}
	return &inbox, nil
}

// SendMessage appends to the conversation, refreshes the preview, and
// notifies the peer.
func (s *Service) SendMessage(ctx context.Context, senderID, inboxID, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}

	var msg *models.Message
	var inbox models.Inbox
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", inboxID).First(&inbox).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInboxMissing
		}
		if err != nil {
			return fmt.Errorf("failed to load inbox: %w", err)
		}
		if !inbox.Involves(senderID) {
			return ErrNotMember
		}

		msg = &models.Message{
			ID:       tool.GenerateUUIDV7(),
			InboxID:  inbox.ID,
			SenderID: senderID,
			Content:  content,
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return tx.Model(&inbox).UpdateColumn("last_message", content).Error
	})
	if err != nil {
		return nil, err
	}

	var sender models.User
	actor := senderID
	if err := s.db.WithContext(ctx).Preload("PersonalInformation").
		Where("resident_id = ?", senderID).First(&sender).Error; err == nil {
		actor = sender.PersonalInformation.FullName
	}
	err = s.notify.Create(ctx, &notification.Event{
		EntityType:   types.EntityTypeChatMessage,
		EntityID:     inbox.ID,
		SenderID:     senderID,
		Message:      notification.FormatMessage(types.EntityTypeChatMessage, actor, content),
		RecipientIDs: []string{inbox.PeerOf(senderID)},
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to notify chat message",
			"inbox_id", inbox.ID, "error", err)
	}
	return msg, nil
}

type ListInboxesResponse struct {
	Items []*models.Inbox `json:"items"`
	Total int64           `json:"total"`
}

func (s *Service) ListInboxes(ctx context.Context, userID string, from, size int) (*ListInboxesResponse, error) {
	if size <= 0 {
		size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Inbox{}).
		Where("user_1_id = ? OR user_2_id = ?", userID, userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count inboxes: %w", err)
	}

	var items []*models.Inbox
	if err := q.Order("updated_at DESC").
		Offset(from).Limit(size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inboxes: %w", err)
	}
	return &ListInboxesResponse{Items: items, Total: total}, nil
}

// Messages lists a conversation newest-first for a member of it.
func (s *Service) Messages(ctx context.Context, userID, inboxID string, from, size int) ([]*models.Message, error) {
	if size <= 0 {
		size = 20
	}

	var inbox models.Inbox
	err := s.db.WithContext(ctx).Where("id = ?", inboxID).First(&inbox).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInboxMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox: %w", err)
	}
	if !inbox.Involves(userID) {
		return nil, ErrNotMember
	}

	var msgs []*models.Message
	err = s.db.WithContext(ctx).
		Where("inbox_id = ?", inboxID).
		Order("created_at DESC").
		Offset(from).Limit(size).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
