package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/internal/platform/push"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/logctx"
	"github.com/oceanview/backend/pkg/metrics"
	"github.com/oceanview/backend/pkg/tool"
	"github.com/oceanview/backend/pkg/types"
)

var (
	ErrEmptyEvent        = errors.New("notification event must carry an entity")
	ErrNotificationOwner = errors.New("notification belongs to another user")
)

type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	log  *zap.SugaredLogger
	push push.Sender
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, sender push.Sender) *Service {
	return &Service{cfg: cfg, db: db, log: log, push: sender}
}

// Event describes one domain occurrence to fan out.
type Event struct {
	EntityType types.EntityType
	EntityID   string
	// SenderID is who triggered the event; defaults to the first staff user.
	SenderID string
	// Message is the rendered push title, see FormatMessage.
	Message string
	Image   string
	// RecipientIDs narrows RESIDENT/RESIDENTS targeting to specific users.
	RecipientIDs []string
}

type contentExtra struct {
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// Create persists one content row plus one notification row per recipient,
// bumps the matching unread counter, and pushes to FCM. Recipients without a
// registered device token never get a row.
func (s *Service) Create(ctx context.Context, ev *Event) error {
	if ev == nil || ev.EntityType == "" || ev.EntityID == "" {
		return ErrEmptyEvent
	}

	sender, err := s.resolveSender(ctx, ev.SenderID)
	if err != nil {
		return err
	}

	image := ev.Image
	if image == "" {
		image = sender.AvatarURL
	}
	if image == "" {
		image = s.cfg.LogoURL
	}

	target := TargetOf(ev.EntityType)
	recipients, err := s.recipients(ctx, target, ev.RecipientIDs)
	if err != nil {
		return err
	}

	link := DeepLink(s.cfg.AdminHost, ev.EntityType, ev.EntityID)
	extra, err := json.Marshal(contentExtra{Message: ev.Message, Link: link})
	if err != nil {
		return fmt.Errorf("failed to marshal notification extra: %w", err)
	}

	content := &models.NotificationContent{
		ID:         tool.GenerateUUIDV7(),
		Image:      image,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Extra:      extra,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return fmt.Errorf("failed to create notification content: %w", err)
		}
		senderRow := &models.NotificationSender{
			ID:        tool.GenerateUUIDV7(),
			ContentID: content.ID,
			SenderID:  sender.ResidentID,
		}
		if err := tx.Create(senderRow).Error; err != nil {
			return fmt.Errorf("failed to create notification sender: %w", err)
		}

		if len(recipients) == 0 {
			return nil
		}

		rows := lo.Map(recipients, func(r string, _ int) *models.Notification {
			return &models.Notification{
				ID:          tool.GenerateUUIDV7(),
				ContentID:   content.ID,
				RecipientID: r,
				Target:      target,
			}
		})
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to fan out notifications: %w", err)
		}

		counter := "unread_notifications"
		if target == types.MessageTargetAdmin {
			counter = "staff_unread_notifications"
		}
		if err := tx.Model(&models.User{}).
			Where("resident_id IN ?", recipients).
			UpdateColumn(counter, gorm.Expr(counter+" + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump unread counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.NotificationsFanout.WithLabelValues(string(target)).Add(float64(len(recipients)))
	s.dispatch(ctx, ev, content, target, recipients, link)
	return nil
}

// dispatch pushes a committed notification out to FCM. Delivery failures are
// logged; the stored rows stay authoritative.
func (s *Service) dispatch(ctx context.Context, ev *Event, content *models.NotificationContent, target types.MessageTarget, recipients []string, link string) {
	data := map[string]string{
		"entity_type": string(content.EntityType),
		"entity_id":   content.EntityID,
		"content_id":  content.ID,
	}
	if link != "" {
		data["link"] = link
	}

	var err error
	switch target {
	case types.MessageTargetAdmin:
		err = s.push.SendToTopic(ctx, s.cfg.FCM.AdminTopic, ev.Message, "", data)
	case types.MessageTargetResident:
		var tokens []string
		if len(recipients) > 0 {
			tokens, err = s.tokensOf(ctx, recipients)
		}
		if err == nil && len(tokens) > 0 {
			err = s.push.SendToTokens(ctx, tokens, ev.Message, "", data)
		}
	default:
		err = s.push.SendToTopic(ctx, s.cfg.FCM.ResidentTopic, ev.Message, "", data)
	}
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("push dispatch failed",
			"entity_type", content.EntityType, "entity_id", content.EntityID, "error", err)
	}
}

func (s *Service) resolveSender(ctx context.Context, senderID string) (*models.User, error) {
	var sender models.User
	q := s.db.WithContext(ctx)
	if senderID != "" {
		q = q.Where("resident_id = ?", senderID)
	} else {
		q = q.Where("is_staff = ?", true)
	}
	if err := q.First(&sender).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve notification sender: %w", err)
	}
	return &sender, nil
}

// recipients resolves the audience to resident ids holding the right device
// tokens for the target.
func (s *Service) recipients(ctx context.Context, target types.MessageTarget, filter []string) ([]string, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Distinct("users.resident_id").
		Joins("JOIN fcm_tokens ON fcm_tokens.user_id = users.resident_id")

	switch target {
	case types.MessageTargetAdmin:
		q = q.Where("users.is_staff = ?", true).
			Where("fcm_tokens.device_type = ?", types.DeviceTypeWeb)
	case types.MessageTargetResident, types.MessageTargetResidents:
		q = q.Where("fcm_tokens.device_type = ?", types.DeviceTypeAndroid)
	}
	if len(filter) > 0 {
		q = q.Where("users.resident_id IN ?", filter)
	}

	var ids []string
	if err := q.Pluck("users.resident_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	return ids, nil
}

func (s *Service) tokensOf(ctx context.Context, userIDs []string) ([]string, error) {
	var tokens []string
	err := s.db.WithContext(ctx).Model(&models.FCMToken{}).
		Where("user_id IN ?", userIDs).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load device tokens: %w", err)
	}
	return tokens, nil
}

// Read flips the read flag and decrements the matching unread counter. A
// second read of the same notification changes nothing.
func (s *Service) Read(ctx context.Context, userID, notificationID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n models.Notification
		if err := tx.Where("id = ?", notificationID).First(&n).Error; err != nil {
			return fmt.Errorf("failed to load notification: %w", err)
		}
		if n.RecipientID != userID {
			return ErrNotificationOwner
		}
		if n.HasBeenRead {
			return nil
		}
		if err := tx.Model(&n).UpdateColumn("has_been_read", true).Error; err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}

		counter := "unread_notifications"
		if n.Target == types.MessageTargetAdmin {
			counter = "staff_unread_notifications"
		}
		if err := tx.Model(&models.User{}).
			Where("resident_id = ? AND "+counter+" > 0", userID).
			UpdateColumn(counter, gorm.Expr(counter+" - 1")).Error; err != nil {
			return fmt.Errorf("failed to decrement unread counter: %w", err)
		}
		return nil
	})
}

type ListRequest struct {
	UserID    string
	StaffView bool
	From      int
	Size      int
}

type ListResponse struct {
	Items []*models.Notification `json:"items"`
	Total int64                  `json:"total"`
}

func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Size <= 0 {
		req.Size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ?", req.UserID)
	if req.StaffView {
		q = q.Where("target = ?", types.MessageTargetAdmin)
	} else {
		q = q.Where("target <> ?", types.MessageTargetAdmin)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var items []*models.Notification
	if err := q.Preload("Content").
		Order("created_at DESC").
		Offset(req.From).Limit(req.Size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}

// UnreadCount reads the denormalized counter kept on the user row.
func (s *Service) UnreadCount(ctx context.Context, userID string, staffView bool) (int, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Select("unread_notifications", "staff_unread_notifications").
		Where("resident_id = ?", userID).First(&u).Error; err != nil {
		return 0, fmt.Errorf("failed to load unread counters: %w", err)
	}
	if staffView {
		return u.StaffUnreadNotifications, nil
	}
	return u.UnreadNotifications, nil
}
