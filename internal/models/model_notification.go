package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/oceanview/backend/pkg/types"
)

// FCMToken is one push-registration token per (user, device). Tokens are
// upserted on login.
type FCMToken struct {
	ID         string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string           `gorm:"column:user_id;type:varchar(6);not null;index" json:"user_id"`
	Token      string           `gorm:"column:token;type:varchar(255);not null;uniqueIndex" json:"token"`
	DeviceType types.DeviceType `gorm:"column:device_type;type:varchar(10);not null" json:"device_type"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (FCMToken) TableName() string {
	return "fcm_tokens"
}

// NotificationContent is one record per triggering domain event.
type NotificationContent struct {
	ID         string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Image      string           `gorm:"column:image;type:varchar(200)" json:"image"`
	EntityType types.EntityType `gorm:"column:entity_type;type:varchar(100);not null" json:"entity_type"`
	EntityID   string           `gorm:"column:entity_id;type:varchar(100);not null" json:"entity_id"`
	// Extra carries the rendered message and deep link as pushed.
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (NotificationContent) TableName() string {
	return "notification_contents"
}

type NotificationSender struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ContentID string    `gorm:"column:content_id;type:uuid;not null;index" json:"content_id"`
	SenderID  string    `gorm:"column:sender_id;type:varchar(6);not null;index" json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NotificationSender) TableName() string {
	return "notification_senders"
}

// Notification is the fan-out row per (content, recipient).
type Notification struct {
	ID          string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ContentID   string              `gorm:"column:content_id;type:uuid;not null;index" json:"content_id"`
	Content     NotificationContent `gorm:"foreignKey:ContentID" json:"content"`
	RecipientID string              `gorm:"column:recipient_id;type:varchar(6);not null;index" json:"recipient_id"`
	HasBeenRead bool                `gorm:"column:has_been_read;not null;default:false" json:"has_been_read"`
	Target      types.MessageTarget `gorm:"column:target;type:varchar(50);not null;default:'ADMIN'" json:"target"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
