package models

import "time"

// Inbox is a two-party conversation. Group chat is out of scope.
type Inbox struct {
	ID          string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	LastMessage string    `gorm:"column:last_message;type:text" json:"last_message"`
	User1ID     string    `gorm:"column:user_1_id;type:varchar(6);not null;index" json:"user_1_id"`
	User2ID     string    `gorm:"column:user_2_id;type:varchar(6);not null;index" json:"user_2_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Inbox) TableName() string {
	return "inboxes"
}

// PeerOf returns the other participant of the conversation.
func (i *Inbox) PeerOf(userID string) string {
	if i.User1ID == userID {
		return i.User2ID
	}
	return i.User1ID
}

func (i *Inbox) Involves(userID string) bool {
	return i.User1ID == userID || i.User2ID == userID
}

type Message struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	InboxID   string    `gorm:"column:inbox_id;type:uuid;not null;index" json:"inbox_id"`
	SenderID  string    `gorm:"column:sender_id;type:varchar(6);not null;index" json:"sender_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}
