package models

import (
	"time"

	"github.com/oceanview/backend/pkg/types"
)

type Feedback struct {
	ID        string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Title     string             `gorm:"column:title;type:varchar(100);not null" json:"title"`
	Content   string             `gorm:"column:content;type:varchar(500);not null" json:"content"`
	Type      types.FeedbackType `gorm:"column:type;type:varchar(10);not null" json:"type"`
	AuthorID  string             `gorm:"column:author_id;type:varchar(6);not null;index" json:"author_id"`
	Author    User               `gorm:"foreignKey:AuthorID;references:ResidentID" json:"author"`
	ImageURL  string             `gorm:"column:image_url;type:varchar(255)" json:"image_url"`
	Deleted   bool               `gorm:"column:deleted;not null;default:false" json:"deleted"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
