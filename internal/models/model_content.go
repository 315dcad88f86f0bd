package models

import "time"

type NewsCategory struct {
	ID        uint      `gorm:"column:id;primary_key;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NewsCategory) TableName() string {
	return "news_categories"
}

type News struct {
	ID         string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Title      string    `gorm:"column:title;type:varchar(50);not null" json:"title"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	CategoryID *uint     `gorm:"column:category_id;default:null" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (News) TableName() string {
	return "news"
}

type GuideCategory struct {
	ID        uint      `gorm:"column:id;primary_key;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GuideCategory) TableName() string {
	return "guide_categories"
}

type Guide struct {
	ID         string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Title      string    `gorm:"column:title;type:varchar(50);not null" json:"title"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	CategoryID *uint     `gorm:"column:category_id;default:null" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Guide) TableName() string {
	return "guides"
}
