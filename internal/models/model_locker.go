package models

import (
	"time"

	"github.com/oceanview/backend/pkg/types"
)

// Locker is provisioned for every user at account creation.
type Locker struct {
	ID        string             `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID   string             `gorm:"column:owner_id;type:varchar(6);not null;uniqueIndex" json:"owner_id"`
	Owner     User               `gorm:"foreignKey:OwnerID;references:ResidentID" json:"owner"`
	Status    types.LockerStatus `gorm:"column:status;type:varchar(10);not null;default:'EMPTY'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Locker) TableName() string {
	return "lockers"
}

type Item struct {
	ID        string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name      string           `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Quantity  int              `gorm:"column:quantity;not null" json:"quantity"`
	ImageURL  string           `gorm:"column:image_url;type:varchar(255)" json:"image_url"`
	LockerID  string           `gorm:"column:locker_id;type:uuid;not null;index" json:"locker_id"`
	Status    types.ItemStatus `gorm:"column:status;type:varchar(20);not null;default:'NOT_RECEIVED'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Item) TableName() string {
	return "locker_items"
}
