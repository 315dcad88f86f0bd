package models

import "gorm.io/gorm"

// NotDeleted is the default repository filter for soft-deletable entities.
// Soft delete is an explicit column here, not behavior injection.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false)
}
