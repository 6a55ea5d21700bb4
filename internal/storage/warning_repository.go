package storage

import (
	"tg-moderator/internal/models"

	"gorm.io/gorm"
)

// WarningRepository handles database operations for WarningEntry
type WarningRepository struct {
	db *gorm.DB
}

// NewWarningRepository creates a new WarningRepository
func NewWarningRepository(db *gorm.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// MigrateTable ensures the WarningEntry table exists
func (r *WarningRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.WarningEntry{})
}

// Append inserts a new warning entry
func (r *WarningRepository) Append(entry *models.WarningEntry) error {
	return r.db.Create(entry).Error
}

// Count returns the number of warnings for a user in a group
func (r *WarningRepository) Count(groupID, userID int64) (int64, error) {
	var count int64
	result := r.db.Model(&models.WarningEntry{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count)
	return count, result.Error
}

// Clear deletes all warnings for a user in a group
func (r *WarningRepository) Clear(groupID, userID int64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.WarningEntry{}).Error
}

// GetAll retrieves every warning entry, used to warm the in-memory ledger
func (r *WarningRepository) GetAll() ([]*models.WarningEntry, error) {
	var entries []*models.WarningEntry
	result := r.db.Find(&entries)
	return entries, result.Error
}
