package storage

import (
	"tg-moderator/internal/models"

	"gorm.io/gorm"
)

// BanRepository handles database operations for BanRecord
type BanRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// MigrateTable ensures the BanRecord table exists
func (r *BanRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.BanRecord{})
}

// Append inserts a new BanRecord. Ban history is append-only.
func (r *BanRepository) Append(record *models.BanRecord) error {
	return r.db.Create(record).Error
}

// GetByUser returns the ban history for a user in a group
func (r *BanRepository) GetByUser(groupID, userID int64) ([]*models.BanRecord, error) {
	var records []*models.BanRecord
	result := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Find(&records)
	return records, result.Error
}
