package storage

import (
	"tg-moderator/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerificationRepository handles database operations for VerificationRecord
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// MigrateTable ensures the VerificationRecord table exists
func (r *VerificationRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.VerificationRecord{})
}

// Upsert marks a user as verified in a group
func (r *VerificationRepository) Upsert(record *models.VerificationRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"verified_at"}),
	}).Create(record).Error
}

// GetAll retrieves every verification record, used to warm the in-memory state
func (r *VerificationRepository) GetAll() ([]*models.VerificationRecord, error) {
	var records []*models.VerificationRecord
	result := r.db.Find(&records)
	return records, result.Error
}
