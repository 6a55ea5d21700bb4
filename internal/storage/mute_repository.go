package storage

import (
	"tg-moderator/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MuteRepository handles database operations for MuteRecord
type MuteRepository struct {
	db *gorm.DB
}

// NewMuteRepository creates a new MuteRepository
func NewMuteRepository(db *gorm.DB) *MuteRepository {
	return &MuteRepository{db: db}
}

// MigrateTable ensures the MuteRecord table exists
func (r *MuteRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.MuteRecord{})
}

// Upsert creates or replaces the mute record for a (group, user) pair
func (r *MuteRepository) Upsert(record *models.MuteRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"until", "updated_at"}),
	}).Create(record).Error
}

// Delete removes the mute record; deleting an absent record is not an error
func (r *MuteRepository) Delete(groupID, userID int64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.MuteRecord{}).Error
}

// GetAll retrieves every mute record, used to warm the in-memory ledger
func (r *MuteRepository) GetAll() ([]*models.MuteRecord, error) {
	var records []*models.MuteRecord
	result := r.db.Find(&records)
	return records, result.Error
}
