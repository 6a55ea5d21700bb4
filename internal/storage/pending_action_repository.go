package storage

import (
	"time"

	"tg-moderator/internal/models"

	"gorm.io/gorm"
)

// PendingActionRepository handles database operations for PendingAction.
// Persisting deferred actions lets timed reversals survive process restarts.
type PendingActionRepository struct {
	db *gorm.DB
}

// NewPendingActionRepository creates a new PendingActionRepository
func NewPendingActionRepository(db *gorm.DB) *PendingActionRepository {
	return &PendingActionRepository{db: db}
}

// MigrateTable ensures the PendingAction table exists
func (r *PendingActionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.PendingAction{})
}

// Add persists a new pending action and fills in its row ID
func (r *PendingActionRepository) Add(action *models.PendingAction) error {
	return r.db.Create(action).Error
}

// Remove deletes a pending action row after it has fired
func (r *PendingActionRepository) Remove(id uint) error {
	return r.db.Delete(&models.PendingAction{}, id).Error
}

// GetAll retrieves every pending action, used for the startup sweep
func (r *PendingActionRepository) GetAll() ([]*models.PendingAction, error) {
	var actions []*models.PendingAction
	result := r.db.Find(&actions)
	return actions, result.Error
}

// GetDue retrieves actions whose deadline has passed
func (r *PendingActionRepository) GetDue(now time.Time) ([]*models.PendingAction, error) {
	var actions []*models.PendingAction
	result := r.db.Where("fire_at <= ?", now).Find(&actions)
	return actions, result.Error
}
