package storage

import (
	"tg-moderator/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommandRepository handles database operations for CustomCommand
type CommandRepository struct {
	db *gorm.DB
}

// NewCommandRepository creates a new CommandRepository
func NewCommandRepository(db *gorm.DB) *CommandRepository {
	return &CommandRepository{db: db}
}

// MigrateTable ensures the CustomCommand table exists
func (r *CommandRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.CustomCommand{})
}

// Upsert creates or replaces a custom command for a group
func (r *CommandRepository) Upsert(cmd *models.CustomCommand) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "updated_at"}),
	}).Create(cmd).Error
}

// Remove deletes a custom command
func (r *CommandRepository) Remove(groupID int64, name string) error {
	return r.db.Where("group_id = ? AND name = ?", groupID, name).
		Delete(&models.CustomCommand{}).Error
}

// GetAll retrieves every custom command, used to warm the in-memory cache
func (r *CommandRepository) GetAll() ([]*models.CustomCommand, error) {
	var cmds []*models.CustomCommand
	result := r.db.Find(&cmds)
	return cmds, result.Error
}
