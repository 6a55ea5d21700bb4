package storage

import (
	"time"

	"tg-moderator/internal/models"

	"gorm.io/gorm"
)

// GroupRepository handles database operations for GroupConfig
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// MigrateTable ensures the GroupConfig table exists with the right schema
func (r *GroupRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.GroupConfig{})
}

// GetGroupConfig retrieves group settings from the database by GroupID
func (r *GroupRepository) GetGroupConfig(groupID int64) (*models.GroupConfig, error) {
	var groupConfig models.GroupConfig
	result := r.db.Where("group_id = ?", groupID).First(&groupConfig)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &groupConfig, nil
}

// CreateOrUpdateGroupConfig creates a new group config record or updates an existing one
func (r *GroupRepository) CreateOrUpdateGroupConfig(groupConfig *models.GroupConfig) error {
	var existing models.GroupConfig
	result := r.db.Where("group_id = ?", groupConfig.GroupID).First(&existing)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			groupConfig.CreatedAt = time.Now()
			groupConfig.UpdatedAt = time.Now()
			return r.db.Create(groupConfig).Error
		}
		return result.Error
	}

	groupConfig.ID = existing.ID
	groupConfig.CreatedAt = existing.CreatedAt
	groupConfig.UpdatedAt = time.Now()

	return r.db.Save(groupConfig).Error
}

// GetAllGroupConfigs retrieves all group configurations from the database
func (r *GroupRepository) GetAllGroupConfigs() ([]*models.GroupConfig, error) {
	var groups []*models.GroupConfig
	result := r.db.Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}
	return groups, nil
}
