package storage

import (
	"tg-moderator/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatRepository handles database operations for StatCounter
type StatRepository struct {
	db *gorm.DB
}

// NewStatRepository creates a new StatRepository
func NewStatRepository(db *gorm.DB) *StatRepository {
	return &StatRepository{db: db}
}

// MigrateTable ensures the StatCounter table exists
func (r *StatRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.StatCounter{})
}

// Increment adds delta to the counter with a single upsert statement.
// The increment-with-upsert is atomic at the store level.
func (r *StatRepository) Increment(groupID int64, key string, delta int64) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": gorm.Expr("value + ?", delta)}),
	}).Create(&models.StatCounter{GroupID: groupID, Key: key, Value: delta}).Error
}

// GetAll retrieves every counter, used to warm the in-memory state
func (r *StatRepository) GetAll() ([]*models.StatCounter, error) {
	var counters []*models.StatCounter
	result := r.db.Find(&counters)
	return counters, result.Error
}
