package models

import (
	"sync"
	"time"
)

// GroupConfig holds per-group moderation settings. A record is materialized
// with defaults the first time a group is seen and lives for the lifetime of
// the group.
type GroupConfig struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	GroupID   int64 `gorm:"uniqueIndex;not null"`
	GroupName string

	WarnLimit      int    `gorm:"default:3"`
	FloodLimit     int    `gorm:"default:5"`
	Rules          string `gorm:"type:text"`
	CaptchaTimeout int    `gorm:"default:60"`

	AntiSpamEnabled     bool `gorm:"default:true"`
	WelcomeEnabled      bool `gorm:"default:true"`
	GoodbyeEnabled      bool `gorm:"default:true"`
	FilterEnabled       bool `gorm:"default:true"`
	VerificationEnabled bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GroupConfigManager is the in-memory cache of group configurations.
type GroupConfigManager struct {
	configs map[int64]*GroupConfig
	mu      sync.RWMutex
}

func NewGroupConfigManager() *GroupConfigManager {
	return &GroupConfigManager{
		configs: make(map[int64]*GroupConfig),
	}
}

func (m *GroupConfigManager) Get(groupID int64) *GroupConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configs[groupID]
}

func (m *GroupConfigManager) Put(cfg *GroupConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.GroupID] = cfg
}

func (m *GroupConfigManager) Remove(groupID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, groupID)
}
