package models

import (
	"sync"
	"time"
)

// MuteRecord tracks an applied restriction for a user in a group. At most
// one record exists per (group, user). Until is a unix timestamp; 0 means
// indefinite, released only by an explicit unmute.
type MuteRecord struct {
	ID      uint  `gorm:"primaryKey;autoIncrement"`
	GroupID int64 `gorm:"uniqueIndex:idx_mute_group_user;not null"`
	UserID  int64 `gorm:"uniqueIndex:idx_mute_group_user;not null"`
	Until   int64 `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MuteManager keeps the in-memory mute state per (group, user).
type MuteManager struct {
	mutes map[groupUser]int64
	mu    sync.RWMutex
}

func NewMuteManager() *MuteManager {
	return &MuteManager{
		mutes: make(map[groupUser]int64),
	}
}

// Upsert records or replaces the mute for the user. Last write wins.
func (m *MuteManager) Upsert(groupID, userID, until int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutes[groupUser{groupID, userID}] = until
}

// Until returns the mute deadline and whether a mute record exists.
func (m *MuteManager) Until(groupID, userID int64) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	until, ok := m.mutes[groupUser{groupID, userID}]
	return until, ok
}

// Delete removes the mute record. Removing an absent record is a no-op.
func (m *MuteManager) Delete(groupID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mutes, groupUser{groupID, userID})
}
