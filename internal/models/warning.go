package models

import (
	"sync"
	"time"
)

// WarningEntry is one warning issued to a user in a group. Entries are
// append-only; they are removed only by warn-limit escalation or an
// explicit admin reset.
type WarningEntry struct {
	ID       uint  `gorm:"primaryKey;autoIncrement"`
	GroupID  int64 `gorm:"index:idx_warn_group_user;not null"`
	UserID   int64 `gorm:"index:idx_warn_group_user;not null"`
	AdminID  int64
	Reason   string `gorm:"type:text"`
	IssuedAt time.Time
}

type groupUser struct {
	groupID int64
	userID  int64
}

// WarningManager keeps the in-memory warning ledger per (group, user).
type WarningManager struct {
	entries map[groupUser][]*WarningEntry
	mu      sync.RWMutex
}

func NewWarningManager() *WarningManager {
	return &WarningManager{
		entries: make(map[groupUser][]*WarningEntry),
	}
}

// Add appends an entry and returns the new warning count.
func (m *WarningManager) Add(entry *WarningEntry) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := groupUser{entry.GroupID, entry.UserID}
	m.entries[key] = append(m.entries[key], entry)
	return len(m.entries[key])
}

func (m *WarningManager) Count(groupID, userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[groupUser{groupID, userID}])
}

func (m *WarningManager) Entries(groupID, userID int64) []*WarningEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.entries[groupUser{groupID, userID}]
	out := make([]*WarningEntry, len(entries))
	copy(out, entries)
	return out
}

func (m *WarningManager) Clear(groupID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, groupUser{groupID, userID})
}
