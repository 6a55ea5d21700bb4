package models

import (
	"sync"
	"time"
)

// Stat counter keys used by the moderation handlers.
const (
	StatTotalBans       = "total_bans"
	StatTotalWarnings   = "total_warnings"
	StatDeletedMessages = "deleted_messages"
)

// StatCounter is a monotonically increasing per-group counter.
type StatCounter struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	GroupID int64  `gorm:"uniqueIndex:idx_stat_group_key;not null"`
	Key     string `gorm:"uniqueIndex:idx_stat_group_key;size:64;not null"`
	Value   int64  `gorm:"default:0"`

	UpdatedAt time.Time
}

type groupKey struct {
	groupID int64
	key     string
}

// StatManager keeps in-memory stat counters per (group, key).
type StatManager struct {
	counters map[groupKey]int64
	mu       sync.RWMutex
}

func NewStatManager() *StatManager {
	return &StatManager{
		counters: make(map[groupKey]int64),
	}
}

// Increment adds delta to the counter and returns the new value.
func (m *StatManager) Increment(groupID int64, key string, delta int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := groupKey{groupID, key}
	m.counters[k] += delta
	return m.counters[k]
}

func (m *StatManager) Get(groupID int64, key string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[groupKey{groupID, key}]
}

// Set overwrites a counter, used when loading persisted values at startup.
func (m *StatManager) Set(groupID int64, key string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[groupKey{groupID, key}] = value
}

// All returns a copy of every counter for the group.
func (m *StatManager) All(groupID int64) map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64)
	for k, v := range m.counters {
		if k.groupID == groupID {
			out[k.key] = v
		}
	}
	return out
}
