package models

import (
	"sync"
	"time"
)

// CustomCommand is an admin-defined command with a canned response,
// scoped to a single group.
type CustomCommand struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	GroupID  int64  `gorm:"uniqueIndex:idx_cmd_group_name;not null"`
	Name     string `gorm:"uniqueIndex:idx_cmd_group_name;size:64;not null"`
	Response string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomCommandManager caches custom commands per group.
type CustomCommandManager struct {
	commands map[int64]map[string]string
	mu       sync.RWMutex
}

func NewCustomCommandManager() *CustomCommandManager {
	return &CustomCommandManager{
		commands: make(map[int64]map[string]string),
	}
}

func (m *CustomCommandManager) Put(groupID int64, name, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commands[groupID] == nil {
		m.commands[groupID] = make(map[string]string)
	}
	m.commands[groupID][name] = response
}

func (m *CustomCommandManager) Get(groupID int64, name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	response, ok := m.commands[groupID][name]
	return response, ok
}

func (m *CustomCommandManager) Remove(groupID int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.commands[groupID], name)
}

// Names returns the command names defined for the group.
func (m *CustomCommandManager) Names(groupID int64) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.commands[groupID]))
	for name := range m.commands[groupID] {
		names = append(names, name)
	}
	return names
}
