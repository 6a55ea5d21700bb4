package models

import (
	"sync"
	"time"
)

// VerificationRecord marks a user as verified in a group. Verified is a
// terminal state; only verified users are persisted, a pending challenge
// lives in memory until it is answered or times out.
type VerificationRecord struct {
	ID         uint  `gorm:"primaryKey;autoIncrement"`
	GroupID    int64 `gorm:"uniqueIndex:idx_verify_group_user;not null"`
	UserID     int64 `gorm:"uniqueIndex:idx_verify_group_user;not null"`
	VerifiedAt time.Time
}

// PendingVerification is an outstanding join challenge.
type PendingVerification struct {
	GroupID   int64
	UserID    int64
	MessageID int
	IssuedAt  time.Time
}

// VerificationManager keeps the per (group, user) verification state.
type VerificationManager struct {
	pending  map[groupUser]*PendingVerification
	verified map[groupUser]time.Time
	mu       sync.RWMutex
}

func NewVerificationManager() *VerificationManager {
	return &VerificationManager{
		pending:  make(map[groupUser]*PendingVerification),
		verified: make(map[groupUser]time.Time),
	}
}

// AddPending records an issued challenge for the user.
func (m *VerificationManager) AddPending(p *PendingVerification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[groupUser{p.GroupID, p.UserID}] = p
}

func (m *VerificationManager) GetPending(groupID, userID int64) *PendingVerification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending[groupUser{groupID, userID}]
}

func (m *VerificationManager) RemovePending(groupID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, groupUser{groupID, userID})
}

// MarkVerified transitions the user to the terminal verified state.
func (m *VerificationManager) MarkVerified(groupID, userID int64, verifiedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := groupUser{groupID, userID}
	delete(m.pending, key)
	m.verified[key] = verifiedAt
}

func (m *VerificationManager) IsVerified(groupID, userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.verified[groupUser{groupID, userID}]
	return ok
}
