package models

import "time"

// Deferred action kinds.
const (
	ActionUnban               = "unban"
	ActionUnmuteExpiry        = "unmute_expiry"
	ActionVerificationTimeout = "verification_timeout"
)

// PendingAction is a deferred unit of work persisted so that scheduled
// reversals survive a process restart. Rows are deleted after the action
// fires; on startup every remaining row is re-scheduled.
type PendingAction struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Kind      string `gorm:"size:32;index;not null"`
	GroupID   int64  `gorm:"not null"`
	UserID    int64  `gorm:"not null"`
	MessageID int
	FireAt    time.Time `gorm:"index"`

	CreatedAt time.Time
}
