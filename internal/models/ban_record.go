package models

import "time"

// BanRecord stores the audit history of bans issued in a group.
// Records are append-only and never mutated; live ban state is tracked
// by Telegram itself. DurationSeconds of 0 means a permanent ban.
type BanRecord struct {
	ID              uint  `gorm:"primaryKey;autoIncrement"`
	GroupID         int64 `gorm:"index;not null"`
	UserID          int64 `gorm:"index;not null"`
	AdminID         int64
	Reason          string `gorm:"type:text"`
	DurationSeconds int64  `gorm:"default:0"`
	IssuedAt        time.Time

	CreatedAt time.Time
}
