// Package platform abstracts the chat-platform operations the moderation
// core invokes. The scheduler and services receive a Client by injection,
// never through ambient state, so background timers keep a handle after
// the triggering update has been processed and tests can substitute a fake.
package platform

import (
	"context"

	"github.com/mymmrac/telego"
)

// Member is the subset of chat-member information the policy and the
// verification gate need.
type Member struct {
	UserID    int64
	FirstName string
	LastName  string
	IsBot     bool
	Status    string
}

// Client is the platform collaborator. All calls are network I/O and may
// fail with transient or permanent platform errors; callers decide whether
// the failure is reported (synchronous command path) or absorbed
// (background path).
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) (messageID int, err error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// RestrictMember mutes a user. untilUnix of 0 applies an indefinite
	// restriction.
	RestrictMember(ctx context.Context, chatID, userID int64, untilUnix int64) error
	// UnrestrictMember restores the group's default permissions for a user.
	UnrestrictMember(ctx context.Context, chatID, userID int64) error

	BanMember(ctx context.Context, chatID, userID int64) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
	// KickMember removes a user without a lasting ban (ban then unban).
	KickMember(ctx context.Context, chatID, userID int64) error

	PinMessage(ctx context.Context, chatID int64, messageID int) error
	UnpinMessage(ctx context.Context, chatID int64, messageID int) error

	GetMember(ctx context.Context, chatID, userID int64) (*Member, error)
	GetAdministrators(ctx context.Context, chatID int64) ([]*Member, error)
	GetMemberCount(ctx context.Context, chatID int64) (int, error)

	AnswerCallback(ctx context.Context, queryID, text string, showAlert bool) error
}
