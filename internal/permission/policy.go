// Package permission decides whether an acting admin may target a given
// user. The policy is advisory: command handlers consult it before acting,
// it performs no mutation itself.
package permission

import "github.com/mymmrac/telego"

// Decision is the outcome of a CanAct check.
type Decision int

const (
	Allowed Decision = iota
	// SelfTarget: the actor targeted themselves.
	SelfTarget
	// BotTarget: the target is a bot account.
	BotTarget
	// TargetIsOwner: the target is the group creator and the actor is not
	// the configured owner.
	TargetIsOwner
	// TargetIsAdmin: the target holds admin rank and the actor is not the
	// configured owner.
	TargetIsAdmin
)

// Allowed reports whether the decision permits the action.
func (d Decision) Allow() bool {
	return d == Allowed
}

// Target describes the user an admin wants to act on.
type Target struct {
	UserID int64
	IsBot  bool
	// Status is the target's membership status in the group, one of the
	// telego.MemberStatus* constants.
	Status string
}

// CanAct applies the policy rules in order: self check, bot check, then
// admin-rank protection. Only the configured owner may act on admin-ranked
// members.
func CanAct(actorID int64, target Target, actorIsOwner bool) Decision {
	if target.UserID == actorID {
		return SelfTarget
	}

	if target.IsBot {
		return BotTarget
	}

	if target.Status == telego.MemberStatusCreator || target.Status == telego.MemberStatusAdministrator {
		if actorIsOwner {
			return Allowed
		}
		if target.Status == telego.MemberStatusCreator {
			return TargetIsOwner
		}
		return TargetIsAdmin
	}

	return Allowed
}

// Reason returns a user-facing message for a denial.
func (d Decision) Reason() string {
	switch d {
	case SelfTarget:
		return "You cannot act on yourself."
	case BotTarget:
		return "You cannot act on a bot."
	case TargetIsOwner:
		return "You cannot act on the group owner."
	case TargetIsAdmin:
		return "You cannot act on another admin."
	default:
		return ""
	}
}
