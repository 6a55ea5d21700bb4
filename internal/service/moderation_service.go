package service

import (
	"context"
	"fmt"
	"time"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/scheduler"
)

// WarnResult reports the outcome of a warn operation.
type WarnResult struct {
	Count     int
	Limit     int
	Escalated bool
}

// Warn appends a warning entry and escalates to an indefinite mute once the
// group's warn limit is reached. Escalation is synchronous with the warn
// call: the platform mute is applied first, then the mute record is stored
// and the warning count resets to zero.
func Warn(ctx context.Context, client platform.Client, groupID, userID, adminID int64, reason string) (WarnResult, error) {
	groupConfig := GetGroupConfig(groupID)

	entry := &models.WarningEntry{
		GroupID:  groupID,
		UserID:   userID,
		AdminID:  adminID,
		Reason:   reason,
		IssuedAt: time.Now(),
	}

	count := warningManager.Add(entry)
	if warningRepository != nil {
		if err := warningRepository.Append(entry); err != nil {
			logger.Warningf("Error persisting warning: %v", err)
		}
	}

	IncrementStat(groupID, models.StatTotalWarnings, 1)

	result := WarnResult{Count: count, Limit: groupConfig.WarnLimit}
	if count < groupConfig.WarnLimit {
		return result, nil
	}

	// Limit reached: mute indefinitely, then clear the slate. A platform
	// failure leaves the count at the limit so the next warn retries.
	if err := client.RestrictMember(ctx, groupID, userID, 0); err != nil {
		return result, fmt.Errorf("auto-mute failed: %w", err)
	}

	muteManager.Upsert(groupID, userID, 0)
	if muteRepository != nil {
		if err := muteRepository.Upsert(&models.MuteRecord{GroupID: groupID, UserID: userID, Until: 0}); err != nil {
			logger.Warningf("Error persisting auto-mute record: %v", err)
		}
	}

	clearWarnings(groupID, userID)

	result.Escalated = true
	logger.Infof("User %d auto-muted in group %d after %d warnings", userID, groupID, count)
	return result, nil
}

// WarningCount returns the current warning count for a user in a group.
func WarningCount(groupID, userID int64) int {
	return warningManager.Count(groupID, userID)
}

// ResetWarnings clears a user's warnings without side effects.
func ResetWarnings(groupID, userID int64) {
	clearWarnings(groupID, userID)
}

func clearWarnings(groupID, userID int64) {
	warningManager.Clear(groupID, userID)
	if warningRepository != nil {
		if err := warningRepository.Clear(groupID, userID); err != nil {
			logger.Warningf("Error clearing warnings: %v", err)
		}
	}
}

// Mute restricts a user. durationSeconds of 0 mutes indefinitely; a positive
// duration schedules an expiry action that reverses the mute. Calling Mute
// while a mute is pending replaces the record, last write wins.
func Mute(ctx context.Context, client platform.Client, groupID, userID, durationSeconds int64) error {
	var until int64
	if durationSeconds > 0 {
		until = time.Now().Unix() + durationSeconds
	}

	if err := client.RestrictMember(ctx, groupID, userID, until); err != nil {
		return err
	}

	muteManager.Upsert(groupID, userID, until)
	if muteRepository != nil {
		if err := muteRepository.Upsert(&models.MuteRecord{GroupID: groupID, UserID: userID, Until: until}); err != nil {
			logger.Warningf("Error persisting mute record: %v", err)
		}
	}

	if durationSeconds > 0 && sched != nil {
		sched.Schedule(scheduler.Action{
			Kind:    models.ActionUnmuteExpiry,
			GroupID: groupID,
			UserID:  userID,
			FireAt:  time.Unix(until, 0),
		})
	}

	return nil
}

// Unmute lifts a user's restriction and deletes the mute record. Unmuting a
// user who is not muted is not an error.
func Unmute(ctx context.Context, client platform.Client, groupID, userID int64) error {
	if err := client.UnrestrictMember(ctx, groupID, userID); err != nil {
		return err
	}

	muteManager.Delete(groupID, userID)
	if muteRepository != nil {
		if err := muteRepository.Delete(groupID, userID); err != nil {
			logger.Warningf("Error deleting mute record: %v", err)
		}
	}

	return nil
}

// MuteUntil returns the tracked mute deadline for a user and whether a mute
// record exists.
func MuteUntil(groupID, userID int64) (int64, bool) {
	return muteManager.Until(groupID, userID)
}

// Ban bans a user and appends the audit record. The ledger write happens
// only after the platform ban succeeds. A positive duration schedules a
// deferred unban.
func Ban(ctx context.Context, client platform.Client, groupID, userID, adminID int64, reason string, durationSeconds int64) error {
	if err := client.BanMember(ctx, groupID, userID); err != nil {
		return err
	}

	record := &models.BanRecord{
		GroupID:         groupID,
		UserID:          userID,
		AdminID:         adminID,
		Reason:          reason,
		DurationSeconds: durationSeconds,
		IssuedAt:        time.Now(),
	}
	if banRepository != nil {
		if err := banRepository.Append(record); err != nil {
			logger.Warningf("Error persisting ban record: %v", err)
		}
	}

	IncrementStat(groupID, models.StatTotalBans, 1)

	if durationSeconds > 0 && sched != nil {
		sched.Schedule(scheduler.Action{
			Kind:    models.ActionUnban,
			GroupID: groupID,
			UserID:  userID,
			FireAt:  time.Now().Add(time.Duration(durationSeconds) * time.Second),
		})
	}

	return nil
}
