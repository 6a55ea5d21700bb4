package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/scheduler"
)

// VerificationKeyboard builds the challenge button for a join challenge.
func VerificationKeyboard(groupID, userID int64) *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{
					Text:         "✅ Verify",
					CallbackData: fmt.Sprintf("verify:%d:%d", groupID, userID),
				},
			},
		},
	}
}

// BeginVerification opens a challenge for a freshly joined user and
// schedules the kick that fires if the challenge is not answered in time.
func BeginVerification(ctx context.Context, client platform.Client, groupID, userID int64, userName string, timeoutSeconds int) error {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}

	// Hold the user silent until the challenge is answered.
	if err := client.RestrictMember(ctx, groupID, userID, 0); err != nil {
		return fmt.Errorf("failed to restrict joining user: %w", err)
	}

	text := fmt.Sprintf("Welcome %s! Please click the button below within %d seconds to verify you're human.",
		userName, timeoutSeconds)

	messageID, err := client.SendMessage(ctx, groupID, text, VerificationKeyboard(groupID, userID))
	if err != nil {
		return fmt.Errorf("failed to send verification challenge: %w", err)
	}

	verificationManager.AddPending(&models.PendingVerification{
		GroupID:   groupID,
		UserID:    userID,
		MessageID: messageID,
		IssuedAt:  time.Now(),
	})

	if sched != nil {
		sched.Schedule(scheduler.Action{
			Kind:      models.ActionVerificationTimeout,
			GroupID:   groupID,
			UserID:    userID,
			MessageID: messageID,
			FireAt:    time.Now().Add(time.Duration(timeoutSeconds) * time.Second),
		})
	}

	logger.Infof("Verification challenge issued for user %d in group %d", userID, groupID)
	return nil
}

// SubmitVerification handles a verify button press. Only the challenged
// user may answer their own challenge; any other submitter is rejected
// without a state change. On success the join restriction is lifted and
// the challenge message is replaced.
func SubmitVerification(ctx context.Context, client platform.Client, groupID, userID, submitterID int64) (bool, error) {
	if submitterID != userID {
		return false, nil
	}

	pending := verificationManager.GetPending(groupID, userID)

	if err := client.UnrestrictMember(ctx, groupID, userID); err != nil {
		logger.Warningf("Error lifting join restriction for %d in %d: %v", userID, groupID, err)
	}

	verificationManager.MarkVerified(groupID, userID, time.Now())
	verificationManager.RemovePending(groupID, userID)
	if pending != nil {
		if err := client.EditMessageText(ctx, groupID, pending.MessageID, "Verification complete, welcome!", nil); err != nil {
			logger.Warningf("Error updating verification message: %v", err)
		}
	}
	if verificationRepository != nil {
		if err := verificationRepository.Upsert(&models.VerificationRecord{
			GroupID:    groupID,
			UserID:     userID,
			VerifiedAt: time.Now(),
		}); err != nil {
			logger.Warningf("Error persisting verification record: %v", err)
		}
	}

	return true, nil
}

// PendingChallenge returns the outstanding challenge for a user, if any.
func PendingChallenge(groupID, userID int64) *models.PendingVerification {
	return verificationManager.GetPending(groupID, userID)
}

// IsVerified reports whether a user completed verification in a group.
func IsVerified(groupID, userID int64) bool {
	return verificationManager.IsVerified(groupID, userID)
}
