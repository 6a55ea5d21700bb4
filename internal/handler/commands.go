package handler

import (
	"fmt"
	"strconv"
	"strings"

	th "github.com/mymmrac/telego/telegohandler"

	"github.com/mymmrac/telego"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
	"tg-moderator/internal/permission"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
	"tg-moderator/internal/timeparse"
)

// dispatchCommand routes slash commands. It reports whether the message was
// a command so the caller can skip the regular message pipeline.
func dispatchCommand(ctx *th.Context, client platform.Client, message telego.Message) (bool, error) {
	if message.From == nil || !strings.HasPrefix(message.Text, "/") {
		return false, nil
	}

	fields := strings.Fields(message.Text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	// Strip the @botname suffix used in groups with multiple bots.
	if at := strings.Index(cmd, "@"); at != -1 {
		if botUsername != "" && !strings.EqualFold(cmd[at+1:], botUsername) {
			return true, nil
		}
		cmd = cmd[:at]
	}

	switch cmd {
	case "/warn":
		return true, handleWarnCommand(ctx, client, message, args)
	case "/warnings":
		return true, handleWarningsCommand(ctx, client, message, args)
	case "/resetwarns":
		return true, handleResetWarnsCommand(ctx, client, message, args)
	case "/mute":
		return true, handleMuteCommand(ctx, client, message, args)
	case "/unmute":
		return true, handleUnmuteCommand(ctx, client, message, args)
	case "/ban":
		return true, handleBanCommand(ctx, client, message, args)
	case "/unban":
		return true, handleUnbanCommand(ctx, client, message, args)
	case "/kick":
		return true, handleKickCommand(ctx, client, message, args)
	case "/pin":
		return true, handlePinCommand(ctx, client, message)
	case "/unpin":
		return true, handleUnpinCommand(ctx, client, message)
	case "/del":
		return true, handleDelCommand(ctx, client, message)
	case "/purge":
		return true, handlePurgeCommand(ctx, client, message)
	case "/rules":
		return true, handleRulesCommand(ctx, client, message)
	case "/setrules":
		return true, handleSetRulesCommand(ctx, client, message)
	case "/id":
		return true, handleIDCommand(ctx, client, message)
	case "/info":
		return true, handleInfoCommand(ctx, client, message, args)
	case "/admins":
		return true, handleAdminsCommand(ctx, client, message)
	case "/report":
		return true, handleReportCommand(ctx, client, message)
	case "/panel", "/settings":
		return true, handlePanelCommand(ctx, client, message)
	case "/addcommand":
		return true, handleAddCommandCommand(ctx, client, message, args)
	case "/delcommand":
		return true, handleDelCommandCommand(ctx, client, message, args)
	case "/commands":
		return true, handleCommandsCommand(ctx, client, message)
	case "/help", "/start":
		return true, sendHelpMessage(ctx, client, message)
	}

	return false, nil
}

// resolveTarget finds the user a moderation command acts on: the sender of
// the replied-to message, or a numeric user ID as the first argument. The
// remaining arguments are returned for duration/reason parsing.
func resolveTarget(message telego.Message, args []string) (int64, []string, error) {
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		return message.ReplyToMessage.From.ID, args, nil
	}

	if len(args) > 0 {
		if userID, err := strconv.ParseInt(args[0], 10, 64); err == nil && userID > 0 {
			return userID, args[1:], nil
		}
	}

	return 0, nil, fmt.Errorf("no target: reply to a message or pass a user ID")
}

// checkActionAllowed enforces the moderation policy for a command: the
// invoker must be a group admin and the target must be actionable. A false
// return means the refusal has already been reported to the invoker.
func checkActionAllowed(ctx *th.Context, client platform.Client, message telego.Message, targetID int64) (*platform.Member, bool) {
	chatID := message.Chat.ID

	actor, err := client.GetMember(ctx.Context(), chatID, message.From.ID)
	if err != nil {
		logger.Warningf("Error getting chat member %d in %d: %v", message.From.ID, chatID, err)
		reply(ctx, client, chatID, "Could not verify your permissions.")
		return nil, false
	}

	actorIsOwner := actor.Status == telego.MemberStatusCreator || message.From.ID == globalConfig.Bot.OwnerID
	if !actorIsOwner && actor.Status != telego.MemberStatusAdministrator {
		reply(ctx, client, chatID, "Only group administrators can use this command.")
		return nil, false
	}

	target, err := client.GetMember(ctx.Context(), chatID, targetID)
	if err != nil {
		logger.Warningf("Error getting target member %d in %d: %v", targetID, chatID, err)
		reply(ctx, client, chatID, "Could not find that user in this group.")
		return nil, false
	}

	decision := permission.CanAct(message.From.ID, permission.Target{
		UserID: target.UserID,
		IsBot:  target.IsBot,
		Status: target.Status,
	}, actorIsOwner)
	if !decision.Allow() {
		reply(ctx, client, chatID, decision.Reason())
		return nil, false
	}

	return target, true
}

// parseDurationAndReason splits command arguments into an optional leading
// duration token and a free-form reason. A token that merely looks like a
// duration attempt but does not parse is folded into the reason.
func parseDurationAndReason(args []string) (timeparse.Duration, string) {
	if len(args) == 0 {
		return timeparse.Duration{}, ""
	}
	d := timeparse.Parse(args[0])
	if d.Kind == timeparse.Valid {
		return d, strings.Join(args[1:], " ")
	}
	return timeparse.Duration{}, strings.Join(args, " ")
}

func handleWarnCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, rest, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Reply to a message or pass a user ID to warn someone.")
	}

	target, ok := checkActionAllowed(ctx, client, message, targetID)
	if !ok {
		return nil
	}

	reason := strings.Join(rest, " ")
	result, err := service.Warn(ctx.Context(), client, message.Chat.ID, targetID, message.From.ID, reason)
	if err != nil {
		logger.Errorf("Error warning user %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not apply the warning, please try again.")
	}

	if result.Escalated {
		text := fmt.Sprintf("%s reached %d/%d warnings and has been muted.",
			linkedMember(target), result.Limit, result.Limit)
		logAction(ctx.Context(), client, fmt.Sprintf("Muted %d in %d after %d warnings", targetID, message.Chat.ID, result.Limit))
		return reply(ctx, client, message.Chat.ID, text)
	}

	text := fmt.Sprintf("%s has been warned (%d/%d).", linkedMember(target), result.Count, result.Limit)
	if reason != "" {
		text += fmt.Sprintf("\nReason: %s", reason)
	}
	return reply(ctx, client, message.Chat.ID, text)
}

func handleWarningsCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, _, err := resolveTarget(message, args)
	if err != nil {
		targetID = message.From.ID
	}

	count := service.WarningCount(message.Chat.ID, targetID)
	limit := service.GetGroupConfig(message.Chat.ID).WarnLimit
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("User %d has %d/%d warnings.", targetID, count, limit))
}

func handleResetWarnsCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, _, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Reply to a message or pass a user ID to reset warnings.")
	}

	target, ok := checkActionAllowed(ctx, client, message, targetID)
	if !ok {
		return nil
	}

	service.ResetWarnings(message.Chat.ID, targetID)
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("Warnings for %s have been reset.", linkedMember(target)))
}

func handleMuteCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, rest, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Reply to a message or pass a user ID to mute someone.")
	}

	target, ok := checkActionAllowed(ctx, client, message, targetID)
	if !ok {
		return nil
	}

	duration, reason := parseDurationAndReason(rest)
	if err := service.Mute(ctx.Context(), client, message.Chat.ID, targetID, duration.Seconds()); err != nil {
		logger.Errorf("Error muting user %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not mute the user, please try again.")
	}

	text := fmt.Sprintf("%s has been muted", linkedMember(target))
	if duration.Kind == timeparse.Valid {
		text += fmt.Sprintf(" for %s", rest[0])
	} else {
		text += " indefinitely"
	}
	text += "."
	if reason != "" {
		text += fmt.Sprintf("\nReason: %s", reason)
	}
	logAction(ctx.Context(), client, fmt.Sprintf("Muted %d in %d (admin %d)", targetID, message.Chat.ID, message.From.ID))
	return reply(ctx, client, message.Chat.ID, text)
}

func handleUnmuteCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, _, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Reply to a message or pass a user ID to unmute someone.")
	}

	target, ok := checkActionAllowed(ctx, client, message, targetID)
	if !ok {
		return nil
	}

	if err := service.Unmute(ctx.Context(), client, message.Chat.ID, targetID); err != nil {
		logger.Errorf("Error unmuting user %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not unmute the user, please try again.")
	}
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("%s can speak again.", linkedMember(target)))
}

func handleBanCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, rest, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Reply to a message or pass a user ID to ban someone.")
	}

	target, ok := checkActionAllowed(ctx, client, message, targetID)
	if !ok {
		return nil
	}

	duration, reason := parseDurationAndReason(rest)
	if err := service.Ban(ctx.Context(), client, message.Chat.ID, targetID, message.From.ID, reason, duration.Seconds()); err != nil {
		logger.Errorf("Error banning user %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not ban the user, please try again.")
	}

	text := fmt.Sprintf("%s has been banned", linkedMember(target))
	if duration.Kind == timeparse.Valid {
		text += fmt.Sprintf(" for %s", rest[0])
	}
	text += "."
	if reason != "" {
		text += fmt.Sprintf("\nReason: %s", reason)
	}
	logAction(ctx.Context(), client, fmt.Sprintf("Banned %d in %d (admin %d): %s", targetID, message.Chat.ID, message.From.ID, reason))
	return reply(ctx, client, message.Chat.ID, text)
}

func handleUnbanCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, _, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Pass the user ID to unban.")
	}

	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	if err := client.UnbanMember(ctx.Context(), message.Chat.ID, targetID); err != nil {
		logger.Errorf("Error unbanning user %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not unban the user, please try again.")
	}
	logAction(ctx.Context(), client, fmt.Sprintf("Unbanned %d in %d (admin %d)", targetID, message.Chat.ID, message.From.ID))
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("User %d has been unbanned.", targetID))
}

func handleKickCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, _, err := resolveTarget(message, args)
	if err != nil {
		return reply(ctx, client, message.Chat.ID, "Reply to a message or pass a user ID to kick someone.")
	}

	target, ok := checkActionAllowed(ctx, client, message, targetID)
	if !ok {
		return nil
	}

	if err := client.KickMember(ctx.Context(), message.Chat.ID, targetID); err != nil {
		logger.Errorf("Error kicking user %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not kick the user, please try again.")
	}
	logAction(ctx.Context(), client, fmt.Sprintf("Kicked %d in %d (admin %d)", targetID, message.Chat.ID, message.From.ID))
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("%s has been removed from the group.", linkedMember(target)))
}

func handlePinCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	if message.ReplyToMessage == nil {
		return reply(ctx, client, message.Chat.ID, "Reply to the message you want to pin.")
	}

	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	if err := client.PinMessage(ctx.Context(), message.Chat.ID, message.ReplyToMessage.MessageID); err != nil {
		logger.Errorf("Error pinning message in %d: %v", message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not pin the message.")
	}
	return nil
}

func handleUnpinCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	messageID := 0
	if message.ReplyToMessage != nil {
		messageID = message.ReplyToMessage.MessageID
	}
	if err := client.UnpinMessage(ctx.Context(), message.Chat.ID, messageID); err != nil {
		logger.Errorf("Error unpinning message in %d: %v", message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not unpin the message.")
	}
	return nil
}

func handleDelCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	if message.ReplyToMessage == nil {
		return reply(ctx, client, message.Chat.ID, "Reply to the message you want to delete.")
	}

	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	if err := client.DeleteMessage(ctx.Context(), message.Chat.ID, message.ReplyToMessage.MessageID); err != nil {
		logger.Warningf("Error deleting message %d in %d: %v", message.ReplyToMessage.MessageID, message.Chat.ID, err)
	} else {
		service.IncrementStat(message.Chat.ID, models.StatDeletedMessages, 1)
	}
	// Remove the command message too, keeping the chat clean.
	client.DeleteMessage(ctx.Context(), message.Chat.ID, message.MessageID)
	return nil
}

// handlePurgeCommand deletes every message between the replied-to message
// and the command, inclusive. Individual delete failures are skipped since
// Telegram refuses deletes on messages older than 48 hours.
func handlePurgeCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	if message.ReplyToMessage == nil {
		return reply(ctx, client, message.Chat.ID, "Reply to the first message you want to purge.")
	}

	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	deleted := int64(0)
	for id := message.ReplyToMessage.MessageID; id <= message.MessageID; id++ {
		if err := client.DeleteMessage(ctx.Context(), message.Chat.ID, id); err == nil {
			deleted++
		}
	}
	service.IncrementStat(message.Chat.ID, models.StatDeletedMessages, deleted)
	logAction(ctx.Context(), client, fmt.Sprintf("Purged %d messages in %d (admin %d)", deleted, message.Chat.ID, message.From.ID))
	return nil
}
