package handler

import (
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
)

func memberJoined(oldStatus, newStatus string) bool {
	wasIn := oldStatus == telego.MemberStatusMember || oldStatus == telego.MemberStatusAdministrator ||
		oldStatus == telego.MemberStatusCreator || oldStatus == telego.MemberStatusRestricted
	isIn := newStatus == telego.MemberStatusMember || newStatus == telego.MemberStatusRestricted
	return !wasIn && isIn
}

func memberLeft(oldStatus, newStatus string) bool {
	wasIn := oldStatus == telego.MemberStatusMember || oldStatus == telego.MemberStatusAdministrator ||
		oldStatus == telego.MemberStatusRestricted
	isOut := newStatus == telego.MemberStatusLeft || newStatus == telego.MemberStatusBanned
	return wasIn && isOut
}

// handleChatMemberUpdate reacts to users joining and leaving a group.
func handleChatMemberUpdate(ctx *th.Context, client platform.Client, update telego.Update) error {
	if update.ChatMember == nil {
		return nil
	}

	chatID := update.ChatMember.Chat.ID
	user := update.ChatMember.NewChatMember.MemberUser()
	oldStatus := update.ChatMember.OldChatMember.MemberStatus()
	newStatus := update.ChatMember.NewChatMember.MemberStatus()

	logger.Debugf("Chat member update in %d: user %d %s -> %s", chatID, user.ID, oldStatus, newStatus)

	if user.IsBot {
		return nil
	}

	switch {
	case memberJoined(oldStatus, newStatus):
		return handleMemberJoined(ctx, client, chatID, user)
	case memberLeft(oldStatus, newStatus):
		return handleMemberLeft(ctx, client, chatID, user)
	}
	return nil
}

func handleMemberJoined(ctx *th.Context, client platform.Client, chatID int64, user telego.User) error {
	groupConfig := service.GetGroupConfig(chatID)

	if groupConfig.VerificationEnabled && !service.IsVerified(chatID, user.ID) {
		if err := service.BeginVerification(ctx.Context(), client, chatID, user.ID, linkedUser(user), groupConfig.CaptchaTimeout); err != nil {
			logger.Errorf("Error starting verification for %d in %d: %v", user.ID, chatID, err)
		}
		return nil
	}

	if groupConfig.WelcomeEnabled {
		text := fmt.Sprintf("Welcome %s!", linkedUser(user))
		if groupConfig.Rules != "" {
			text += "\nPlease read the group rules with /rules."
		}
		return reply(ctx, client, chatID, text)
	}
	return nil
}

func handleMemberLeft(ctx *th.Context, client platform.Client, chatID int64, user telego.User) error {
	groupConfig := service.GetGroupConfig(chatID)
	if !groupConfig.GoodbyeEnabled {
		return nil
	}

	name := html.EscapeString(user.FirstName)
	return reply(ctx, client, chatID, fmt.Sprintf("Goodbye %s.", name))
}

// handleMyChatMemberUpdate tracks the bot's own membership so a group's
// configuration is materialized as soon as the bot is added.
func handleMyChatMemberUpdate(ctx *th.Context, client platform.Client, update telego.Update) error {
	if update.MyChatMember == nil {
		return nil
	}

	chatID := update.MyChatMember.Chat.ID
	newStatus := update.MyChatMember.NewChatMember.MemberStatus()
	logger.Infof("Bot status in %d changed to %s", chatID, newStatus)

	if newStatus == telego.MemberStatusAdministrator || newStatus == telego.MemberStatusMember {
		groupConfig := service.GetGroupConfig(chatID)
		if groupConfig.GroupName != update.MyChatMember.Chat.Title {
			groupConfig.GroupName = update.MyChatMember.Chat.Title
			service.UpdateGroupConfig(groupConfig)
		}
		logAction(ctx.Context(), client, fmt.Sprintf("Added to group %s (%d) as %s",
			update.MyChatMember.Chat.Title, chatID, newStatus))
	}
	return nil
}
