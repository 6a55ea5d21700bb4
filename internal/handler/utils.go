package handler

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/platform"
)

// isUserAdmin checks if a user is an admin in a chat
func isUserAdmin(ctx context.Context, client platform.Client, chatID int64, userID int64) (bool, error) {
	member, err := client.GetMember(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	return member.Status == telego.MemberStatusCreator ||
		member.Status == telego.MemberStatusAdministrator, nil
}

func getGroupAndUserID(data string) (int64, int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid data format: %s", data)
	}

	groupID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid group ID: %v", err)
	}

	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user ID: %v", err)
	}

	return groupID, userID, nil
}

// linkedUserName returns an HTML mention link for a user.
func linkedUserName(userID int64, firstName, lastName string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		name = strconv.FormatInt(userID, 10)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}

func linkedMember(m *platform.Member) string {
	return linkedUserName(m.UserID, m.FirstName, m.LastName)
}

func linkedUser(user telego.User) string {
	return linkedUserName(user.ID, user.FirstName, user.LastName)
}

// reply sends a plain HTML message into the chat the command came from.
func reply(ctx *th.Context, client platform.Client, chatID int64, text string) error {
	_, err := client.SendMessage(ctx.Context(), chatID, text, nil)
	return err
}

// logAction mirrors a moderation action into the configured log channel.
// Failures are logged and swallowed so the log channel never blocks
// moderation itself.
func logAction(ctx context.Context, client platform.Client, text string) {
	if globalConfig == nil || globalConfig.Bot.LogChannelID == 0 {
		return
	}
	if _, err := client.SendMessage(ctx, globalConfig.Bot.LogChannelID, text, nil); err != nil {
		logger.Warningf("Error sending to log channel: %v", err)
	}
}
