package handler

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
)

func handleRulesCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	groupConfig := service.GetGroupConfig(message.Chat.ID)
	if groupConfig.Rules == "" {
		return reply(ctx, client, message.Chat.ID, "No rules have been set for this group. Admins can set them with /setrules.")
	}
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("<b>Group rules</b>\n\n%s", html.EscapeString(groupConfig.Rules)))
}

func handleSetRulesCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	rules := strings.TrimSpace(strings.TrimPrefix(message.Text, "/setrules"))
	if rules == "" {
		return reply(ctx, client, message.Chat.ID, "Usage: /setrules &lt;rules text&gt;")
	}

	groupConfig := service.GetGroupConfig(message.Chat.ID)
	groupConfig.Rules = rules
	service.UpdateGroupConfig(groupConfig)
	return reply(ctx, client, message.Chat.ID, "Group rules updated.")
}

func handleIDCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	text := fmt.Sprintf("Chat ID: <code>%d</code>\nYour ID: <code>%d</code>", message.Chat.ID, message.From.ID)
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		text += fmt.Sprintf("\nReplied user ID: <code>%d</code>", message.ReplyToMessage.From.ID)
	}
	return reply(ctx, client, message.Chat.ID, text)
}

func handleInfoCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	targetID, _, err := resolveTarget(message, args)
	if err != nil {
		targetID = message.From.ID
	}

	member, err := client.GetMember(ctx.Context(), message.Chat.ID, targetID)
	if err != nil {
		logger.Warningf("Error getting member %d in %d: %v", targetID, message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not find that user in this group.")
	}

	warnings := service.WarningCount(message.Chat.ID, targetID)
	limit := service.GetGroupConfig(message.Chat.ID).WarnLimit

	text := fmt.Sprintf("<b>User info</b>\nName: %s\nID: <code>%d</code>\nStatus: %s\nWarnings: %d/%d",
		linkedMember(member), member.UserID, member.Status, warnings, limit)
	if until, ok := service.MuteUntil(message.Chat.ID, targetID); ok {
		if until == 0 {
			text += "\nMuted: indefinitely"
		} else {
			text += fmt.Sprintf("\nMuted until: %d", until)
		}
	}
	return reply(ctx, client, message.Chat.ID, text)
}

func handleAdminsCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	admins, err := client.GetAdministrators(ctx.Context(), message.Chat.ID)
	if err != nil {
		logger.Warningf("Error getting administrators of %d: %v", message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not fetch the administrator list.")
	}

	var lines []string
	for _, admin := range admins {
		if admin.IsBot {
			continue
		}
		marker := ""
		if admin.Status == telego.MemberStatusCreator {
			marker = " (owner)"
		}
		lines = append(lines, fmt.Sprintf("• %s%s", linkedMember(admin), marker))
	}
	return reply(ctx, client, message.Chat.ID, "<b>Administrators</b>\n"+strings.Join(lines, "\n"))
}

// handleReportCommand forwards a report to every human admin via the group
// itself. The reported message must be a reply.
func handleReportCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	if message.ReplyToMessage == nil || message.ReplyToMessage.From == nil {
		return reply(ctx, client, message.Chat.ID, "Reply to the message you want to report.")
	}

	admins, err := client.GetAdministrators(ctx.Context(), message.Chat.ID)
	if err != nil {
		logger.Warningf("Error getting administrators of %d: %v", message.Chat.ID, err)
		return reply(ctx, client, message.Chat.ID, "Could not notify the administrators.")
	}

	var mentions []string
	for _, admin := range admins {
		if admin.IsBot {
			continue
		}
		mentions = append(mentions, linkedMember(admin))
	}

	text := fmt.Sprintf("%s reported a message from %s.\n%s",
		linkedUser(*message.From), linkedUser(*message.ReplyToMessage.From), strings.Join(mentions, " "))
	logAction(ctx.Context(), client, fmt.Sprintf("Report in %d: user %d reported message %d from %d",
		message.Chat.ID, message.From.ID, message.ReplyToMessage.MessageID, message.ReplyToMessage.From.ID))
	return reply(ctx, client, message.Chat.ID, text)
}

func handleAddCommandCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	if len(args) < 2 {
		return reply(ctx, client, message.Chat.ID, "Usage: /addcommand &lt;name&gt; &lt;response text&gt;")
	}

	name := strings.TrimPrefix(strings.ToLower(args[0]), "/")
	response := strings.Join(args[1:], " ")
	service.AddCustomCommand(message.Chat.ID, name, response)
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("Custom command /%s saved.", name))
}

func handleDelCommandCommand(ctx *th.Context, client platform.Client, message telego.Message, args []string) error {
	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	if len(args) < 1 {
		return reply(ctx, client, message.Chat.ID, "Usage: /delcommand &lt;name&gt;")
	}

	name := strings.TrimPrefix(strings.ToLower(args[0]), "/")
	service.RemoveCustomCommand(message.Chat.ID, name)
	return reply(ctx, client, message.Chat.ID, fmt.Sprintf("Custom command /%s removed.", name))
}

func handleCommandsCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	names := service.ListCustomCommands(message.Chat.ID)
	if len(names) == 0 {
		return reply(ctx, client, message.Chat.ID, "No custom commands in this group.")
	}
	sort.Strings(names)
	for i, name := range names {
		names[i] = "/" + name
	}
	return reply(ctx, client, message.Chat.ID, "<b>Custom commands</b>\n"+strings.Join(names, "\n"))
}

func handlePanelCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	if message.Chat.Type == telego.ChatTypePrivate {
		return reply(ctx, client, message.Chat.ID, "Use /panel inside the group you want to configure.")
	}

	isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID)
	if err != nil || !isAdmin {
		return reply(ctx, client, message.Chat.ID, "Only group administrators can use this command.")
	}

	_, err = client.SendMessage(ctx.Context(), message.Chat.ID, panelMainText(message.Chat.ID), mainPanelKeyboard())
	return err
}

func sendHelpMessage(ctx *th.Context, client platform.Client, message telego.Message) error {
	helpText := "<b>Moderation bot</b>\n\n" +
		"Admin commands:\n" +
		"/warn – warn a user (reply or user ID)\n" +
		"/warnings – show a user's warning count\n" +
		"/resetwarns – clear a user's warnings\n" +
		"/mute [duration] – mute a user, e.g. /mute 2h\n" +
		"/unmute – lift a mute\n" +
		"/ban [duration] – ban a user, e.g. /ban 7d spam\n" +
		"/unban – lift a ban\n" +
		"/kick – remove a user without banning\n" +
		"/pin, /unpin – manage pinned messages\n" +
		"/del, /purge – delete messages\n" +
		"/setrules – set the group rules\n" +
		"/addcommand, /delcommand – manage custom commands\n" +
		"/panel – open the settings panel\n\n" +
		"Everyone:\n" +
		"/rules, /id, /info, /admins, /commands, /report\n\n" +
		"Durations use a number plus a unit: 30m, 2h, 7d, 1w."
	return reply(ctx, client, message.Chat.ID, helpText)
}
