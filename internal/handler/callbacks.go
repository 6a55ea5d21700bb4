package handler

import (
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
)

// HandleCallbackQuery processes callback queries from inline keyboards
func HandleCallbackQuery(ctx *th.Context, client platform.Client, query telego.CallbackQuery) error {
	if query.Data == "" {
		return nil
	}

	logger.Infof("Received callback query: %s", query.Data)

	switch {
	case strings.HasPrefix(query.Data, "verify:"):
		return handleVerifyCallback(ctx, client, query)
	case strings.HasPrefix(query.Data, "panel:"):
		return handlePanelCallback(ctx, client, query)
	case strings.HasPrefix(query.Data, "toggle:"):
		return handleToggleCallback(ctx, client, query)
	case strings.HasPrefix(query.Data, "cycle:"):
		return handleCycleCallback(ctx, client, query)
	}

	return nil
}

// handleVerifyCallback processes a press on the join-challenge button.
func handleVerifyCallback(ctx *th.Context, client platform.Client, query telego.CallbackQuery) error {
	groupID, userID, err := getGroupAndUserID(query.Data)
	if err != nil {
		logger.Warningf("Invalid callback data in verify callback: %s", query.Data)
		return nil
	}

	verified, err := service.SubmitVerification(ctx.Context(), client, groupID, userID, query.From.ID)
	if err != nil {
		logger.Errorf("Error submitting verification for %d in %d: %v", userID, groupID, err)
		return client.AnswerCallback(ctx.Context(), query.ID, "Something went wrong, try again.", true)
	}

	if !verified {
		return client.AnswerCallback(ctx.Context(), query.ID, "This button is not for you.", true)
	}

	return client.AnswerCallback(ctx.Context(), query.ID, "You are verified, welcome!", false)
}

// panelMessage resolves the chat the panel lives in. Panels only exist on
// messages the bot sent into a group.
func panelMessage(query telego.CallbackQuery) (*telego.Message, int64, bool) {
	message := query.Message
	if message == nil {
		return nil, 0, false
	}
	msg, ok := message.(*telego.Message)
	if !ok {
		return nil, 0, false
	}
	return msg, msg.Chat.ID, true
}

func requirePanelAdmin(ctx *th.Context, client platform.Client, query telego.CallbackQuery, groupID int64) bool {
	isAdmin, err := isUserAdmin(ctx.Context(), client, groupID, query.From.ID)
	if err != nil || !isAdmin {
		client.AnswerCallback(ctx.Context(), query.ID, "Only group administrators can change settings.", true)
		return false
	}
	return true
}

func handlePanelCallback(ctx *th.Context, client platform.Client, query telego.CallbackQuery) error {
	msg, groupID, ok := panelMessage(query)
	if !ok {
		return nil
	}
	if !requirePanelAdmin(ctx, client, query, groupID) {
		return nil
	}

	section := strings.TrimPrefix(query.Data, "panel:")
	if section == "close" {
		if err := client.DeleteMessage(ctx.Context(), groupID, msg.MessageID); err != nil {
			logger.Warningf("Error closing panel in %d: %v", groupID, err)
		}
		return client.AnswerCallback(ctx.Context(), query.ID, "", false)
	}

	if err := renderPanel(ctx, client, groupID, msg.MessageID, section); err != nil {
		logger.Warningf("Error rendering panel %s in %d: %v", section, groupID, err)
	}
	return client.AnswerCallback(ctx.Context(), query.ID, "", false)
}

func renderPanel(ctx *th.Context, client platform.Client, groupID int64, messageID int, section string) error {
	groupConfig := service.GetGroupConfig(groupID)

	switch section {
	case "mod":
		return client.EditMessageText(ctx.Context(), groupID, messageID, panelModText(groupConfig), moderationPanelKeyboard(groupConfig))
	case "settings":
		return client.EditMessageText(ctx.Context(), groupID, messageID, panelSettingsText(), settingsPanelKeyboard(groupConfig))
	case "advanced":
		return client.EditMessageText(ctx.Context(), groupID, messageID, panelAdvancedText(), advancedPanelKeyboard(groupConfig))
	case "stats":
		return client.EditMessageText(ctx.Context(), groupID, messageID, panelStatsText(ctx.Context(), client, groupID), statsPanelKeyboard())
	default:
		return client.EditMessageText(ctx.Context(), groupID, messageID, panelMainText(groupID), mainPanelKeyboard())
	}
}

func handleToggleCallback(ctx *th.Context, client platform.Client, query telego.CallbackQuery) error {
	msg, groupID, ok := panelMessage(query)
	if !ok {
		return nil
	}
	if !requirePanelAdmin(ctx, client, query, groupID) {
		return nil
	}

	groupConfig := service.GetGroupConfig(groupID)
	section := "settings"
	switch strings.TrimPrefix(query.Data, "toggle:") {
	case "antispam":
		groupConfig.AntiSpamEnabled = !groupConfig.AntiSpamEnabled
		section = "mod"
	case "filter":
		groupConfig.FilterEnabled = !groupConfig.FilterEnabled
		section = "mod"
	case "welcome":
		groupConfig.WelcomeEnabled = !groupConfig.WelcomeEnabled
	case "goodbye":
		groupConfig.GoodbyeEnabled = !groupConfig.GoodbyeEnabled
	case "verification":
		groupConfig.VerificationEnabled = !groupConfig.VerificationEnabled
	default:
		return nil
	}
	service.UpdateGroupConfig(groupConfig)

	if err := renderPanel(ctx, client, groupID, msg.MessageID, section); err != nil {
		logger.Warningf("Error rendering panel after toggle in %d: %v", groupID, err)
	}
	return client.AnswerCallback(ctx.Context(), query.ID, "Setting updated.", false)
}

// handleCycleCallback steps a numeric setting through its preset values.
func handleCycleCallback(ctx *th.Context, client platform.Client, query telego.CallbackQuery) error {
	msg, groupID, ok := panelMessage(query)
	if !ok {
		return nil
	}
	if !requirePanelAdmin(ctx, client, query, groupID) {
		return nil
	}

	groupConfig := service.GetGroupConfig(groupID)
	section := "mod"
	switch strings.TrimPrefix(query.Data, "cycle:") {
	case "warn_limit":
		groupConfig.WarnLimit = nextPreset(groupConfig.WarnLimit, []int{2, 3, 4, 5, 6})
	case "flood_limit":
		groupConfig.FloodLimit = nextPreset(groupConfig.FloodLimit, []int{3, 5, 8, 10})
	case "captcha_timeout":
		groupConfig.CaptchaTimeout = nextPreset(groupConfig.CaptchaTimeout, []int{30, 60, 120, 300})
		section = "advanced"
	default:
		return nil
	}
	service.UpdateGroupConfig(groupConfig)

	if err := renderPanel(ctx, client, groupID, msg.MessageID, section); err != nil {
		logger.Warningf("Error rendering panel after cycle in %d: %v", groupID, err)
	}
	return client.AnswerCallback(ctx.Context(), query.ID, "Setting updated.", false)
}

// nextPreset returns the preset after the current value, wrapping around.
// An off-list value snaps to the first preset.
func nextPreset(current int, presets []int) int {
	for i, v := range presets {
		if v == current {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}
