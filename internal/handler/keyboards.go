package handler

import (
	"context"
	"fmt"
	"html"

	"github.com/mymmrac/telego"

	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
)

func onOff(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "❌"
}

func mainPanelKeyboard() *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{Text: "🛡 Moderation", CallbackData: "panel:mod"},
				{Text: "⚙️ Settings", CallbackData: "panel:settings"},
			},
			{
				{Text: "📊 Statistics", CallbackData: "panel:stats"},
				{Text: "🔧 Advanced", CallbackData: "panel:advanced"},
			},
			{
				{Text: "✖️ Close", CallbackData: "panel:close"},
			},
		},
	}
}

func moderationPanelKeyboard(groupConfig *models.GroupConfig) *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("Warn limit: %d", groupConfig.WarnLimit), CallbackData: "cycle:warn_limit"},
			},
			{
				{Text: fmt.Sprintf("Flood limit: %d", groupConfig.FloodLimit), CallbackData: "cycle:flood_limit"},
			},
			{
				{Text: fmt.Sprintf("%s Anti-spam", onOff(groupConfig.AntiSpamEnabled)), CallbackData: "toggle:antispam"},
				{Text: fmt.Sprintf("%s Link filter", onOff(groupConfig.FilterEnabled)), CallbackData: "toggle:filter"},
			},
			{
				{Text: "« Back", CallbackData: "panel:main"},
			},
		},
	}
}

func settingsPanelKeyboard(groupConfig *models.GroupConfig) *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("%s Welcome", onOff(groupConfig.WelcomeEnabled)), CallbackData: "toggle:welcome"},
				{Text: fmt.Sprintf("%s Goodbye", onOff(groupConfig.GoodbyeEnabled)), CallbackData: "toggle:goodbye"},
			},
			{
				{Text: fmt.Sprintf("%s Verification", onOff(groupConfig.VerificationEnabled)), CallbackData: "toggle:verification"},
			},
			{
				{Text: "« Back", CallbackData: "panel:main"},
			},
		},
	}
}

func advancedPanelKeyboard(groupConfig *models.GroupConfig) *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("Captcha timeout: %ds", groupConfig.CaptchaTimeout), CallbackData: "cycle:captcha_timeout"},
			},
			{
				{Text: "« Back", CallbackData: "panel:main"},
			},
		},
	}
}

func statsPanelKeyboard() *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			{
				{Text: "« Back", CallbackData: "panel:main"},
			},
		},
	}
}

func panelMainText(groupID int64) string {
	groupConfig := service.GetGroupConfig(groupID)
	name := groupConfig.GroupName
	if name == "" {
		name = fmt.Sprintf("%d", groupID)
	}
	return fmt.Sprintf("<b>Settings for %s</b>\n\nPick a section below.", html.EscapeString(name))
}

func panelModText(groupConfig *models.GroupConfig) string {
	return fmt.Sprintf("<b>Moderation</b>\n\nUsers are muted after %d warnings.\nMessages are treated as flooding beyond %d in 5 seconds.",
		groupConfig.WarnLimit, groupConfig.FloodLimit)
}

func panelSettingsText() string {
	return "<b>Settings</b>\n\nToggle greetings and the verification gate for new members."
}

func panelAdvancedText() string {
	return "<b>Advanced</b>\n\nNew members failing verification are removed after the captcha timeout."
}

func panelStatsText(ctx context.Context, client platform.Client, groupID int64) string {
	stats := service.GetAllStats(groupID)
	text := "<b>Statistics</b>\n"
	if count, err := client.GetMemberCount(ctx, groupID); err == nil {
		text += fmt.Sprintf("\nMembers: %d", count)
	}
	text += fmt.Sprintf("\nBans: %d\nWarnings issued: %d\nDeleted messages: %d",
		stats[models.StatTotalBans], stats[models.StatTotalWarnings], stats[models.StatDeletedMessages])
	return text
}
