package platform

import (
	"context"

	"github.com/mymmrac/telego"
)

// TelegramClient implements Client on top of a telego bot.
type TelegramClient struct {
	bot *telego.Bot
}

// NewTelegramClient wraps a telego bot as a platform client.
func NewTelegramClient(bot *telego.Bot) *TelegramClient {
	return &TelegramClient{bot: bot}
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) (int, error) {
	msg, err := c.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: chatID},
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *TelegramClient) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *telego.InlineKeyboardMarkup) error {
	_, err := c.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:      telego.ChatID{ID: chatID},
		MessageID:   messageID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	return err
}

func (c *TelegramClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
	})
}

func (c *TelegramClient) RestrictMember(ctx context.Context, chatID, userID int64, untilUnix int64) error {
	// Empty permissions revoke everything, including sending messages
	return c.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      telego.ChatID{ID: chatID},
		UserID:      userID,
		Permissions: telego.ChatPermissions{},
		UntilDate:   untilUnix,
	})
}

func (c *TelegramClient) UnrestrictMember(ctx context.Context, chatID, userID int64) error {
	// Restore the group's default permissions rather than a hardcoded set
	chatInfo, err := c.bot.GetChat(ctx, &telego.GetChatParams{
		ChatID: telego.ChatID{ID: chatID},
	})

	permissions := telego.ChatPermissions{}
	if err == nil && chatInfo.Permissions != nil {
		permissions = *chatInfo.Permissions
	}

	return c.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      telego.ChatID{ID: chatID},
		UserID:      userID,
		Permissions: permissions,
	})
}

func (c *TelegramClient) BanMember(ctx context.Context, chatID, userID int64) error {
	return c.bot.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
}

func (c *TelegramClient) UnbanMember(ctx context.Context, chatID, userID int64) error {
	return c.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{
		ChatID:       telego.ChatID{ID: chatID},
		UserID:       userID,
		OnlyIfBanned: true,
	})
}

func (c *TelegramClient) KickMember(ctx context.Context, chatID, userID int64) error {
	// Telegram has no direct kick; ban then immediately unban
	if err := c.bot.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	}); err != nil {
		return err
	}
	return c.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
}

func (c *TelegramClient) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	return c.bot.PinChatMessage(ctx, &telego.PinChatMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
	})
}

func (c *TelegramClient) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	return c.bot.UnpinChatMessage(ctx, &telego.UnpinChatMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
	})
}

func (c *TelegramClient) GetMember(ctx context.Context, chatID, userID int64) (*Member, error) {
	member, err := c.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}

	user := member.MemberUser()
	return &Member{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsBot:     user.IsBot,
		Status:    member.MemberStatus(),
	}, nil
}

func (c *TelegramClient) GetAdministrators(ctx context.Context, chatID int64) ([]*Member, error) {
	admins, err := c.bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: telego.ChatID{ID: chatID},
	})
	if err != nil {
		return nil, err
	}

	members := make([]*Member, 0, len(admins))
	for _, admin := range admins {
		user := admin.MemberUser()
		members = append(members, &Member{
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			IsBot:     user.IsBot,
			Status:    admin.MemberStatus(),
		})
	}
	return members, nil
}

func (c *TelegramClient) GetMemberCount(ctx context.Context, chatID int64) (int, error) {
	count, err := c.bot.GetChatMemberCount(ctx, &telego.GetChatMemberCountParams{
		ChatID: telego.ChatID{ID: chatID},
	})
	if err != nil || count == nil {
		return 0, err
	}
	return *count, nil
}

func (c *TelegramClient) AnswerCallback(ctx context.Context, queryID, text string, showAlert bool) error {
	return c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       showAlert,
	})
}
