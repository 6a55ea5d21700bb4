package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-moderator/internal/config"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
)

var (
	globalConfig *config.Config

	botID       int64
	botUsername string
)

// Initialize initializes the handler with configuration
func Initialize(cfg *config.Config) {
	globalConfig = cfg
	service.Initialize(cfg)
}

// SetupMessageHandlers configures all bot message and update handlers
func SetupMessageHandlers(bh *th.BotHandler, bot *telego.Bot, client platform.Client) {
	botID = bot.ID()

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		ok, err := dispatchCommand(ctx, client, message)
		if ok {
			return err
		}

		return handleIncomingMessage(ctx, client, message)
	})

	bh.Handle(func(ctx *th.Context, update telego.Update) error {
		return handleChatMemberUpdate(ctx, client, update)
	}, th.AnyChatMember())

	bh.Handle(func(ctx *th.Context, update telego.Update) error {
		return handleMyChatMemberUpdate(ctx, client, update)
	}, th.AnyMyChatMember())

	bh.HandleCallbackQuery(func(ctx *th.Context, query telego.CallbackQuery) error {
		return HandleCallbackQuery(ctx, client, query)
	})
}

// SetBotUsername records the bot's username so commands addressed as
// /cmd@botname are recognized.
func SetBotUsername(username string) {
	botUsername = username
}
