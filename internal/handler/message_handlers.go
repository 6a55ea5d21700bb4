package handler

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-moderator/internal/logger"
	"tg-moderator/internal/models"
	"tg-moderator/internal/platform"
	"tg-moderator/internal/service"
)

var tgLinkRegex = regexp.MustCompile(`t\.me/`)

const floodWindow = 5 * time.Second

// floodTracker counts messages per user inside a sliding window.
type floodTracker struct {
	mu      sync.Mutex
	history map[groupUserKey][]time.Time
}

type groupUserKey struct {
	groupID int64
	userID  int64
}

func newFloodTracker() *floodTracker {
	return &floodTracker{history: make(map[groupUserKey][]time.Time)}
}

// record registers a message and returns the number of messages the user
// sent inside the current window.
func (t *floodTracker) record(groupID, userID int64, at time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := groupUserKey{groupID, userID}
	cutoff := at.Add(-floodWindow)
	kept := t.history[key][:0]
	for _, ts := range t.history[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, at)
	t.history[key] = kept
	return len(kept)
}

func (t *floodTracker) reset(groupID, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.history, groupUserKey{groupID, userID})
}

var floods = newFloodTracker()

// handleIncomingMessage processes regular (non-command) group messages
func handleIncomingMessage(ctx *th.Context, client platform.Client, message telego.Message) error {
	if message.From == nil || message.From.IsBot || message.From.ID == botID {
		return nil
	}

	if message.Chat.Type == telego.ChatTypePrivate {
		return sendHelpMessage(ctx, client, message)
	}

	groupConfig := service.GetGroupConfig(message.Chat.ID)

	if groupConfig.AntiSpamEnabled {
		if handled, err := checkFlood(ctx, client, message, groupConfig.FloodLimit); handled {
			return err
		}
	}

	if groupConfig.FilterEnabled {
		if handled, err := checkLinkFilter(ctx, client, message); handled {
			return err
		}
	}

	return answerCustomCommand(ctx, client, message)
}

// checkFlood deletes messages beyond the flood limit and briefly mutes the
// sender. Admins are exempt.
func checkFlood(ctx *th.Context, client platform.Client, message telego.Message, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	count := floods.record(message.Chat.ID, message.From.ID, time.Now())
	if count <= limit {
		return false, nil
	}

	if isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID); err == nil && isAdmin {
		return false, nil
	}

	logger.Infof("Flood detected in %d from user %d: %d messages in %s", message.Chat.ID, message.From.ID, count, floodWindow)

	if err := client.DeleteMessage(ctx.Context(), message.Chat.ID, message.MessageID); err != nil {
		logger.Warningf("Error deleting flood message: %v", err)
	} else {
		service.IncrementStat(message.Chat.ID, models.StatDeletedMessages, 1)
	}

	floods.reset(message.Chat.ID, message.From.ID)
	if err := service.Mute(ctx.Context(), client, message.Chat.ID, message.From.ID, 60); err != nil {
		logger.Warningf("Error muting flooding user %d: %v", message.From.ID, err)
		return true, nil
	}

	logAction(ctx.Context(), client, fmt.Sprintf("Muted %d in %d for flooding", message.From.ID, message.Chat.ID))
	return true, reply(ctx, client, message.Chat.ID, fmt.Sprintf("%s has been muted for 60 seconds for flooding.", linkedUser(*message.From)))
}

// checkLinkFilter removes messages carrying Telegram invite links from
// non-admins.
func checkLinkFilter(ctx *th.Context, client platform.Client, message telego.Message) (bool, error) {
	text := message.Text
	if text == "" {
		text = message.Caption
	}
	if text == "" || !tgLinkRegex.MatchString(text) {
		return false, nil
	}

	if isAdmin, err := isUserAdmin(ctx.Context(), client, message.Chat.ID, message.From.ID); err == nil && isAdmin {
		return false, nil
	}

	if err := client.DeleteMessage(ctx.Context(), message.Chat.ID, message.MessageID); err != nil {
		logger.Warningf("Error deleting filtered message: %v", err)
		return true, nil
	}

	service.IncrementStat(message.Chat.ID, models.StatDeletedMessages, 1)
	logAction(ctx.Context(), client, fmt.Sprintf("Deleted a link message from %d in %d", message.From.ID, message.Chat.ID))
	return true, nil
}

// answerCustomCommand replies with the stored response when a message
// invokes a group's custom command.
func answerCustomCommand(ctx *th.Context, client platform.Client, message telego.Message) error {
	if !strings.HasPrefix(message.Text, "/") {
		return nil
	}

	name := strings.ToLower(strings.Fields(message.Text)[0])
	name = strings.TrimPrefix(name, "/")
	if at := strings.Index(name, "@"); at != -1 {
		name = name[:at]
	}

	response, ok := service.GetCustomCommand(message.Chat.ID, name)
	if !ok {
		return nil
	}
	return reply(ctx, client, message.Chat.ID, response)
}
