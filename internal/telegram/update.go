package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"legalbot/internal/bot"
)

var ErrBadUpdate = errors.New("telegram: malformed update")

// ParseUpdate decodes a webhook body. Updates the bot does not handle decode to an event of kind "other".
func ParseUpdate(r io.Reader) (bot.Event, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r).Decode(&update); err != nil {
		return bot.Event{}, fmt.Errorf("%w: %v", ErrBadUpdate, err)
	}
	return EventFromUpdate(update), nil
}

func EventFromUpdate(update tgbotapi.Update) bot.Event {
	ev := bot.Event{UpdateID: update.UpdateID}

	if cq := update.CallbackQuery; cq != nil {
		ev.CallbackID = cq.ID
		ev.CallbackData = cq.Data
		if cq.From != nil {
			fillUser(&ev, cq.From)
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				ev.ChatID = cq.Message.Chat.ID
			}
		}
		if ev.ChatID == 0 {
			ev.ChatID = ev.UserID
		}
		return ev
	}

	msg := update.Message
	if msg == nil {
		return ev
	}
	ev.MessageID = msg.MessageID
	if msg.Chat != nil {
		ev.ChatID = msg.Chat.ID
	}
	if msg.From != nil {
		fillUser(&ev, msg.From)
	}
	ev.Text = strings.TrimSpace(msg.Text)
	if msg.IsCommand() {
		ev.Command = strings.ToLower(msg.Command())
		ev.Args = strings.TrimSpace(msg.CommandArguments())
	}
	if doc := msg.Document; doc != nil {
		ev.Document = &bot.Document{
			FileID:   doc.FileID,
			FileName: doc.FileName,
			MimeType: doc.MimeType,
			Size:     int64(doc.FileSize),
		}
	}
	return ev
}

func fillUser(ev *bot.Event, u *tgbotapi.User) {
	ev.UserID = u.ID
	ev.Username = u.UserName
	ev.FirstName = u.FirstName
}
