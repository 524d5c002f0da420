package telegram

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot posts HTML messages to one chat.
type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//api.Debug = true

	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

// Send posts text and returns the id of the created message.
func (b *Bot) Send(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram send failed: %w", err)
	}
	return sent.MessageID, nil
}

func (b *Bot) SendStatus(ctx context.Context, message string) error {
	_, err := b.Send(ctx, "ℹ️ "+html.EscapeString(message))
	return err
}

func (b *Bot) SendError(ctx context.Context, errReq error) error {
	_, err := b.Send(ctx, "⚠️ <b>GeoJob Error</b>:\n"+html.EscapeString(errReq.Error()))
	return err
}
