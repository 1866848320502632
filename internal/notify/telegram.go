package notify

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI the sender needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender posts a one-line summary to the operator chat.
type TelegramSender struct {
	bot    BotAPI
	chatID int64
}

// NewTelegramSender authenticates the bot token against the Telegram API.
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return NewTelegramSenderWithBot(bot, chatID), nil
}

func NewTelegramSenderWithBot(bot BotAPI, chatID int64) *TelegramSender {
	return &TelegramSender{bot: bot, chatID: chatID}
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Operator == "" {
		return errors.New("empty operator message")
	}
	tgMsg := tgbotapi.NewMessage(s.chatID, msg.Operator)
	tgMsg.DisableWebPagePreview = true
	_, err := s.bot.Send(tgMsg)
	return err
}
