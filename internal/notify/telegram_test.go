package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramSender_PostsOperatorLine(t *testing.T) {
	bot := &fakeBot{}
	s := NewTelegramSenderWithBot(bot, -100123)

	require.NoError(t, s.Send(context.Background(), Message{Operator: "New complaint c-1: Theft (Pending)"}))

	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), msg.ChatID)
	assert.Equal(t, "New complaint c-1: Theft (Pending)", msg.Text)
}

func TestTelegramSender_Errors(t *testing.T) {
	bot := &fakeBot{err: errors.New("Forbidden: bot was kicked")}
	s := NewTelegramSenderWithBot(bot, 1)

	assert.Error(t, s.Send(context.Background(), Message{}))
	assert.Empty(t, bot.sent)

	assert.Error(t, s.Send(context.Background(), Message{Operator: "x"}))
	assert.Len(t, bot.sent, 1)
}
