package handler

import (
	"gopkg.in/telebot.v3"

	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

// TelegramNotifier delivers reminder notifications to a chat address.
// Fire-and-forget: the caller decides what to do with a failed send.
type TelegramNotifier struct {
	bot *telebot.Bot
}

func NewTelegramNotifier(bot *telebot.Bot) *TelegramNotifier {
	return &TelegramNotifier{bot: bot}
}

func (n *TelegramNotifier) Send(addr domain.ChatAddress, text string) error {
	_, err := n.bot.Send(&telebot.Chat{ID: addr.ChatID}, text, &telebot.SendOptions{
		ThreadID: addr.ThreadID,
	})
	return err
}
