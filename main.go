package main

import (
	"context"
	"log"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/tolikvseokey-dev/bk-reminder-bot/application"
	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
	"github.com/tolikvseokey-dev/bk-reminder-bot/handler"
	"github.com/tolikvseokey-dev/bk-reminder-bot/infrastructure"
)

const botVersion = "full-reminders+inline-useful-2026-08-31-01"

func main() {
	cfg, err := infrastructure.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	clock, err := domain.NewClock(cfg.Timezone)
	if err != nil {
		log.Fatal(err)
	}

	var store domain.ReminderStore
	if cfg.MongoURI != "" {
		client, collection, err := infrastructure.ConnectMongoDB(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Disconnect(context.Background())
		store = infrastructure.NewMongoStore(collection)
	} else {
		store = infrastructure.NewFileStore(cfg.DataFile)
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:     cfg.Token,
		Poller:    &telebot.LongPoller{Timeout: 10 * time.Second},
		ParseMode: telebot.ModeHTML,
	})
	if err != nil {
		log.Fatal(err)
	}

	scheduler := infrastructure.NewScheduler()
	defer scheduler.Stop()

	reminders := application.NewReminderService(store, scheduler, clock, handler.NewTelegramNotifier(bot), cfg.Retention)
	conversations := application.NewConversationService(reminders, clock)

	// Notification jobs are not persisted: rebuild them from the store,
	// then start the expiry sweep.
	reminders.Rehydrate(context.Background())
	reminders.StartCleanup(cfg.CleanupInterval)

	handler.NewReminderHandler(bot, reminders, conversations, clock, cfg.DatePickDays, botVersion).Register()
	handler.NewInfoHandler(bot, cfg.Timezone, int(cfg.Retention.Hours()), botVersion).Register()

	log.Printf("🤖 Bot is running. TZ=%s | VERSION=%s", cfg.Timezone, botVersion)
	bot.Start()
}
