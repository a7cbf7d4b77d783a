package infrastructure

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token    string
	Timezone string

	DataFile string
	MongoURI string

	DatePickDays    int
	Retention       time.Duration
	CleanupInterval time.Duration
}

func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return Config{}, errors.New("BOT_TOKEN не установлен")
	}

	cfg := Config{
		Token:           token,
		Timezone:        getenv("BOT_TZ", "Europe/Moscow"),
		DataFile:        getenv("DATA_FILE", "reminders.json"),
		MongoURI:        strings.TrimSpace(os.Getenv("MONGODB_URI")),
		DatePickDays:    getint("DATE_PICK_DAYS", 21),
		Retention:       time.Duration(getint("AUTO_DELETE_AFTER_HOURS", 24)) * time.Hour,
		CleanupInterval: time.Duration(getint("CLEANUP_INTERVAL_MINUTES", 1)) * time.Minute,
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
