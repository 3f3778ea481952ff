package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string  `env:"BOT_TOKEN,required"`
		Debug    bool    `env:"TELEGRAM_DEBUG" envDefault:"false"`
		AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
	}

	Giveaway struct {
		// InviteCap bounds how many credited referrals a single participant
		// may accrue per giveaway.
		InviteCap int `env:"INVITE_CAP" envDefault:"10"`

		// Points awarded when an invite is successfully processed.
		InviteReferrerBonus int `env:"INVITE_REFERRER_BONUS" envDefault:"50"`
		InviteInviteeBonus  int `env:"INVITE_INVITEE_BONUS" envDefault:"25"`

		// TaskStartTTL bounds how long a task-start marker is kept. Pruning a
		// marker only re-requires the minimum wait, it never corrupts state.
		TaskStartTTL time.Duration `env:"TASK_START_TTL" envDefault:"24h"`
	}
}

func Load() *Config {
	// A missing .env file is fine; in production the variables are set
	// directly in the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
