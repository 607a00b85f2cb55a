// Package config reads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	LogLevel string

	StoreDriver   string
	DbUrl         string
	MongoUri      string
	MongoDatabase string

	BusDriver                   string
	GoogleProjectId             string
	AuctionFinishedSubscription string
	NatsUrl                     string

	MysteryBoxCooldown time.Duration
	MaxWriteAttempts   int
	SettlementParallel int
	StarterPackUsers   []string
	SeedDemoProfiles   bool

	InternalApiKey     string
	CorsAllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("MONGO_DATABASE", "flog")
	v.SetDefault("BUS_DRIVER", "none")
	v.SetDefault("AUCTION_FINISHED_SUBSCRIPTION", "progress.auction-finished")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("MYSTERY_BOX_COOLDOWN", "24h")
	v.SetDefault("MAX_WRITE_ATTEMPTS", 3)
	v.SetDefault("SETTLEMENT_PARALLEL", 8)
	v.SetDefault("STARTER_PACK_USERS", "test,Dion Upton")
	v.SetDefault("SEED_DEMO_PROFILES", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads the process environment, falling back to ./.env when it exists.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetConfigFile("./.env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)

	cfg := Config{
		Port:                        v.GetString("PORT"),
		LogLevel:                    v.GetString("LOG_LEVEL"),
		StoreDriver:                 strings.ToLower(v.GetString("STORE_DRIVER")),
		DbUrl:                       v.GetString("DB_URL"),
		MongoUri:                    v.GetString("MONGO_URI"),
		MongoDatabase:               v.GetString("MONGO_DATABASE"),
		BusDriver:                   strings.ToLower(v.GetString("BUS_DRIVER")),
		GoogleProjectId:             v.GetString("GOOGLE_PROJECT_ID"),
		AuctionFinishedSubscription: v.GetString("AUCTION_FINISHED_SUBSCRIPTION"),
		NatsUrl:                     v.GetString("NATS_URL"),
		MysteryBoxCooldown:          v.GetDuration("MYSTERY_BOX_COOLDOWN"),
		MaxWriteAttempts:            v.GetInt("MAX_WRITE_ATTEMPTS"),
		SettlementParallel:          v.GetInt("SETTLEMENT_PARALLEL"),
		StarterPackUsers:            splitList(v.GetString("STARTER_PACK_USERS")),
		SeedDemoProfiles:            v.GetBool("SEED_DEMO_PROFILES"),
		InternalApiKey:              v.GetString("INTERNAL_API_KEY"),
		CorsAllowedOrigins:          splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "memory":
	case "postgres":
		if c.DbUrl == "" {
			return errors.New("config: DB_URL is required for the postgres store")
		}
	case "mongo":
		if c.MongoUri == "" {
			return errors.New("config: MONGO_URI is required for the mongo store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.BusDriver {
	case "none", "nats":
	case "pubsub":
		if c.GoogleProjectId == "" {
			return errors.New("config: GOOGLE_PROJECT_ID is required for the pubsub bus")
		}
	default:
		return fmt.Errorf("config: unknown BUS_DRIVER %q", c.BusDriver)
	}

	if c.MysteryBoxCooldown < 0 {
		return errors.New("config: MYSTERY_BOX_COOLDOWN must not be negative")
	}
	if c.MaxWriteAttempts < 1 {
		return errors.New("config: MAX_WRITE_ATTEMPTS must be at least 1")
	}
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
