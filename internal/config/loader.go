package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies WARROOM_* environment variable overrides, and
// returns the final Config. The result has NOT been validated; callers
// should invoke Config.Validate after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env if present; silently ignore when missing.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides copies well-known WARROOM_* environment variables over
// the corresponding fields when set, so operators can inject secrets at
// deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.FrontOffice.BaseURL, "WARROOM_FRONT_OFFICE_BASE_URL")
	setStr(&cfg.FrontOffice.APIKey, "WARROOM_FRONT_OFFICE_API_KEY")

	setStr(&cfg.Grading.PrimaryURL, "WARROOM_GRADING_PRIMARY_URL")
	setStr(&cfg.Grading.LegacyURL, "WARROOM_GRADING_LEGACY_URL")
	setStr(&cfg.Grading.APIKey, "WARROOM_GRADING_API_KEY")

	setStr(&cfg.Postgres.DSN, "WARROOM_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "WARROOM_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "WARROOM_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "WARROOM_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "WARROOM_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "WARROOM_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "WARROOM_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "WARROOM_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "WARROOM_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "WARROOM_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "WARROOM_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "WARROOM_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "WARROOM_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "WARROOM_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "WARROOM_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "WARROOM_REDIS_TLS_ENABLED")

	setBool(&cfg.S3.Enabled, "WARROOM_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "WARROOM_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "WARROOM_S3_REGION")
	setStr(&cfg.S3.Bucket, "WARROOM_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "WARROOM_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "WARROOM_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "WARROOM_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "WARROOM_S3_FORCE_PATH_STYLE")

	setDuration(&cfg.Engine.ValidationDebounce, "WARROOM_ENGINE_VALIDATION_DEBOUNCE")
	setDuration(&cfg.Engine.LeaderboardPublishInterval, "WARROOM_ENGINE_LEADERBOARD_PUBLISH_INTERVAL")
	setInt(&cfg.Engine.LeaderboardLimit, "WARROOM_ENGINE_LEADERBOARD_LIMIT")

	setInt(&cfg.Server.Port, "WARROOM_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "WARROOM_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "WARROOM_SERVER_API_KEY")

	setStr(&cfg.Notify.TelegramToken, "WARROOM_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "WARROOM_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "WARROOM_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "WARROOM_NOTIFY_EVENTS")

	setStr(&cfg.LogLevel, "WARROOM_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
