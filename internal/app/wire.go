package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/scorewire/warroom/internal/blob/s3"
	"github.com/scorewire/warroom/internal/cache/redis"
	"github.com/scorewire/warroom/internal/config"
	"github.com/scorewire/warroom/internal/domain"
	"github.com/scorewire/warroom/internal/notify"
	"github.com/scorewire/warroom/internal/platform/frontoffice"
	"github.com/scorewire/warroom/internal/platform/grading"
	"github.com/scorewire/warroom/internal/store/postgres"
)

// Dependencies bundles every concrete dependency the application needs. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	SessionStore     domain.SessionStore
	TradeRecordStore domain.TradeRecordStore
	LeaderboardStore domain.LeaderboardStore

	// Caches
	RosterCache domain.RosterCache
	CapCache    domain.CapCache
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// External services
	FrontOffice *frontoffice.Client
	Grader      domain.Grader

	// Blob storage; nil when the grade archive is disabled.
	Archiver domain.GradeArchiver

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// releases resources in reverse construction order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.SessionStore = postgres.NewSessionStore(pool)
	deps.TradeRecordStore = postgres.NewTradeRecordStore(pool)
	deps.LeaderboardStore = postgres.NewLeaderboardStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.RosterCache = redis.NewRosterCache(redisClient)
	deps.CapCache = redis.NewCapCache(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- Front office and grading services ---
	deps.FrontOffice = frontoffice.NewClient(cfg.FrontOffice.BaseURL, cfg.FrontOffice.APIKey)
	deps.Grader = grading.NewClient(cfg.Grading.PrimaryURL, cfg.Grading.LegacyURL, cfg.Grading.APIKey)

	// --- S3 grade archive (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3Client)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
