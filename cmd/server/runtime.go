package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/kektor/gallery-images/internal/comments"
	"github.com/kektor/gallery-images/internal/config"
	"github.com/kektor/gallery-images/internal/images"
	"github.com/kektor/gallery-images/internal/likes"
	"github.com/kektor/gallery-images/internal/relay"
	"github.com/kektor/gallery-images/internal/storage"
	"github.com/kektor/gallery-images/internal/users"
	"github.com/kektor/gallery-images/pkg/cache"
)

// Runtime wires configuration into the service dependency graph and owns the
// handles that need explicit shutdown.
type Runtime struct {
	Images images.System
	Logger *slog.Logger

	config    *config.Config
	redis     *redis.Client
	publisher *relay.KafkaPublisher
	relay     *relay.Relay
}

func NewRuntime(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Runtime, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	userCache := cache.NewTwoTier(
		cache.NewLocal(cfg.Cache.LocalSize, cfg.Cache.LocalTTLDuration()),
		cache.NewRemote(rdb, "users:"),
		cfg.Cache.UserTTLDuration(),
		logger,
	)
	urlCache := cache.NewTwoTier(
		cache.NewLocal(cfg.Cache.LocalSize, cfg.Cache.LocalTTLDuration()),
		cache.NewRemote(rdb, "urls:"),
		cfg.Cache.URLTTLDuration(),
		logger,
	)

	userClient := users.NewCached(
		users.NewHTTPClient(cfg.Services.UsersURL, cfg.Services.TimeoutDuration()),
		userCache,
	)
	commentClient := comments.NewHTTPClient(cfg.Services.CommentsURL, cfg.Services.TimeoutDuration())

	store, err := storage.New(storage.Options{
		Endpoint:     cfg.Storage.Endpoint,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UseSSL:       cfg.Storage.UseSSL,
		Bucket:       cfg.Storage.Bucket,
		SignedURLTTL: cfg.Storage.SignedURLTTLDuration(),
	}, urlCache)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	publisher := relay.NewKafkaPublisher(cfg.Broker.Addrs, cfg.Broker.Topic)
	eventRelay := relay.New(publisher, relay.Options{
		Attempts:       cfg.Broker.Attempts,
		Backoff:        cfg.Broker.BackoffDuration(),
		PublishTimeout: cfg.Broker.PublishTimeoutDuration(),
		Buffer:         cfg.Broker.Buffer,
	}, logger)

	imageSystem := images.New(
		db,
		likes.NewStore(),
		userClient,
		store,
		commentClient,
		eventRelay,
		logger,
		cfg.Scroll,
	)

	return &Runtime{
		Images:    imageSystem,
		Logger:    logger,
		config:    cfg,
		redis:     rdb,
		publisher: publisher,
		relay:     eventRelay,
	}, nil
}

// Close drains the event relay, then releases broker and cache connections.
func (rt *Runtime) Close() {
	rt.relay.Close()

	if err := rt.publisher.Close(); err != nil {
		rt.Logger.Warn("broker close failed", "error", err)
	}
	if err := rt.redis.Close(); err != nil {
		rt.Logger.Warn("redis close failed", "error", err)
	}
}
