package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"learning-service/internal/app"
	"learning-service/internal/auth"
	"learning-service/internal/config"
	"learning-service/internal/infra/memory"
	"learning-service/internal/infra/postgres"
	infraredis "learning-service/internal/infra/redis"
	"learning-service/internal/seed"
	transport "learning-service/internal/transport/http"
)

// gateway is the full persistence surface the services need.
type gateway interface {
	app.QuizStore
	app.QuestionLoader
	app.ProgressStore
	app.UserStore
	app.SearchStore
	app.CatalogStore
}

type backend struct {
	gateway gateway
	writer  seed.CatalogWriter
	redis   *redis.Client
	checks  map[string]transport.Pinger
	closers []func()
}

// openBackend connects to Postgres when configured and falls back to the in-memory store otherwise.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{checks: map[string]transport.Pinger{}}

	if cfg.Postgres.URL != "" {
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		store := postgres.NewStore(pool)
		b.gateway = store
		b.checks["postgres"] = store

		db := postgres.OpenBun(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })
		b.writer = postgres.NewCatalogWriter(db)
	} else {
		slog.Warn("postgres url not configured, using in-memory store")
		store := memory.NewStore()
		b.gateway = store
		b.writer = store
	}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		client := b.redis
		b.closers = append(b.closers, func() { _ = client.Close() })
	}
	return b, nil
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// questionBank puts the configured cache in front of the gateway.
func (b *backend) questionBank(ttl time.Duration) app.QuestionBank {
	if b.redis != nil {
		cache := infraredis.NewQuestionCache(b.redis, b.gateway, ttl)
		b.checks["redis"] = cache
		return cache
	}
	return memory.NewQuestionCache(b.gateway, ttl)
}

func (b *backend) services(cfg config.Config) (transport.Services, *auth.Issuer, error) {
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL))
	if err != nil {
		return transport.Services{}, nil, fmt.Errorf("%w (set auth.jwtSecret or JWT_SECRET)", err)
	}
	users := app.NewUserService(b.gateway, issuer)
	progress := app.NewProgressService(b.gateway)
	bank := b.questionBank(config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
	return transport.Services{
		Users:    users,
		Catalog:  app.NewCatalogService(b.gateway, progress),
		Search:   app.NewSearchService(b.gateway, cfg.Search.Limit, cfg.Search.ContextLength),
		Quizzes:  app.NewQuizService(b.gateway, bank, progress, users),
		Progress: progress,
	}, issuer, nil
}

// seedIfPresent loads the seed directory when it exists; used for DB-less runs.
func (b *backend) seedIfPresent(ctx context.Context, dir string, search *app.SearchService) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Info("seed dir not found, starting with an empty catalog", "dir", dir)
		return nil
	}
	_, err := seed.NewSeeder(b.writer, search, false).Run(ctx, dir)
	return err
}
