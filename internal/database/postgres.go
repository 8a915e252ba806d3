package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/learning-path/backend/internal/config"
)

// Open открывает пул подключений к PostgreSQL с ретраями.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, cfgErr := pgxpool.ParseConfig(cfg.DSN())
	if cfgErr != nil {
		return nil, fmt.Errorf("parse database config: %w", cfgErr)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	// MaxIdleConns maps closest to MinConns in pgxpool.
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	var pool *pgxpool.Pool
	var err error

	retries := 5
	backoff := time.Second

	for i := 0; i < retries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			cancel()

			if err == nil {
				return pool, nil
			}
		}

		if pool != nil {
			pool.Close()
		}

		slog.Warn("database connection attempt failed",
			slog.Int("attempt", i+1),
			slog.Int("retries", retries),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("connect database after %d attempts: %w", retries, err)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		domain VARCHAR(100) NOT NULL,
		level VARCHAR(50) NOT NULL,
		duration_hours INTEGER NOT NULL,
		tags TEXT[] NOT NULL DEFAULT '{}',
		prereq_ids INTEGER[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_domain ON courses(domain)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_level ON courses(level)`,
	`CREATE TABLE IF NOT EXISTS ai_requests (
		id UUID PRIMARY KEY,
		request_id TEXT,
		user_id INTEGER,
		request_type VARCHAR(32) NOT NULL,
		provider VARCHAR(32) NOT NULL,
		model VARCHAR(128) NOT NULL,
		prompt TEXT NOT NULL,
		request_payload JSONB,
		response_payload JSONB,
		raw_response TEXT NOT NULL DEFAULT '',
		success BOOLEAN NOT NULL,
		fallback BOOLEAN NOT NULL DEFAULT FALSE,
		error_kind VARCHAR(64),
		error_message TEXT,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_requests_created_at ON ai_requests(created_at)`,
}

// EnsureSchema создает таблицы каталога и журнала AI-запросов.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, statement := range schema {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
