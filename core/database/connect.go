package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/codesbot/core/logger"
)

const (
	connectTimeout = 5 * time.Second
	pingInterval   = 2 * time.Second
)

func target(cfg Config) []slog.Attr {
	return []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}
}

// Connect opens a pool of cfg.MaxConnections and pings it.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
	if err != nil {
		logger.Error(ctx, "db", "db.connect", append(target(cfg),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)...)
		return nil, fmt.Errorf("db connect %s/%s: %w", cfg.Host, cfg.Name, err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.Info(ctx, "db", "db.connect", append(target(cfg),
		slog.String("status", "ok"),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.Took(start)),
	)...)
	return db, nil
}

// WaitForPostgres pings until the server answers or ctx is done.
func WaitForPostgres(ctx context.Context, cfg Config) error {
	tick := time.NewTicker(pingInterval)
	defer tick.Stop()

	for attempt := 1; ; attempt++ {
		err := ping(ctx, cfg)
		if err == nil {
			return nil
		}
		logger.Debug(ctx, "db", "db.wait",
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not reachable after %d attempts: %w", attempt, err)
		case <-tick.C:
		}
	}
}

func ping(ctx context.Context, cfg Config) error {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
