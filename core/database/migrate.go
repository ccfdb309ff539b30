package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/codesbot/core/logger"
)

const readyTimeout = 30 * time.Second

// migrateLog forwards golang-migrate progress lines as debug events.
type migrateLog struct{ ctx context.Context }

func (l migrateLog) Printf(format string, v ...any) {
	logger.Debug(l.ctx, "db.migrate", "migrate.progress",
		slog.String("msg", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (migrateLog) Verbose() bool { return logger.ShouldSampleDebug() }

// RunMigrations applies pending up migrations from cfg.MigrationsDir.
func RunMigrations(ctx context.Context, cfg Config) error {
	waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	err := WaitForPostgres(waitCtx, cfg)
	cancel()
	if err != nil {
		logger.Error(ctx, "db.migrate", "db.wait",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	files := upFiles(dir)
	preview, truncated := logger.SummarizeStrings(files, 6)
	logger.Debug(ctx, "db.migrate", "resolve",
		slog.String("path", dir),
		slog.Int("files_total", len(files)),
		slog.String("files_preview", preview),
		slog.Bool("files_truncated", truncated),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), MigrateURL(cfg))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	m.Log = migrateLog{ctx: ctx}

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, "db.migrate", "apply",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}
	to, _, _ := m.Version()

	logger.Info(ctx, "db.migrate", "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", appliedBetween(files, uint64(from), uint64(to))),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// upFiles lists *.up.sql names in dir, sorted. A missing dir yields nil.
func upFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name := e.Name(); !e.IsDir() && strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func fileVersion(name string) uint64 {
	digits, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(digits, 10, 64)
	return v
}

// appliedBetween counts files with a version in (from, to].
func appliedBetween(files []string, from, to uint64) int {
	n := 0
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			n++
		}
	}
	return n
}
