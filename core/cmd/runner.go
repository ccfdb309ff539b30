// Package cmd is the process entry point shared by the bot binaries.
package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/codesbot/core/config"
	"github.com/m3rciful/codesbot/core/logger"
	coretelegram "github.com/m3rciful/codesbot/core/telegram"
)

// TelegramApp is the application side of Run.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
	Close() error
}

// Options configures Run. Only Bootstrap is required; the other hooks default to the real implementations.
type Options struct {
	// ConfigEnvVar names the variable holding the config path. Defaults to CONFIG_PATH.
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Bootstrap  func(ctx context.Context, cfg *coreconfig.Config) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

func (o Options) configPath() (string, error) {
	env := cmp.Or(o.ConfigEnvVar, "CONFIG_PATH")
	if p := cmp.Or(os.Getenv(env), o.DefaultConfigPath); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("cmd: set %s to the config file path", env)
}

// Run loads the config, bootstraps the app and serves until SIGINT or SIGTERM.
func Run(opts Options) error {
	if opts.Bootstrap == nil {
		return errors.New("cmd: Bootstrap is required")
	}
	load := opts.LoadConfig
	if load == nil {
		load = coreconfig.Load
	}
	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	runTelegram := opts.RunTelegram
	if runTelegram == nil {
		runTelegram = coretelegram.RunTelegram
	}

	path, err := opts.configPath()
	if err != nil {
		return err
	}
	// Structured logging starts in Bootstrap.
	log.Printf("loading config: %s", path)
	cfg, err := load(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	app, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()
	defer closeApp(app)

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	return runTelegram(ctx, withLifecycleLogs(runOpts, started))
}

func closeApp(app TelegramApp) {
	if err := app.Close(); err != nil {
		logger.Error(context.Background(), "app", "close",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

// withLifecycleLogs logs app.ready after OnStart and app.shutdown before OnStop.
func withLifecycleLogs(opts coretelegram.RunOptions, started time.Time) coretelegram.RunOptions {
	onStart, onStop := opts.OnStart, opts.OnStop

	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready", slog.Duration("startup", logger.Took(started)))
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown")
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
	return opts
}
