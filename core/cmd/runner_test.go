package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/codesbot/core/config"
	coretelegram "github.com/m3rciful/codesbot/core/telegram"
)

type fakeApp struct {
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("CODESBOT_CONFIG", "custom.yaml")
	app := &fakeApp{}
	var (
		loadedPath string
		hooks      []string
	)

	err := Run(Options{
		ConfigEnvVar:      "CODESBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			loadedPath = path
			return &coreconfig.Config{}, nil
		},
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { hooks = append(hooks, "logger"); return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NotNil(t, opts.OnStart)
			require.NotNil(t, opts.OnStop)
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			hooks = append(hooks, "run")
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", loadedPath)
	assert.True(t, app.closed)
	assert.Equal(t, []string{"run", "logger"}, hooks)
}

func TestRunPropagatesConfigError(t *testing.T) {
	err := Run(Options{
		DefaultConfigPath: "missing.yaml",
		LoadConfig:        func(string) (*coreconfig.Config, error) { return nil, errors.New("no file") },
		Bootstrap:         func(context.Context, *coreconfig.Config) (TelegramApp, error) { return nil, nil },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file")
}

func TestRunRequiresBootstrap(t *testing.T) {
	assert.Error(t, Run(Options{}))
}
