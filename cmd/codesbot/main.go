package main

import (
	"context"
	"log"
	"os"

	"github.com/m3rciful/codesbot/core/bootstrap"
	corecmd "github.com/m3rciful/codesbot/core/cmd"
	coreconfig "github.com/m3rciful/codesbot/core/config"
	"github.com/m3rciful/codesbot/internal/audit"
	"github.com/m3rciful/codesbot/internal/bot"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		Bootstrap:         newApp,
	})
	if err != nil {
		log.Printf("codesbot: %v", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	opts := []bot.Option{bot.WithCloser(res)}
	if res.DB != nil {
		opts = append(opts, bot.WithRecorder(audit.NewStore(res.DB)))
	}
	return bot.New(cfg, opts...), nil
}
