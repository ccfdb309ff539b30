package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/codesbot/core/config"
	"github.com/m3rciful/codesbot/core/logger"
	tghelpers "github.com/m3rciful/codesbot/core/telegram/helpers"
	"github.com/m3rciful/codesbot/core/telegram/netutil"
	tgsender "github.com/m3rciful/codesbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a global middleware. Name is only used in logs.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds Handler to an endpoint understood by tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options

	Middlewares []Middleware
	Routes      []Route

	// KeepWebhook leaves a registered webhook in place in long-poll mode.
	KeepWebhook bool

	OnStart func(ctx context.Context, rt Runtime) error
	// OnStop gets a context that is no longer cancelled.
	OnStop func(ctx context.Context, rt Runtime) error
}

// Runtime is handed to the lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

func pollerOptions(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}
}

func onBotError(err error, _ tele.Context) {
	logger.Error(context.Background(), "tg", "handler.error",
		slog.String("status", "fail"),
		slog.String("err", netutil.Redact(err)),
		slog.String("err_code", netutil.Classify(err)),
	)
}

// RunTelegram starts the bot and blocks until ctx is cancelled or the poller exits.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: config is required")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	started := time.Now()
	po := pollerOptions(cfg)
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  BuildPoller(po),
		Client:  BuildHTTPClient(po.LongPollTimeout()),
		OnError: onBotError,
	})
	if err != nil {
		// The token may be echoed back in the error.
		return fmt.Errorf("telegram: create bot: %s", netutil.Redact(err))
	}
	announceMode(ctx, bot, po, started, opts.KeepWebhook)

	dispatcher := tgsender.NewDispatcher(opts.DispatcherOptions)
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	wire(bot, opts.Middlewares, opts.Routes)
	InitBotCommands(bot, reg)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	serve(ctx, bot)
	logger.Info(ctx, "tg", "bot.stopped",
		slog.Uint64("sent", dispatcher.Sent()),
		slog.Uint64("send_errors", dispatcher.ErrorCount()),
	)

	if opts.OnStop == nil {
		return nil
	}
	return opts.OnStop(context.WithoutCancel(ctx), rt)
}

func announceMode(ctx context.Context, bot *tele.Bot, po PollerOptions, started time.Time, keepWebhook bool) {
	if wh, ok := bot.Poller.(*tele.Webhook); ok {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Duration("duration", logger.Took(started)),
		)
		return
	}

	logger.Info(ctx, "tg", "mode",
		slog.String("mode", coreconfig.RunModeLongpoll),
		slog.Duration("timeout", po.LongPollTimeout()),
		slog.Duration("duration", logger.Took(started)),
	)
	if keepWebhook {
		return
	}
	// getUpdates answers 409 while a webhook is set.
	if err := bot.RemoveWebhook(); err != nil {
		logger.Warn(ctx, "tg", "webhook.delete",
			slog.String("status", "fail"),
			slog.String("err", netutil.Redact(err)),
		)
	}
}

func wire(bot *tele.Bot, mws []Middleware, routes []Route) {
	for _, mw := range mws {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}
	for _, r := range routes {
		if r.Endpoint == nil || r.Handler == nil {
			continue
		}
		bot.Handle(r.Endpoint, r.Handler)
	}
}

// serve runs the poller until ctx is done or it stops on its own.
func serve(ctx context.Context, bot *tele.Bot) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		bot.Stop()
		<-done
	}
}
