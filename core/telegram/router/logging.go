package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/codesbot/core/logger"
	tghelpers "github.com/m3rciful/codesbot/core/telegram/helpers"
	"github.com/m3rciful/codesbot/core/telegram/middleware"
	"github.com/m3rciful/codesbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn under handlerName and logs one handler.handled line.
func handleWithSummary(c tele.Context, handlerName string, fn func() error, extras ...slog.Attr) error {
	start := updateStart(c)
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	logHandlerSummary(c, handlerName, start, outcome, err, extras...)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, outcome string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := middleware.GetCounters(c)

	status := "ok"
	switch {
	case err != nil:
		status = "fail"
	case outcome == "ignored":
		status = "skip"
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err), 256)),
			slog.String("err_code", netutil.Classify(err)),
		)
	}
	attrs = append(attrs, extras...)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

func updateStart(c tele.Context) time.Time {
	if ts, ok := c.Get(middleware.KeyUpdateStart).(time.Time); ok {
		return ts
	}
	return time.Now()
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
