package router

import (
	"log/slog"

	"github.com/m3rciful/codesbot/core/logger"
	tg "github.com/m3rciful/codesbot/core/telegram"
	"github.com/m3rciful/codesbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/codesbot/core/telegram/helpers"
	"github.com/m3rciful/codesbot/core/telegram/middleware"
	"github.com/m3rciful/codesbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// CallbackRouteOptions configures the admin gate in front of every callback.
type CallbackRouteOptions struct {
	AdminID int64
}

// CallbackRoute dispatches inline button presses through the registry.
// Presses from anyone but the admin are dropped unanswered. Admin queries are
// answered before their handler runs, so the client spinner always stops.
func CallbackRoute(reg *tg.Registry, opts CallbackRouteOptions) tg.Route {
	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{AdminID: opts.AdminID})
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		key, _ := callbacks.ParseCallbackData(cb)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", logger.SanitizeLimit(key, 128))}

		if err := c.Respond(); err != nil {
			logger.Warn(tghelpers.BuildContext(c), "tg", "callback.answer_failed",
				slog.String("status", "fail"),
				slog.String("err", netutil.Redact(err)),
			)
		}

		if h, ok := reg.GetCallback(key); ok {
			return handleWithSummary(c, name, func() error { return h(c) }, extras...)
		}
		if fb := reg.CallbackNotFound(); fb != nil {
			return handleWithSummary(c, name, func() error { return fb(c) }, extras...)
		}
		logHandlerSummary(c, name, updateStart(c), "ignored", nil, extras...)
		return nil
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: gate(handler)}
}
