package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/codesbot/core/logger"
	"github.com/m3rciful/codesbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/codesbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// KeyUpdateStart holds the time the update entered the middleware chain.
const KeyUpdateStart = "update_start"

// LoggerMiddleware assigns the rid and logs one sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}

		c.Set("rid", logger.BuildRID(upd.ID, chatID, userID))
		c.Set(KeyUpdateStart, time.Now())
		ctx := tghelpers.BuildContext(c)

		if !logger.ShouldSampleDebug() {
			return next(c)
		}

		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.String("kind", UpdateKind(upd)),
		}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user != nil {
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.ParseCallbackData(upd.Callback)
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
			if payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
			}
		case upd.Message != nil:
			// Message bodies may hold codes, so only the size is logged.
			attrs = append(attrs, slog.Int("text_len", len(c.Text())))
		}
		logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}
