package middleware

import (
	"log/slog"

	"github.com/m3rciful/codesbot/core/logger"
	tghelpers "github.com/m3rciful/codesbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions configures the admin gate.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether the sender of c is the configured admin.
// A zero admin id matches nobody.
func IsAdmin(c tele.Context, adminID int64) bool {
	user := c.Sender()
	return adminID != 0 && user != nil && user.ID == adminID
}

// AdminOnlyMiddleware drops updates from anyone but the admin.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if IsAdmin(c, opts.AdminID) {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			logger.Debug(ctx, "tg", "access.denied", slog.String("status", "denied"))
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
