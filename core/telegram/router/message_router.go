package router

import (
	tg "github.com/m3rciful/codesbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM is a conversation that may claim free text from a user.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions sets the handler for text nobody claimed. Nil means ignore.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes routes free text to the FSM while it is waiting for input.
func TextRoutes(fsm FSM, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		if user := c.Sender(); fsm != nil && user != nil && fsm.InProgress(user.ID) {
			return handleWithSummary(c, "fsm", func() error { return fsm.ManagerHandler(c) })
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", func() error { return opts.UnknownText(c) })
		}
		logHandlerSummary(c, "unknown_text", updateStart(c), "ignored", nil)
		return nil
	}
	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
