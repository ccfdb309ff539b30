// Package keyboard builds inline reply markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is one inline callback button. Unique routes the press; Data is an optional payload.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Column lays buttons out one per row.
func Column(buttons ...Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = make([][]tele.InlineButton, 0, len(buttons))
	for _, b := range buttons {
		markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{*b.inline(markup)})
	}
	return markup
}

func (b Button) inline(markup *tele.ReplyMarkup) *tele.InlineButton {
	if b.Data == "" {
		return markup.Data(b.Text, b.Unique).Inline()
	}
	return markup.Data(b.Text, b.Unique, b.Data).Inline()
}
