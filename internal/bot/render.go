package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/codesbot/core/telegram/format"
	"github.com/m3rciful/codesbot/core/telegram/keyboard"
	"github.com/m3rciful/codesbot/internal/audit"
	"github.com/m3rciful/codesbot/internal/codes"

	tele "gopkg.in/telebot.v4"
)

const (
	plainHeader = "📋 VALID CODES (Copy Below)"
	auditHeader = "📜 Recent operations"
	auditEmpty  = "Nothing recorded yet."

	// staleNote replaces the pre block when no marked index has a code.
	staleNote = "None of the marked numbers are in the current list."
)

var menuLabels = map[codes.Action]string{
	codes.ActionAddCodeList: "➕ Add Code List",
	codes.ActionMarkValid:   "✅ Mark Valid Codes",
	codes.ActionShowValid:   "📋 Show Valid Codes",
	codes.ActionReset:       "🔄 Reset List",
}

// Reply is a directive rendered for Telegram MarkdownV2.
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// MainMenu builds the four-button inline menu, one button per row.
func MainMenu() *tele.ReplyMarkup {
	actions := codes.Actions()
	btns := make([]keyboard.Button, 0, len(actions))
	for _, a := range actions {
		btns = append(btns, keyboard.Button{Text: menuLabels[a], Unique: string(a)})
	}
	return keyboard.Column(btns...)
}

// Render converts d into message text. It reports false for the None directive.
func Render(d codes.Directive) (Reply, bool) {
	switch d.Kind {
	case codes.DirectivePanel:
		r := Reply{Text: panelText(d.Message)}
		if d.WithMenu {
			r.Markup = MainMenu()
		}
		return r, true
	case codes.DirectiveError:
		return Reply{Text: "❌ " + format.EscapeV2(d.Message)}, true
	case codes.DirectivePlain:
		header := "*" + format.EscapeV2(plainHeader) + "*\n"
		if d.Message == "" {
			return Reply{Text: header + "_" + format.EscapeV2(staleNote) + "_"}, true
		}
		body, _ := format.EscapeMarkdown(d.Message, format.MarkdownV2, format.EntityPre)
		return Reply{Text: header + "```\n" + body + "\n```"}, true
	}
	return Reply{}, false
}

// panelText bolds the headline and escapes the rest.
func panelText(msg string) string {
	head, rest, found := strings.Cut(msg, "\n")
	text := "*" + format.EscapeV2(head) + "*"
	if found {
		text += "\n" + format.EscapeV2(rest)
	}
	return text
}

// RenderAudit lists journal entries newest first. Entries carry counts only.
func RenderAudit(entries []audit.Entry) Reply {
	lines := []string{auditHeader}
	if len(entries) == 0 {
		lines = append(lines, auditEmpty)
	}
	for _, e := range entries {
		what := e.Event
		if e.Action != "" {
			what += "/" + e.Action
		}
		lines = append(lines, fmt.Sprintf("%s %s %s → %s, codes %d, valid %d",
			e.CreatedAt.UTC().Format("01-02 15:04:05"), what, e.Directive, e.Mode, e.Codes, e.Valid))
	}
	return Reply{Text: panelText(strings.Join(lines, "\n"))}
}
