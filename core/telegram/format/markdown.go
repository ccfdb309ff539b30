package format

import (
	"fmt"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

// Entity types that change which characters need escaping in MarkdownV2.
const (
	EntityText = ""
	EntityPre  = "pre"
	EntityCode = "code"
	EntityLink = "text_link"
)

const (
	mdV1Specials = "_*`["
	mdV2Specials = "_*[]()~`>#+-=|{}.!\\"
)

// EscapeMarkdown escapes text for the given markdown version. For MarkdownV2 the
// entityType narrows the set: inside pre/code only ` and \ are special, inside a
// link URL only ) and \ are.
func EscapeMarkdown(text string, version int, entityType string) (string, error) {
	var specials string
	switch version {
	case MarkdownV1:
		specials = mdV1Specials
	case MarkdownV2:
		switch entityType {
		case EntityPre, EntityCode:
			specials = "`\\"
		case EntityLink:
			specials = ")\\"
		default:
			specials = mdV2Specials
		}
	default:
		return "", fmt.Errorf("unsupported markdown version: %d", version)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// EscapeV2 escapes plain text for MarkdownV2.
func EscapeV2(text string) string {
	out, _ := EscapeMarkdown(text, MarkdownV2, EntityText)
	return out
}
