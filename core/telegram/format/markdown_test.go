package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		version int
		entity  string
		want    string
	}{
		{name: "v2 text", text: "1. A_B*C!", version: MarkdownV2, want: `1\. A\_B\*C\!`},
		{name: "v2 backslash", text: `a\b`, version: MarkdownV2, want: `a\\b`},
		{name: "v2 pre keeps punctuation", text: "v1.2_x `q`", version: MarkdownV2, entity: EntityPre, want: "v1.2_x \\`q\\`"},
		{name: "v2 link", text: "https://x.io/a)b", version: MarkdownV2, entity: EntityLink, want: `https://x.io/a\)b`},
		{name: "v1", text: "_*`[.", version: MarkdownV1, want: "\\_\\*\\`\\[."},
		{name: "unicode untouched", text: "👋 Привет", version: MarkdownV2, want: "👋 Привет"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EscapeMarkdown(tt.text, tt.version, tt.entity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeMarkdownUnsupportedVersion(t *testing.T) {
	_, err := EscapeMarkdown("x", 3, EntityText)
	assert.Error(t, err)
}
