package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/codesbot/internal/audit"
	"github.com/m3rciful/codesbot/internal/codes"
)

func TestRenderPanel(t *testing.T) {
	r, ok := Render(codes.ShowPanel(codes.MsgCodeListPrompt, false))
	require.True(t, ok)
	assert.Equal(t, "*➕ Paste code list like:*\n\n1\\. CODE123\n2\\. CODE456\n3\\. CODE789", r.Text)
	assert.Nil(t, r.Markup)

	r, ok = Render(codes.ShowPanel(codes.MsgReset, true))
	require.True(t, ok)
	assert.Equal(t, "*🔄 All data reset*", r.Text)
	require.NotNil(t, r.Markup)
}

func TestRenderError(t *testing.T) {
	r, ok := Render(codes.ShowError(codes.MsgNoCodes))
	require.True(t, ok)
	assert.Equal(t, "❌ No codes added yet\\.", r.Text)
	assert.Nil(t, r.Markup)
}

func TestRenderPlainEscapesOnlyPreSpecials(t *testing.T) {
	r, ok := Render(codes.ShowPlainMessage("AB-1.x\nC`D\\E"))
	require.True(t, ok)
	assert.Equal(t, "*📋 VALID CODES \\(Copy Below\\)*\n```\nAB-1.x\nC\\`D\\\\E\n```", r.Text)
}

func TestRenderPlainWithOnlyStaleMarks(t *testing.T) {
	r, ok := Render(codes.ShowPlainMessage(""))
	require.True(t, ok)
	assert.Equal(t, "*📋 VALID CODES \\(Copy Below\\)*\n_None of the marked numbers are in the current list\\._", r.Text)
	assert.NotContains(t, r.Text, "```")
}

func TestRenderAudit(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 30, 5, 0, time.UTC)
	r := RenderAudit([]audit.Entry{
		{Event: audit.EventAction, Action: "show", Directive: "plain", Mode: "idle", Codes: 3, Valid: 2, CreatedAt: at},
		{Event: audit.EventText, Directive: "panel", Mode: "idle", Codes: 3, CreatedAt: at.Add(-time.Minute)},
	})
	assert.Equal(t, "*📜 Recent operations*\n"+
		"10\\-17 12:30:05 action/show plain → idle, codes 3, valid 2\n"+
		"10\\-17 12:29:05 text panel → idle, codes 3, valid 0", r.Text)
	assert.Nil(t, r.Markup)
}

func TestRenderAuditEmpty(t *testing.T) {
	assert.Equal(t, "*📜 Recent operations*\nNothing recorded yet\\.", RenderAudit(nil).Text)
}

func TestRenderNone(t *testing.T) {
	_, ok := Render(codes.None)
	assert.False(t, ok)
}

func TestMainMenuLayout(t *testing.T) {
	m := MainMenu()
	require.Len(t, m.InlineKeyboard, 4)

	var got [][2]string
	for _, row := range m.InlineKeyboard {
		require.Len(t, row, 1)
		got = append(got, [2]string{row[0].Text, row[0].Unique})
	}
	assert.Equal(t, [][2]string{
		{"➕ Add Code List", "add"},
		{"✅ Mark Valid Codes", "mark"},
		{"📋 Show Valid Codes", "show"},
		{"🔄 Reset List", "reset"},
	}, got)
}
