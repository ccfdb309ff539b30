package codes

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    int64 = 1001
	stranger int64 = 2002
)

func loadCodes(t *testing.T, s *Session, text string) {
	t.Helper()
	require.Equal(t, DirectivePanel, s.DispatchAction(admin, ActionAddCodeList).Kind)
	d := s.DispatchText(admin, text)
	require.Equal(t, ShowPanel(MsgCodesSaved, true), d)
}

func markValid(t *testing.T, s *Session, text string) {
	t.Helper()
	require.Equal(t, ShowPanel(MsgIndicesPrompt, false), s.DispatchAction(admin, ActionMarkValid))
	require.Equal(t, ShowPanel(MsgValidUpdated, true), s.DispatchText(admin, text))
}

func TestNewSessionIsIdleAndEmpty(t *testing.T) {
	s := NewSession(admin)
	snap := s.Snapshot()
	assert.Equal(t, ModeIdle, snap.Mode)
	assert.Empty(t, snap.Codes)
	assert.Empty(t, snap.Valid)
}

func TestAuthorize(t *testing.T) {
	s := NewSession(admin)
	assert.True(t, s.Authorize(admin))
	assert.False(t, s.Authorize(stranger))
	assert.False(t, NewSession(0).Authorize(0), "zero admin id authorizes nobody")
}

func TestUnauthorizedCallerIsIgnored(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n2. DEF")
	markValid(t, s, "2")
	before := s.Snapshot()

	assert.True(t, s.Start(stranger).IsNone())
	for _, a := range Actions() {
		assert.True(t, s.DispatchAction(stranger, a).IsNone(), "action %s", a)
	}
	assert.True(t, s.DispatchText(stranger, "9. ZZZ").IsNone())

	assert.Equal(t, before, s.Snapshot())

	// An unauthorized add must not arm the session for the admin's next text either.
	s.DispatchAction(stranger, ActionAddCodeList)
	assert.True(t, s.DispatchText(admin, "1. NEW").IsNone())
	assert.Equal(t, before, s.Snapshot())
}

func TestStart(t *testing.T) {
	s := NewSession(admin)
	assert.Equal(t, ShowPanel(MsgWelcome, true), s.Start(admin))
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestAddCodeListArmsSession(t *testing.T) {
	s := NewSession(admin)
	d := s.DispatchAction(admin, ActionAddCodeList)
	assert.Equal(t, DirectivePanel, d.Kind)
	assert.False(t, d.WithMenu)
	assert.Contains(t, d.Message, "1. CODE123")
	assert.Equal(t, ModeAwaitingCodeList, s.Mode())
}

func TestMarkValidRequiresCodes(t *testing.T) {
	s := NewSession(admin)
	assert.Equal(t, ShowError(MsgNoCodes), s.DispatchAction(admin, ActionMarkValid))
	assert.Equal(t, ModeIdle, s.Mode())

	// Mode is left alone, including a pending list prompt.
	s.DispatchAction(admin, ActionAddCodeList)
	assert.Equal(t, ShowError(MsgNoCodes), s.DispatchAction(admin, ActionMarkValid))
	assert.Equal(t, ModeAwaitingCodeList, s.Mode())
}

func TestShowValidRequiresMarks(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")
	assert.Equal(t, ShowError(MsgNoValid), s.DispatchAction(admin, ActionShowValid))
}

func TestRoundTrip(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n2. DEF\n3. GHI")
	markValid(t, s, "1,3")

	d := s.DispatchAction(admin, ActionShowValid)
	require.Equal(t, DirectivePlain, d.Kind)
	assert.Equal(t, []string{"ABC", "GHI"}, strings.Split(d.Message, "\n"))
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestShowValidOrdersByIndex(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "10. TEN\n2. TWO\n1. ONE")
	markValid(t, s, "10, 1, 2")

	d := s.DispatchAction(admin, ActionShowValid)
	assert.Equal(t, "ONE\nTWO\nTEN", d.Message)
}

func TestCodeListOverwrite(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n1. XYZ")
	assert.Equal(t, map[int]string{1: "XYZ"}, s.Snapshot().Codes)
}

func TestCodeListMalformedLinesDropped(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\nnot-a-line\n2. DEF")
	assert.Equal(t, map[int]string{1: "ABC", 2: "DEF"}, s.Snapshot().Codes)
}

func TestCodeListEmptyInputStillSucceeds(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")
	loadCodes(t, s, "nothing useful here")
	snap := s.Snapshot()
	assert.Empty(t, snap.Codes)
	assert.Equal(t, ModeIdle, snap.Mode)
}

func TestValidMarksAccumulate(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n2. DEF")
	markValid(t, s, "1")
	markValid(t, s, "2")
	assert.Equal(t, []int{1, 2}, s.Snapshot().Valid)
}

func TestValidMarksCollapseAndSkipGarbage(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n2. DEF")
	markValid(t, s, " 2, two, 2 ,,1x, 1 ")
	assert.Equal(t, []int{1, 2}, s.Snapshot().Valid)
}

func TestReAddClearsMarks(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n2. DEF")
	markValid(t, s, "1")
	markValid(t, s, "2")

	s.DispatchAction(admin, ActionAddCodeList)
	s.DispatchText(admin, "anything")
	assert.Empty(t, s.Snapshot().Valid)
	assert.Equal(t, ShowError(MsgNoValid), s.DispatchAction(admin, ActionShowValid))
}

func TestStaleIndexSkipped(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC\n2. DEF")
	markValid(t, s, "1,2,7")

	d := s.DispatchAction(admin, ActionShowValid)
	require.Equal(t, DirectivePlain, d.Kind)
	assert.Equal(t, "ABC\nDEF", d.Message)
}

func TestShowValidWithOnlyStaleMarks(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")
	markValid(t, s, "5")

	assert.Equal(t, ShowPlainMessage(""), s.DispatchAction(admin, ActionShowValid))
	assert.Equal(t, []int{5}, s.Snapshot().Valid)
}

func TestApplyReportsStateAroundOperation(t *testing.T) {
	s := NewSession(admin)

	tr := s.ApplyAction(admin, ActionAddCodeList)
	assert.Equal(t, ShowPanel(MsgCodeListPrompt, false), tr.Directive)
	assert.Equal(t, ModeIdle, tr.ModeBefore)
	assert.Equal(t, ModeAwaitingCodeList, tr.After.Mode)

	tr = s.ApplyText(admin, "1. ABC\n2. DEF")
	assert.Equal(t, ModeAwaitingCodeList, tr.ModeBefore)
	assert.Equal(t, ModeIdle, tr.After.Mode)
	assert.Equal(t, map[int]string{1: "ABC", 2: "DEF"}, tr.After.Codes)

	tr = s.ApplyStart(admin)
	assert.Equal(t, ModeIdle, tr.ModeBefore)
	assert.Len(t, tr.After.Codes, 2)

	tr.After.Codes[1] = "MUTATED"
	assert.Equal(t, "ABC", s.Snapshot().Codes[1])
}

func TestApplyIsZeroForStrangers(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")

	assert.Equal(t, Transition{Directive: None}, s.ApplyAction(stranger, ActionReset))
	assert.Equal(t, Transition{Directive: None}, s.ApplyText(stranger, "2. DEF"))
	assert.Equal(t, Transition{Directive: None}, s.ApplyStart(stranger))
	assert.Len(t, s.Snapshot().Codes, 1)
}

func TestResetIsIdempotent(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")
	markValid(t, s, "1")
	s.DispatchAction(admin, ActionAddCodeList)

	assert.Equal(t, ShowPanel(MsgReset, true), s.DispatchAction(admin, ActionReset))
	once := s.Snapshot()
	assert.Equal(t, ShowPanel(MsgReset, true), s.DispatchAction(admin, ActionReset))
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, ModeIdle, twice.Mode)
	assert.Empty(t, twice.Codes)
	assert.Empty(t, twice.Valid)
}

func TestIdleTextIsIgnored(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")
	before := s.Snapshot()
	assert.True(t, s.DispatchText(admin, "2. DEF").IsNone())
	assert.Equal(t, before, s.Snapshot())
}

func TestUnknownActionIsIgnored(t *testing.T) {
	s := NewSession(admin)
	assert.True(t, s.DispatchAction(admin, Action("launch")).IsNone())
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. ABC")
	snap := s.Snapshot()
	snap.Codes[1] = "MUTATED"
	assert.Equal(t, "ABC", s.Snapshot().Codes[1])
}

func TestConcurrentDispatch(t *testing.T) {
	s := NewSession(admin)
	loadCodes(t, s, "1. A\n2. B\n3. C\n4. D")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.DispatchAction(admin, ActionMarkValid)
			s.DispatchText(admin, "1,2")
			s.DispatchAction(admin, ActionShowValid)
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Codes, 4)
	assert.Subset(t, []int{1, 2}, snap.Valid)
}
