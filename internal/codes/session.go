package codes

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Session is the process-wide operator session. All methods are safe for concurrent use;
// a single mutex serializes them so a mode read and the transition it leads to cannot
// interleave with another update.
type Session struct {
	adminID int64

	mu    sync.Mutex
	mode  Mode
	codes map[int]string
	valid map[int]struct{}
}

// Snapshot is a detached copy of the session state.
type Snapshot struct {
	Mode  Mode
	Codes map[int]string
	// Valid is sorted ascending.
	Valid []int
}

// NewSession returns an idle session that only accepts adminID.
func NewSession(adminID int64) *Session {
	return &Session{
		adminID: adminID,
		mode:    ModeIdle,
		codes:   make(map[int]string),
		valid:   make(map[int]struct{}),
	}
}

// Transition is the result of one operation together with the state around it,
// all taken under the same lock. It is zero apart from Directive for unauthorized callers.
type Transition struct {
	Directive  Directive
	ModeBefore Mode
	After      Snapshot
}

// Authorize reports whether callerID is the configured operator.
func (s *Session) Authorize(callerID int64) bool {
	return s.adminID != 0 && callerID == s.adminID
}

// Start answers /start with the welcome panel and main menu.
func (s *Session) Start(callerID int64) Directive {
	return s.ApplyStart(callerID).Directive
}

// ApplyStart is Start returning the surrounding state.
func (s *Session) ApplyStart(callerID int64) Transition {
	if !s.Authorize(callerID) {
		return Transition{Directive: None}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(s.mode, ShowPanel(MsgWelcome, true))
}

// DispatchAction applies a main menu selection.
func (s *Session) DispatchAction(callerID int64, action Action) Directive {
	return s.ApplyAction(callerID, action).Directive
}

// ApplyAction is DispatchAction returning the surrounding state.
func (s *Session) ApplyAction(callerID int64, action Action) Transition {
	if !s.Authorize(callerID) {
		return Transition{Directive: None}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.mode
	return s.transitionLocked(before, s.actionLocked(action))
}

func (s *Session) actionLocked(action Action) Directive {
	switch action {
	case ActionAddCodeList:
		s.mode = ModeAwaitingCodeList
		return ShowPanel(MsgCodeListPrompt, false)

	case ActionMarkValid:
		if len(s.codes) == 0 {
			return ShowError(MsgNoCodes)
		}
		s.mode = ModeAwaitingValidIndices
		return ShowPanel(MsgIndicesPrompt, false)

	case ActionShowValid:
		if len(s.valid) == 0 {
			return ShowError(MsgNoValid)
		}
		return ShowPlainMessage(strings.Join(s.validCodesLocked(), "\n"))

	case ActionReset:
		clear(s.codes)
		clear(s.valid)
		s.mode = ModeIdle
		return ShowPanel(MsgReset, true)
	}
	return None
}

// DispatchText interprets free text according to the current mode.
func (s *Session) DispatchText(callerID int64, text string) Directive {
	return s.ApplyText(callerID, text).Directive
}

// ApplyText is DispatchText returning the surrounding state.
func (s *Session) ApplyText(callerID int64, text string) Transition {
	if !s.Authorize(callerID) {
		return Transition{Directive: None}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.mode
	return s.transitionLocked(before, s.textLocked(text))
}

func (s *Session) textLocked(text string) Directive {
	switch s.mode {
	case ModeAwaitingCodeList:
		// A new list always invalidates earlier marks.
		s.codes = ParseCodeList(text)
		clear(s.valid)
		s.mode = ModeIdle
		return ShowPanel(MsgCodesSaved, true)

	case ModeAwaitingValidIndices:
		for _, n := range ParseIndices(text) {
			s.valid[n] = struct{}{}
		}
		s.mode = ModeIdle
		return ShowPanel(MsgValidUpdated, true)
	}
	return None
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) transitionLocked(before Mode, d Directive) Transition {
	return Transition{Directive: d, ModeBefore: before, After: s.snapshotLocked()}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:  s.mode,
		Codes: maps.Clone(s.codes),
		Valid: slices.Sorted(maps.Keys(s.valid)),
	}
}

// validCodesLocked returns the codes at marked indices in ascending index order.
// Marks pointing at indices missing from the list are skipped.
func (s *Session) validCodesLocked() []string {
	out := make([]string, 0, len(s.valid))
	for _, n := range slices.Sorted(maps.Keys(s.valid)) {
		if code, ok := s.codes[n]; ok {
			out = append(out, code)
		}
	}
	return out
}
