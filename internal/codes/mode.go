package codes

// Mode tells how the next free-text message from the operator is interpreted.
type Mode string

const (
	// ModeIdle ignores free text.
	ModeIdle Mode = "idle"
	// ModeAwaitingCodeList reads the next text as a full replacement code list.
	ModeAwaitingCodeList Mode = "awaiting_code_list"
	// ModeAwaitingValidIndices reads the next text as comma-separated indices to mark valid.
	ModeAwaitingValidIndices Mode = "awaiting_valid_indices"
)

// Action is a main menu entry selected by the operator.
type Action string

const (
	ActionAddCodeList Action = "add"
	ActionMarkValid   Action = "mark"
	ActionShowValid   Action = "show"
	ActionReset       Action = "reset"
)

// Actions lists the main menu entries in display order.
func Actions() []Action {
	return []Action{ActionAddCodeList, ActionMarkValid, ActionShowValid, ActionReset}
}

// ParseAction maps a callback token to an Action.
func ParseAction(token string) (Action, bool) {
	for _, a := range Actions() {
		if string(a) == token {
			return a, true
		}
	}
	return "", false
}
