package codes

// DirectiveKind selects how the transport presents a Directive.
type DirectiveKind int

const (
	// DirectiveNone means nothing is sent back.
	DirectiveNone DirectiveKind = iota
	// DirectivePanel is a regular bot message, optionally with the main menu attached.
	DirectivePanel
	// DirectiveError reports an unmet precondition.
	DirectiveError
	// DirectivePlain carries raw content meant to be copied as is.
	DirectivePlain
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectivePanel:
		return "panel"
	case DirectiveError:
		return "error"
	case DirectivePlain:
		return "plain"
	default:
		return "none"
	}
}

// Directive is what the session asks the transport to show.
type Directive struct {
	Kind     DirectiveKind
	Message  string
	WithMenu bool
}

// None is returned for ignored input and unauthorized callers.
var None = Directive{}

// ShowPanel builds a panel directive.
func ShowPanel(message string, withMenu bool) Directive {
	return Directive{Kind: DirectivePanel, Message: message, WithMenu: withMenu}
}

// ShowError builds an error directive.
func ShowError(message string) Directive {
	return Directive{Kind: DirectiveError, Message: message}
}

// ShowPlainMessage builds a plain content directive.
func ShowPlainMessage(message string) Directive {
	return Directive{Kind: DirectivePlain, Message: message}
}

// IsNone reports whether nothing should be sent.
func (d Directive) IsNone() bool {
	return d.Kind == DirectiveNone
}

// Operator-facing texts.
const (
	MsgWelcome        = "👋 Admin Panel\n\nChoose an action below 👇"
	MsgCodeListPrompt = "➕ Paste code list like:\n\n1. CODE123\n2. CODE456\n3. CODE789"
	MsgIndicesPrompt  = "✅ Send valid code numbers like:\n\n1,3,5"
	MsgNoCodes        = "No codes added yet."
	MsgNoValid        = "No valid codes marked yet."
	MsgReset          = "🔄 All data reset"
	MsgCodesSaved     = "✅ Codes saved successfully"
	MsgValidUpdated   = "✅ Valid codes updated"
)
