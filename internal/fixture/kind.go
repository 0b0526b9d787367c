package fixture

import "fmt"

// Kind identifies how a marked span entered the document.
// The zero value is not a valid kind.
type Kind int

const (
	SingleLinePaste Kind = iota + 1
	MultiLinePaste
	AcceptTrigger
)

// Classification labels. Detectors answer with one of these (or any other
// string, which never matches an expected label).
const (
	LabelPasteSingle = "paste-single"
	LabelPasteMulti  = "paste-multi"
	LabelAccept      = "accept"
	LabelTyped       = "typed"

	// LabelError is reported when the detector failed or timed out.
	// It always counts as a failure.
	LabelError = "error"
)

// Marker tokens, bit-exact.
const (
	TokenSingleLine = "PASTE_SINGLE_LINE_MARKER"
	TokenMultiLine  = "PASTE_MULTI_LINE_MARKER"
)

// AcceptTriggerNamePattern marks a fixture as an accept-trigger fixture
// when it appears in the file's base name.
const AcceptTriggerNamePattern = "accept-trigger"

var kindNames = map[Kind]string{
	SingleLinePaste: "single_line_paste",
	MultiLinePaste:  "multi_line_paste",
	AcceptTrigger:   "accept_trigger",
}

// String returns the snake_case name used in reports and the store.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExpectedLabel returns the label a correct detector reports for k.
// It is used for assertions only and must never reach the detector.
func (k Kind) ExpectedLabel() string {
	switch k {
	case SingleLinePaste:
		return LabelPasteSingle
	case MultiLinePaste:
		return LabelPasteMulti
	case AcceptTrigger:
		return LabelAccept
	default:
		return ""
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown marker kind %q", s)
}

// kindForToken maps a complete marker token to its kind.
func kindForToken(token string) (Kind, bool) {
	switch token {
	case TokenSingleLine:
		return SingleLinePaste, true
	case TokenMultiLine:
		return MultiLinePaste, true
	default:
		return 0, false
	}
}
