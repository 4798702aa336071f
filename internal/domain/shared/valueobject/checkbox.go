package valueobject

import "strings"

// Checkbox is the canonical two-state token a fillable form checkbox accepts.
type Checkbox string

const (
	CheckboxYes Checkbox = "Yes"
	CheckboxOff Checkbox = "Off"
)

// truthTokens are compared after trimming and lower-casing.
// The check mark is what operators paste from the order spreadsheet.
var truthTokens = map[string]struct{}{
	"on":   {},
	"yes":  {},
	"1":    {},
	"true": {},
	"x":    {},
	"✔":    {},
}

// IsTruthy reports whether raw is one of the accepted affirmative tokens.
// This is the only place the token set is defined; both the BOL field
// builder and the WMS request builder go through it.
func IsTruthy(raw string) bool {
	_, ok := truthTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ParseCheckbox maps any raw string to Yes or Off. It never fails.
func ParseCheckbox(raw string) Checkbox {
	if IsTruthy(raw) {
		return CheckboxYes
	}
	return CheckboxOff
}

// CheckboxFromBool converts a boolean to its checkbox token.
func CheckboxFromBool(b bool) Checkbox {
	if b {
		return CheckboxYes
	}
	return CheckboxOff
}

// Checked reports whether the checkbox is set.
func (c Checkbox) Checked() bool {
	return c == CheckboxYes
}

// String returns the string representation
func (c Checkbox) String() string {
	return string(c)
}

// FlagValue renders a boolean-like raw value as the "1"/"0" flag the
// warehouse API expects (e.g. allocated_auto).
func FlagValue(raw string) string {
	if IsTruthy(raw) {
		return "1"
	}
	return "0"
}
