package valueobject

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Parsed carries a parsed value and whether it had to fall back to a default.
type Parsed[T any] struct {
	Value       T
	UsedDefault bool
}

// RawNumber is a numeric field as it arrived from an upstream JSON payload.
// Order sources send numbers both as JSON numbers and as strings, and
// sometimes send garbage; parsing is deferred so the caller can count
// how many fields degraded to defaults.
type RawNumber struct {
	raw     string
	present bool
}

// NewRawNumber wraps a raw string. An empty string is treated as absent.
func NewRawNumber(raw string) RawNumber {
	raw = strings.TrimSpace(raw)
	return RawNumber{raw: raw, present: raw != ""}
}

// RawInt wraps an integer.
func RawInt(v int64) RawNumber {
	return RawNumber{raw: decimal.NewFromInt(v).String(), present: true}
}

// RawDecimal wraps a decimal.
func RawDecimal(v decimal.Decimal) RawNumber {
	return RawNumber{raw: v.String(), present: true}
}

// Raw returns the original text.
func (n RawNumber) Raw() string {
	return n.raw
}

// IsPresent reports whether the field carried any value at all.
func (n RawNumber) IsPresent() bool {
	return n.present
}

// Decimal parses the value. Absent or malformed input yields zero with
// UsedDefault set.
func (n RawNumber) Decimal() Parsed[decimal.Decimal] {
	if !n.present {
		return Parsed[decimal.Decimal]{Value: decimal.Zero, UsedDefault: true}
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return Parsed[decimal.Decimal]{Value: decimal.Zero, UsedDefault: true}
	}
	return Parsed[decimal.Decimal]{Value: d}
}

// Int parses the value as an integer. Fractional input is truncated and
// flagged; absent or malformed input yields zero with UsedDefault set.
func (n RawNumber) Int() Parsed[int64] {
	d := n.Decimal()
	if d.UsedDefault {
		return Parsed[int64]{Value: 0, UsedDefault: true}
	}
	if !d.Value.IsInteger() {
		return Parsed[int64]{Value: d.Value.Truncate(0).IntPart(), UsedDefault: true}
	}
	return Parsed[int64]{Value: d.Value.IntPart()}
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (n *RawNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = RawNumber{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NewRawNumber(s)
		return nil
	}
	// Numbers and anything else are kept verbatim; Decimal and Int reject
	// what does not parse.
	*n = NewRawNumber(string(data))
	return nil
}

// MarshalJSON writes the value back as a JSON number when it parses, as a
// string otherwise, and as null when absent.
func (n RawNumber) MarshalJSON() ([]byte, error) {
	if !n.present {
		return []byte("null"), nil
	}
	if _, err := decimal.NewFromString(n.raw); err == nil {
		return []byte(n.raw), nil
	}
	return json.Marshal(n.raw)
}
