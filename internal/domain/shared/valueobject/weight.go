package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// WeightUnit is a supported weight unit. Pounds are canonical.
type WeightUnit string

const (
	WeightUnitPound    WeightUnit = "lb"
	WeightUnitOunce    WeightUnit = "oz"
	WeightUnitKilogram WeightUnit = "kg"
	WeightUnitGram     WeightUnit = "g"
)

// WeightPrecision is the number of decimal places kept for internal weight math.
const WeightPrecision int32 = 4

var (
	poundsPerOunce    = decimal.NewFromInt(1).Div(decimal.NewFromInt(16))
	poundsPerKilogram = decimal.RequireFromString("2.20462262")
	poundsPerGram     = decimal.RequireFromString("0.00220462262")
)

var weightUnitAliases = map[string]WeightUnit{
	"lb":        WeightUnitPound,
	"lbs":       WeightUnitPound,
	"pound":     WeightUnitPound,
	"pounds":    WeightUnitPound,
	"oz":        WeightUnitOunce,
	"ozs":       WeightUnitOunce,
	"ounce":     WeightUnitOunce,
	"ounces":    WeightUnitOunce,
	"kg":        WeightUnitKilogram,
	"kgs":       WeightUnitKilogram,
	"kilogram":  WeightUnitKilogram,
	"kilograms": WeightUnitKilogram,
	"g":         WeightUnitGram,
	"gram":      WeightUnitGram,
	"grams":     WeightUnitGram,
}

// ParseWeightUnit resolves a raw unit string. The boolean is false for
// units outside the supported vocabulary; an empty string is reported as
// unknown too, callers decide whether to assume pounds.
func ParseWeightUnit(raw string) (WeightUnit, bool) {
	u, ok := weightUnitAliases[strings.ToLower(strings.TrimSpace(raw))]
	return u, ok
}

// IsValid checks if the unit is supported
func (u WeightUnit) IsValid() bool {
	switch u {
	case WeightUnitPound, WeightUnitOunce, WeightUnitKilogram, WeightUnitGram:
		return true
	}
	return false
}

// String returns the string representation
func (u WeightUnit) String() string {
	return string(u)
}

// ToPounds converts value expressed in u to pounds, rounded to WeightPrecision.
// Unsupported units convert to zero.
func (u WeightUnit) ToPounds(value decimal.Decimal) decimal.Decimal {
	var lb decimal.Decimal
	switch u {
	case WeightUnitPound:
		lb = value
	case WeightUnitOunce:
		lb = value.Mul(poundsPerOunce)
	case WeightUnitKilogram:
		lb = value.Mul(poundsPerKilogram)
	case WeightUnitGram:
		lb = value.Mul(poundsPerGram)
	default:
		return decimal.Zero
	}
	return lb.Round(WeightPrecision)
}

// WeightMode selects which weight a shipment document prints.
type WeightMode string

const (
	// WeightModeRaw prints the summed, unit-normalized source weight.
	WeightModeRaw WeightMode = "raw"
	// WeightModeEstimated prints the quantity-based estimate.
	WeightModeEstimated WeightMode = "estimated"

	// DefaultWeightMode is used when neither the request nor configuration
	// names a mode.
	DefaultWeightMode = WeightModeRaw
)

// IsValid checks if the weight mode is known
func (m WeightMode) IsValid() bool {
	return m == WeightModeRaw || m == WeightModeEstimated
}

// String returns the string representation
func (m WeightMode) String() string {
	return string(m)
}

// ParseWeightMode parses a raw mode. Empty input yields DefaultWeightMode.
func ParseWeightMode(raw string) (WeightMode, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultWeightMode, true
	}
	m := WeightMode(s)
	if !m.IsValid() {
		return "", false
	}
	return m, true
}
