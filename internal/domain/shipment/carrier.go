package shipment

import (
	"maps"
	"strings"

	"golang.org/x/text/width"
)

// DefaultCarrierTable returns the SCAC to display-name table used when no
// override is configured. The returned map is a fresh copy.
func DefaultCarrierTable() map[string]string {
	return map[string]string{
		"FXFE":    "FedEx Freight",
		"UPGF":    "UPS Freight",
		"RLCA":    "R+L Carriers",
		"EXLA":    "Estes",
		"SAIA":    "SAIA",
		"ABFS":    "ABF",
		"YFSY":    "YRC",
		"ODFL":    "Old Dominion",
		"USPG":    "USPack",
		"UNSP_CG": "UNSP_CG",
	}
}

// CarrierResolver maps carrier codes to display names. The table is copied
// at construction and never written afterwards, so one resolver can be
// shared across goroutines.
type CarrierResolver struct {
	table map[string]string
}

// NewCarrierResolver creates a resolver over a copy of table. Keys are
// normalized the same way lookups are.
func NewCarrierResolver(table map[string]string) *CarrierResolver {
	normalized := make(map[string]string, len(table))
	for code, name := range table {
		normalized[NormalizeCarrierCode(code)] = name
	}
	return &CarrierResolver{table: normalized}
}

// Resolve returns the display name for code, or observedName unchanged when
// the code is not in the table.
func (r *CarrierResolver) Resolve(code, observedName string) string {
	if name, ok := r.table[NormalizeCarrierCode(code)]; ok {
		return name
	}
	return observedName
}

// Table returns a copy of the lookup table.
func (r *CarrierResolver) Table() map[string]string {
	return maps.Clone(r.table)
}

// NormalizeCarrierCode trims, folds full-width characters and upper-cases.
func NormalizeCarrierCode(code string) string {
	return strings.ToUpper(width.Narrow.String(strings.TrimSpace(code)))
}
