package shipment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownWarehouse is returned when a warehouse key has no profile.
var ErrUnknownWarehouse = errors.New("shipment: unknown warehouse")

// WarehouseProfile is static configuration for an origin warehouse.
type WarehouseProfile struct {
	Key          string
	Name         string
	Street       string
	CityStateZip string
	// SID is the shipper identification printed on the BOL.
	SID string
	// WMSCode is the warehouse code the WMS expects in warehouse_code.
	WMSCode string
	// ShortCode is the two-letter code used in artifact names.
	ShortCode string
}

// FileCode returns the two-letter warehouse code for artifact names,
// derived from the key when ShortCode is not set.
func (w WarehouseProfile) FileCode() string {
	code := strings.TrimSpace(w.ShortCode)
	if code == "" {
		code = strings.TrimSpace(w.Key)
	}
	return truncateRunes(strings.ToUpper(code), 2)
}

// BillingProfile is the bill-to party printed on every BOL.
type BillingProfile struct {
	Name         string
	Street       string
	CityStateZip string
}

// ProfileDirectory is a read-only set of warehouse profiles.
type ProfileDirectory struct {
	warehouses map[string]WarehouseProfile
	billing    BillingProfile
}

// NewProfileDirectory copies profiles into a directory keyed by upper-cased key.
func NewProfileDirectory(warehouses []WarehouseProfile, billing BillingProfile) *ProfileDirectory {
	d := &ProfileDirectory{
		warehouses: make(map[string]WarehouseProfile, len(warehouses)),
		billing:    billing,
	}
	for _, w := range warehouses {
		w.Key = normalizeWarehouseKey(w.Key)
		d.warehouses[w.Key] = w
	}
	return d
}

// Warehouse returns the profile for key.
func (d *ProfileDirectory) Warehouse(key string) (WarehouseProfile, error) {
	w, ok := d.warehouses[normalizeWarehouseKey(key)]
	if !ok {
		return WarehouseProfile{}, fmt.Errorf("%w: %q", ErrUnknownWarehouse, key)
	}
	return w, nil
}

// Billing returns the billing profile.
func (d *ProfileDirectory) Billing() BillingProfile {
	return d.billing
}

// Keys returns the configured warehouse keys, sorted.
func (d *ProfileDirectory) Keys() []string {
	keys := make([]string, 0, len(d.warehouses))
	for k := range d.warehouses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
