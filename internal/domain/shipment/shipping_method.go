package shipment

import (
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
)

// ItemQuantity is a SKU with a quantity, as fed to the shipping policy.
type ItemQuantity struct {
	SKU      string `json:"product_sku"`
	Quantity int64  `json:"quantity"`
}

// ShippingMethodPolicy configures ShippingMethodResolver.
type ShippingMethodPolicy struct {
	// CustomerShipWarehouse always ships CustomerShip.
	CustomerShipWarehouse string
	// SelfLTLWarehouse picks Single or Bulk by item composition.
	SelfLTLWarehouse string

	CustomerShip  valueobject.ShippingMethod
	SelfLTLSingle valueobject.ShippingMethod
	SelfLTLBulk   valueobject.ShippingMethod
}

// ShippingMethodResolver derives the WMS shipping method. It performs no
// I/O and is defined for every input.
type ShippingMethodResolver struct {
	policy ShippingMethodPolicy
}

// NewShippingMethodResolver creates a resolver. Empty method codes fall back
// to the standard vocabulary.
func NewShippingMethodResolver(policy ShippingMethodPolicy) *ShippingMethodResolver {
	if policy.CustomerShip == "" {
		policy.CustomerShip = valueobject.ShippingMethodCustomerShip
	}
	if policy.SelfLTLSingle == "" {
		policy.SelfLTLSingle = valueobject.ShippingMethodSelfLTLSingle
	}
	if policy.SelfLTLBulk == "" {
		policy.SelfLTLBulk = valueobject.ShippingMethodSelfLTLBulk
	}
	policy.CustomerShipWarehouse = normalizeWarehouseKey(policy.CustomerShipWarehouse)
	policy.SelfLTLWarehouse = normalizeWarehouseKey(policy.SelfLTLWarehouse)
	return &ShippingMethodResolver{policy: policy}
}

// Policy returns the effective policy.
func (r *ShippingMethodResolver) Policy() ShippingMethodPolicy {
	return r.policy
}

// Resolve returns the shipping method for a warehouse and an item list.
func (r *ShippingMethodResolver) Resolve(warehouseKey string, items []ItemQuantity) valueobject.ShippingMethod {
	key := normalizeWarehouseKey(warehouseKey)
	switch {
	case key == "":
		return r.policy.CustomerShip
	case key == r.policy.CustomerShipWarehouse:
		return r.policy.CustomerShip
	case key == r.policy.SelfLTLWarehouse:
		if isSingleUnit(items) {
			return r.policy.SelfLTLSingle
		}
		return r.policy.SelfLTLBulk
	default:
		return r.policy.CustomerShip
	}
}

// isSingleUnit reports whether items, after dropping non-positive entries
// and merging by SKU, are exactly one SKU with quantity 1.
func isSingleUnit(items []ItemQuantity) bool {
	sums := make(map[string]int64)
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		sums[strings.TrimSpace(it.SKU)] += it.Quantity
	}
	if len(sums) != 1 {
		return false
	}
	for _, q := range sums {
		return q == 1
	}
	return false
}

func normalizeWarehouseKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
