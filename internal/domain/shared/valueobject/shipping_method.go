package valueobject

import "strings"

// ShippingMethod is the WMS-facing shipping method code.
type ShippingMethod string

const (
	// ShippingMethodCustomerShip means the customer arranges the freight.
	ShippingMethodCustomerShip ShippingMethod = "CUSTOMER_SHIP"
	// ShippingMethodSelfLTLSingle is warehouse-arranged LTL for a single unit.
	ShippingMethodSelfLTLSingle ShippingMethod = "SELF_LTL_SINGLE"
	// ShippingMethodSelfLTLBulk is warehouse-arranged LTL for everything else.
	ShippingMethodSelfLTLBulk ShippingMethod = "SELF_LTL_BULK"
)

// AllShippingMethods returns the known shipping methods.
func AllShippingMethods() []ShippingMethod {
	return []ShippingMethod{
		ShippingMethodCustomerShip,
		ShippingMethodSelfLTLSingle,
		ShippingMethodSelfLTLBulk,
	}
}

// IsValid checks if the shipping method is one of the known values
func (m ShippingMethod) IsValid() bool {
	switch m {
	case ShippingMethodCustomerShip, ShippingMethodSelfLTLSingle, ShippingMethodSelfLTLBulk:
		return true
	}
	return false
}

// IsSelfLTL reports whether the warehouse arranges the freight.
func (m ShippingMethod) IsSelfLTL() bool {
	return m == ShippingMethodSelfLTLSingle || m == ShippingMethodSelfLTLBulk
}

// String returns the string representation
func (m ShippingMethod) String() string {
	return string(m)
}

// ParseShippingMethod parses a raw method code, case-insensitively.
func ParseShippingMethod(raw string) (ShippingMethod, bool) {
	m := ShippingMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", false
	}
	return m, true
}
