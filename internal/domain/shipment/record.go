package shipment

import (
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
)

// Address is a destination address as the order source reports it.
// It is not validated.
type Address struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Street  string `json:"street"`
	Street2 string `json:"street2"`
	Street3 string `json:"street3"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// StreetLine joins the first two street lines with a space.
func (a Address) StreetLine() string {
	return strings.TrimSpace(strings.TrimSpace(a.Street) + " " + strings.TrimSpace(a.Street2))
}

// CityStateZip formats "City, ST 12345", dropping empty parts.
func (a Address) CityStateZip() string {
	city := strings.TrimSpace(a.City)
	stateZip := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.Zip))
	switch {
	case city == "":
		return stateZip
	case stateZip == "":
		return city
	default:
		return city + ", " + stateZip
	}
}

// LineItem is one SKU line of an order.
type LineItem struct {
	SKU      string                `json:"sku"`
	Quantity valueobject.RawNumber `json:"quantity"`
}

// PackageDescriptor describes identical packages of an order.
type PackageDescriptor struct {
	Count          valueobject.RawNumber `json:"count"`
	Weight         valueobject.RawNumber `json:"weight"`
	WeightUnit     string                `json:"weight_unit"`
	TrackingNumber string                `json:"tracking_number"`
	CarrierName    string                `json:"carrier_name"`
}

// OrderRecord is one raw order as returned by the order source.
// Records are treated as immutable for the duration of a batch.
type OrderRecord struct {
	PurchaseOrderID string              `json:"purchase_order_id"`
	TxnID           string              `json:"txn_id"`
	Invoice         string              `json:"invoice"`
	CarrierCode     string              `json:"carrier_code"`
	Instructions    string              `json:"instructions"`
	PaymentDate     string              `json:"payment_date"`
	Destination     Address             `json:"destination"`
	Items           []LineItem          `json:"items"`
	Packages        []PackageDescriptor `json:"packages"`
}

// GroupKey returns the consolidation key: the PO id, then the transaction
// id, then the invoice. The boolean is false when none is usable.
func (r OrderRecord) GroupKey() (string, bool) {
	for _, candidate := range []string{r.PurchaseOrderID, r.TxnID, r.Invoice} {
		if k := strings.TrimSpace(candidate); k != "" {
			return k, true
		}
	}
	return "", false
}

// FirstSKU returns the trimmed SKU of the first line item.
func (r OrderRecord) FirstSKU() string {
	if len(r.Items) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Items[0].SKU)
}

// SKUPrefix returns at most the first n runes of FirstSKU.
func (r OrderRecord) SKUPrefix(n int) string {
	return truncateRunes(r.FirstSKU(), n)
}

// FirstPackage returns the first package descriptor, if any.
func (r OrderRecord) FirstPackage() (PackageDescriptor, bool) {
	if len(r.Packages) == 0 {
		return PackageDescriptor{}, false
	}
	return r.Packages[0], true
}

// TrackingNumber returns the tracking number of the first package.
func (r OrderRecord) TrackingNumber() string {
	p, _ := r.FirstPackage()
	return strings.TrimSpace(p.TrackingNumber)
}

// ObservedCarrierName returns the carrier name reported on the first package.
func (r OrderRecord) ObservedCarrierName() string {
	p, _ := r.FirstPackage()
	return strings.TrimSpace(p.CarrierName)
}

// SCAC returns the trimmed carrier code.
func (r OrderRecord) SCAC() string {
	return strings.TrimSpace(r.CarrierCode)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
