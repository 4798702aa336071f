package wms

import (
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
)

// Item is one SKU line of a create-order request.
type Item struct {
	SKU      string `json:"product_sku"`
	Quantity int64  `json:"quantity"`
}

// Destination holds the ship-to fields of a create-order request.
type Destination struct {
	Name           string
	Company        string
	Phone          string
	CellPhone      string
	PhoneExtension string
	Email          string
	Address1       string
	Address2       string
	Address3       string
	City           string
	District       string
	Province       string
	Zipcode        string
	CountryCode    string
}

// Payload is the JSON object sent as paramsJson. Field order follows the
// warehouse API documentation.
type Payload struct {
	Platform       string `json:"platform"`
	AllocatedAuto  string `json:"allocated_auto"`
	WarehouseCode  string `json:"warehouse_code"`
	ShippingMethod string `json:"shipping_method"`
	ReferenceNo    string `json:"reference_no"`
	OrderDesc      string `json:"order_desc"`
	Remark         string `json:"remark"`
	CountryCode    string `json:"country_code"`
	Province       string `json:"province"`
	City           string `json:"city"`
	District       string `json:"district"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2"`
	Address3       string `json:"address3"`
	Zipcode        string `json:"zipcode"`
	Company        string `json:"company"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	CellPhone      string `json:"cell_phone"`
	PhoneExtension string `json:"phone_extension"`
	Email          string `json:"email"`
	PlatformShop   string `json:"platform_shop"`
	Items          []Item `json:"items"`
	TrackingNo     string `json:"tracking_no"`
}

// OrderRequest is a create-order call for one consolidated group. Items may
// be edited after build; the shipping method is derived from the current
// items every time it is read.
type OrderRequest struct {
	PurchaseOrder string
	Invoice       string
	WarehouseKey  string
	WarehouseCode string
	CarrierCode   string
	Platform      string
	// AllocatedAuto is a raw boolean-like value rendered through
	// valueobject.FlagValue.
	AllocatedAuto string
	OrderDesc     string
	Destination   Destination

	items           []Item
	unassigned      int64
	referencePrefix string
	referenceNo     string
	trackingNo      string
	methods         *shipment.ShippingMethodResolver
}

// Items returns a copy of the current items.
func (r *OrderRequest) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// SetItems replaces the items. Lines with a blank SKU or a non-positive
// quantity are dropped and the rest are merged by SKU in first-seen order.
// Positive quantities dropped for a blank SKU are reported by
// UnassignedQuantity.
func (r *OrderRequest) SetItems(items []Item) {
	r.items, r.unassigned = mergeItems(items)
}

// UnassignedQuantity returns the units from the last SetItems that had a
// positive quantity but no SKU, and so were not sent.
func (r *OrderRequest) UnassignedQuantity() int64 {
	return r.unassigned
}

// SetQuantity sets the quantity of sku, appending it when new. A
// non-positive quantity removes the SKU.
func (r *OrderRequest) SetQuantity(sku string, quantity int64) {
	sku = strings.TrimSpace(sku)
	if quantity <= 0 {
		r.RemoveItem(sku)
		return
	}
	for i := range r.items {
		if r.items[i].SKU == sku {
			r.items[i].Quantity = quantity
			return
		}
	}
	r.items = append(r.items, Item{SKU: sku, Quantity: quantity})
}

// RemoveItem drops sku from the items.
func (r *OrderRequest) RemoveItem(sku string) {
	sku = strings.TrimSpace(sku)
	out := r.items[:0]
	for _, it := range r.items {
		if it.SKU != sku {
			out = append(out, it)
		}
	}
	r.items = out
}

// TotalQuantity returns the sum of item quantities.
func (r *OrderRequest) TotalQuantity() int64 {
	var total int64
	for _, it := range r.items {
		total += it.Quantity
	}
	return total
}

// ShippingMethod resolves the method from the warehouse key and current items.
func (r *OrderRequest) ShippingMethod() valueobject.ShippingMethod {
	qs := make([]shipment.ItemQuantity, 0, len(r.items))
	for _, it := range r.items {
		qs = append(qs, shipment.ItemQuantity{SKU: it.SKU, Quantity: it.Quantity})
	}
	return r.methods.Resolve(r.WarehouseKey, qs)
}

// OverrideReference sets reference_no explicitly.
func (r *OrderRequest) OverrideReference(ref string) {
	r.referenceNo = strings.TrimSpace(ref)
}

// OverrideTracking sets tracking_no explicitly.
func (r *OrderRequest) OverrideTracking(tracking string) {
	r.trackingNo = strings.TrimSpace(tracking)
}

// ReferenceNo returns the override or the prefixed PO id.
func (r *OrderRequest) ReferenceNo() string {
	if r.referenceNo != "" {
		return r.referenceNo
	}
	return r.referencePrefix + r.PurchaseOrder
}

// TrackingNo returns the override or the prefixed PO id.
func (r *OrderRequest) TrackingNo() string {
	if r.trackingNo != "" {
		return r.trackingNo
	}
	return r.referencePrefix + r.PurchaseOrder
}

// Payload renders the request as sent on the wire.
func (r *OrderRequest) Payload() Payload {
	d := r.Destination
	return Payload{
		Platform:       r.Platform,
		AllocatedAuto:  valueobject.FlagValue(r.AllocatedAuto),
		WarehouseCode:  r.WarehouseCode,
		ShippingMethod: r.ShippingMethod().String(),
		ReferenceNo:    r.ReferenceNo(),
		OrderDesc:      r.OrderDesc,
		Remark:         r.Invoice,
		CountryCode:    d.CountryCode,
		Province:       d.Province,
		City:           d.City,
		District:       d.District,
		Address1:       d.Address1,
		Address2:       d.Address2,
		Address3:       d.Address3,
		Zipcode:        d.Zipcode,
		Company:        d.Company,
		Name:           d.Name,
		Phone:          d.Phone,
		CellPhone:      d.CellPhone,
		PhoneExtension: d.PhoneExtension,
		Email:          d.Email,
		PlatformShop:   r.CarrierCode,
		Items:          r.Items(),
		TrackingNo:     r.TrackingNo(),
	}
}

func mergeItems(items []Item) ([]Item, int64) {
	sums := make(map[string]int64, len(items))
	order := make([]string, 0, len(items))
	var unassigned int64
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		sku := strings.TrimSpace(it.SKU)
		if sku == "" {
			unassigned += it.Quantity
			continue
		}
		if _, seen := sums[sku]; !seen {
			order = append(order, sku)
		}
		sums[sku] += it.Quantity
	}
	out := make([]Item, 0, len(order))
	for _, sku := range order {
		out = append(out, Item{SKU: sku, Quantity: sums[sku]})
	}
	return out, unassigned
}
