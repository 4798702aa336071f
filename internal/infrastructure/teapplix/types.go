package teapplix

import (
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
)

// UnspecifiedShipClass marks orders without a freight carrier; they are
// never consolidated.
const UnspecifiedShipClass = "UNSP_CG"

// notificationResponse is the OrderNotification body. The API has used
// both casings for the list key.
type notificationResponse struct {
	Orders      []order `json:"orders"`
	OrdersUpper []order `json:"Orders"`
}

func (r notificationResponse) list() []order {
	if len(r.Orders) > 0 {
		return r.Orders
	}
	return r.OrdersUpper
}

type order struct {
	OriginalTxnID   string           `json:"OriginalTxnId"`
	TxnID           string           `json:"TxnId"`
	LastUpdateDate  string           `json:"LastUpdateDate"`
	To              address          `json:"To"`
	OrderDetails    orderDetails     `json:"OrderDetails"`
	OrderItems      []orderItem      `json:"OrderItems"`
	ShippingDetails []shippingDetail `json:"ShippingDetails"`
}

type orderDetails struct {
	Invoice     string `json:"Invoice"`
	ShipClass   string `json:"ShipClass"`
	PaymentDate string `json:"PaymentDate"`
	Custom      string `json:"Custom"`
}

type address struct {
	Name        string `json:"Name"`
	Company     string `json:"Company"`
	Street      string `json:"Street"`
	Street2     string `json:"Street2"`
	Street3     string `json:"Street3"`
	City        string `json:"City"`
	State       string `json:"State"`
	ZipCode     string `json:"ZipCode"`
	Country     string `json:"Country"`
	CountryCode string `json:"CountryCode"`
	PhoneNumber string `json:"PhoneNumber"`
	Email       string `json:"Email"`
}

type orderItem struct {
	ItemSKU  string                `json:"ItemSKU"`
	Quantity valueobject.RawNumber `json:"Quantity"`
}

type shippingDetail struct {
	Package packageInfo `json:"Package"`
}

type packageInfo struct {
	IdenticalPackageCount valueobject.RawNumber `json:"IdenticalPackageCount"`
	Weight                weight                `json:"Weight"`
	TrackingInfo          trackingInfo          `json:"TrackingInfo"`
}

type weight struct {
	Value valueobject.RawNumber `json:"Value"`
	Unit  string                `json:"Unit"`
}

type trackingInfo struct {
	CarrierName    string `json:"CarrierName"`
	TrackingNumber string `json:"TrackingNumber"`
}

func (o order) unspecified() bool {
	return strings.EqualFold(strings.TrimSpace(o.OrderDetails.ShipClass), UnspecifiedShipClass)
}

func (o order) toRecord() shipment.OrderRecord {
	country := o.To.CountryCode
	if strings.TrimSpace(country) == "" {
		country = o.To.Country
	}
	paymentDate := strings.TrimSpace(o.OrderDetails.PaymentDate)
	if paymentDate == "" {
		paymentDate = strings.TrimSpace(o.LastUpdateDate)
	}

	rec := shipment.OrderRecord{
		PurchaseOrderID: strings.TrimSpace(o.OriginalTxnID),
		TxnID:           strings.TrimSpace(o.TxnID),
		Invoice:         strings.TrimSpace(o.OrderDetails.Invoice),
		CarrierCode:     strings.TrimSpace(o.OrderDetails.ShipClass),
		Instructions:    strings.TrimSpace(o.OrderDetails.Custom),
		PaymentDate:     paymentDate,
		Destination: shipment.Address{
			Name:    o.To.Name,
			Company: o.To.Company,
			Street:  o.To.Street,
			Street2: o.To.Street2,
			Street3: o.To.Street3,
			City:    o.To.City,
			State:   o.To.State,
			Zip:     o.To.ZipCode,
			Country: country,
			Phone:   o.To.PhoneNumber,
			Email:   o.To.Email,
		},
		Items:    make([]shipment.LineItem, 0, len(o.OrderItems)),
		Packages: make([]shipment.PackageDescriptor, 0, len(o.ShippingDetails)),
	}
	for _, it := range o.OrderItems {
		rec.Items = append(rec.Items, shipment.LineItem{
			SKU:      strings.TrimSpace(it.ItemSKU),
			Quantity: it.Quantity,
		})
	}
	for _, sd := range o.ShippingDetails {
		p := sd.Package
		rec.Packages = append(rec.Packages, shipment.PackageDescriptor{
			Count:          p.IdenticalPackageCount,
			Weight:         p.Weight.Value,
			WeightUnit:     strings.TrimSpace(p.Weight.Unit),
			TrackingNumber: strings.TrimSpace(p.TrackingInfo.TrackingNumber),
			CarrierName:    strings.TrimSpace(p.TrackingInfo.CarrierName),
		})
	}
	return rec
}
