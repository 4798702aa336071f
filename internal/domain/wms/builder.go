package wms

import (
	"fmt"
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shipment"
)

// PickupLayout is the date layout used in order_desc.
const PickupLayout = "01/02/2006"

// BuilderConfig holds the constant create-order parameters.
type BuilderConfig struct {
	Platform      string
	CountryCode   string
	AllocatedAuto string
	// ReferencePrefix is prepended to the PO id for reference_no and
	// tracking_no unless they are overridden.
	ReferencePrefix string
}

// DefaultBuilderConfig returns the standard parameters with the test prefix.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Platform:        "OTHER",
		CountryCode:     "US",
		AllocatedAuto:   "0",
		ReferencePrefix: "test-",
	}
}

// Builder produces create-order requests from consolidated groups.
type Builder struct {
	cfg      BuilderConfig
	profiles *shipment.ProfileDirectory
	methods  *shipment.ShippingMethodResolver
}

// NewBuilder creates a request builder.
func NewBuilder(cfg BuilderConfig, profiles *shipment.ProfileDirectory, methods *shipment.ShippingMethodResolver) *Builder {
	return &Builder{cfg: cfg, profiles: profiles, methods: methods}
}

// Build creates the request for g shipped from warehouseKey. Configuration
// defects are returned as *ConfigError.
func (b *Builder) Build(g *shipment.Group, warehouseKey string, pickup time.Time) (*OrderRequest, error) {
	if g.Size() == 0 {
		return nil, ErrEmptyGroup
	}
	wh, err := b.profiles.Warehouse(warehouseKey)
	if err != nil {
		return nil, &ConfigError{Field: "warehouses." + strings.ToLower(strings.TrimSpace(warehouseKey)), Reason: "is not configured", Cause: err}
	}
	if strings.TrimSpace(wh.WMSCode) == "" {
		return nil, NewConfigError(fmt.Sprintf("warehouses.%s.wms_code", strings.ToLower(wh.Key)))
	}

	rep := g.Representative()
	to := rep.Destination
	city := strings.TrimSpace(to.City)

	req := &OrderRequest{
		PurchaseOrder: g.Key,
		Invoice:       strings.TrimSpace(rep.Invoice),
		WarehouseKey:  wh.Key,
		WarehouseCode: strings.TrimSpace(wh.WMSCode),
		CarrierCode:   rep.SCAC(),
		Platform:      b.cfg.Platform,
		AllocatedAuto: b.cfg.AllocatedAuto,
		OrderDesc:     "Pickup date: " + pickup.Format(PickupLayout),
		Destination: Destination{
			Name:        strings.TrimSpace(to.Name),
			Company:     strings.TrimSpace(to.Company),
			Phone:       strings.TrimSpace(to.Phone),
			CellPhone:   strings.TrimSpace(to.Phone),
			Email:       strings.TrimSpace(to.Email),
			Address1:    strings.TrimSpace(to.Street),
			Address2:    strings.TrimSpace(to.Street2),
			Address3:    strings.TrimSpace(to.Street3),
			City:        city,
			District:    city,
			Province:    strings.TrimSpace(to.State),
			Zipcode:     strings.TrimSpace(to.Zip),
			CountryCode: countryCode(to.Country, b.cfg.CountryCode),
		},
		referencePrefix: b.cfg.ReferencePrefix,
		methods:         b.methods,
	}
	req.SetItems(groupItems(g))
	return req, nil
}

// groupItems flattens the line items of every record in group order.
func groupItems(g *shipment.Group) []Item {
	var items []Item
	for _, rec := range g.Records {
		for _, li := range rec.Items {
			items = append(items, Item{SKU: li.SKU, Quantity: li.Quantity.Int().Value})
		}
	}
	return items
}

func countryCode(raw, fallback string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if len(c) == 2 {
		return c
	}
	return fallback
}
