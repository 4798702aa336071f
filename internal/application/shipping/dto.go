package shipping

import (
	"github.com/freightdesk/backend/internal/domain/bol"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
)

// =============================================================================
// Preview DTOs
// =============================================================================

// GroupRow is one consolidated shipment in the preview table.
type GroupRow struct {
	OID             string `json:"oid"`
	Invoice         string `json:"invoice"`
	OrderDate       string `json:"order_date"`
	SCAC            string `json:"scac"`
	SKU8            string `json:"sku8"`
	Records         int    `json:"records"`
	TotalPackages   int64  `json:"total_packages"`
	DisplayWeight   int64  `json:"display_weight"`
	EstimatedWeight int64  `json:"estimated_weight"`
	Fallbacks       int    `json:"fallbacks"`
}

// GroupPreview is the result of fetching and grouping recent orders.
type GroupPreview struct {
	Days      int        `json:"days"`
	Records   int        `json:"records"`
	Dropped   int        `json:"dropped"`
	Fallbacks int        `json:"fallbacks"`
	Groups    []GroupRow `json:"groups"`
}

// SearchRequest looks up orders by purchase order id.
type SearchRequest struct {
	PurchaseOrders []string `json:"purchase_orders" binding:"required,min=1,max=200,dive,max=100"`
	Shipped        string   `json:"shipped" binding:"shipped_flag"`
}

// SearchRow is one raw order of a PO search, not consolidated.
type SearchRow struct {
	PO       string `json:"po"`
	Invoice  string `json:"invoice"`
	ToName   string `json:"to_name"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	SCAC     string `json:"scac"`
	Carrier  string `json:"carrier"`
	Tracking string `json:"tracking"`
}

// SearchResult lists matching orders and the POs that returned nothing.
type SearchResult struct {
	Requested int         `json:"requested"`
	Found     int         `json:"found"`
	Missing   []string    `json:"missing,omitempty"`
	Rows      []SearchRow `json:"rows"`
}

// =============================================================================
// BOL DTOs
// =============================================================================

// BOLBundleRequest selects the orders to print. PurchaseOrders wins over
// Days when both are set.
type BOLBundleRequest struct {
	Days           int      `json:"days" binding:"omitempty,min=1,max=31"`
	PurchaseOrders []string `json:"purchase_orders" binding:"omitempty,max=200,dive,max=100"`
	Shipped        string   `json:"shipped" binding:"shipped_flag"`
	Warehouse      string   `json:"warehouse" binding:"omitempty,max=20"`
	WeightMode     string   `json:"weight_mode" binding:"weight_mode"`
}

// DocumentSummary describes one BOL of a bundle.
type DocumentSummary struct {
	Key           string `json:"key"`
	FileName      string `json:"file_name"`
	Records       int    `json:"records"`
	Lines         int    `json:"lines"`
	Overflow      int    `json:"overflow"`
	TotalPackages int64  `json:"total_packages"`
	Weight        string `json:"weight"`
	Fallbacks     int    `json:"fallbacks"`
	Error         string `json:"error,omitempty"`
}

// BOLBundle is a ZIP of rendered BOLs.
type BOLBundle struct {
	BatchID    string            `json:"batch_id"`
	FileName   string            `json:"file_name"`
	Warehouse  string            `json:"warehouse"`
	WeightMode string            `json:"weight_mode"`
	Dropped    int               `json:"dropped"`
	Rendered   int               `json:"rendered"`
	Failed     int               `json:"failed"`
	Documents  []DocumentSummary `json:"documents"`
	Artifact   *bol.Artifact     `json:"artifact,omitempty"`
	Data       []byte            `json:"-"`
}

// =============================================================================
// WMS DTOs
// =============================================================================

// ItemOverride replaces the item list of one group.
type ItemOverride struct {
	SKU      string `json:"product_sku" binding:"required,max=100"`
	Quantity int64  `json:"quantity" binding:"min=0"`
}

// OrderOverride holds operator edits applied before submission. Empty
// strings keep the derived value; a non-nil Items replaces all items.
type OrderOverride struct {
	ReferenceNo string         `json:"reference_no" binding:"omitempty,max=100"`
	TrackingNo  string         `json:"tracking_no" binding:"omitempty,max=100"`
	Items       []ItemOverride `json:"items" binding:"omitempty,dive"`
}

// WMSPushRequest submits the groups of the given POs.
type WMSPushRequest struct {
	PurchaseOrders []string `json:"purchase_orders" binding:"required,min=1,max=200,dive,max=100"`
	Shipped        string   `json:"shipped" binding:"shipped_flag"`
	Warehouse      string   `json:"warehouse" binding:"omitempty,max=20"`
	// PickupDate is MM/DD/YYYY; empty means today.
	PickupDate string                   `json:"pickup_date" binding:"omitempty,datetime=01/02/2006"`
	Overrides  map[string]OrderOverride `json:"overrides" binding:"omitempty,dive"`
}

// SubmissionRow is the outcome for one group.
type SubmissionRow struct {
	PurchaseOrder  string             `json:"purchase_order"`
	ShippingMethod string             `json:"shipping_method"`
	Payload        *domainwms.Payload `json:"payload,omitempty"`
	Result         *domainwms.Result  `json:"result,omitempty"`
	// UnassignedQuantity counts units left out of the request because
	// their line had no SKU.
	UnassignedQuantity int64 `json:"unassigned_quantity,omitempty"`
	// Skipped is set when the batch was cancelled before this group was sent.
	Skipped bool `json:"skipped"`
}

// WMSPushResult summarizes a push batch.
type WMSPushResult struct {
	BatchID   string          `json:"batch_id"`
	Warehouse string          `json:"warehouse"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Unknown   int             `json:"unknown"`
	Skipped   int             `json:"skipped"`
	Missing   []string        `json:"missing,omitempty"`
	Rows      []SubmissionRow `json:"rows"`
}
