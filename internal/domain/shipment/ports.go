package shipment

import (
	"context"
	"errors"
)

// ErrOrderSourceUnavailable is returned when the order source cannot be reached
// or answers with a non-success status.
var ErrOrderSourceUnavailable = errors.New("shipment: order source unavailable")

// ShippedFilter selects orders by shipped status. The empty value means both.
type ShippedFilter string

const (
	ShippedAny ShippedFilter = ""
	ShippedNo  ShippedFilter = "0"
	ShippedYes ShippedFilter = "1"
)

// IsValid checks if the filter is one of the known values.
func (f ShippedFilter) IsValid() bool {
	switch f {
	case ShippedAny, ShippedNo, ShippedYes:
		return true
	}
	return false
}

// OrderSource fetches raw order records. Implementations handle paging and
// date windows; callers only see the record shape.
type OrderSource interface {
	// FetchRecent returns records paid within the last days days.
	FetchRecent(ctx context.Context, days int) ([]OrderRecord, error)
	// FetchByPurchaseOrders returns records for the given PO ids.
	FetchByPurchaseOrders(ctx context.Context, purchaseOrders []string, shipped ShippedFilter) ([]OrderRecord, error)
}
