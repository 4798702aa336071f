// Package shipment contains the Shipment Consolidation bounded context.
// It turns raw order records into consolidated LTL shipments.
//
// Key concepts:
//   - OrderRecord: one order line as returned by the order source
//   - Group: records sharing a purchase-order id, consolidated into one shipment
//   - AggregateTotals: package, weight and quantity totals for a group
//   - CarrierResolver / ShippingMethodResolver: pure policy lookups
//
// Design Pattern: Ports & Adapters
//   - OrderSource is defined here
//   - Adapters live in the infrastructure layer
package shipment
