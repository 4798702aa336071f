package shipping

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
)

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatOrderDate renders a source timestamp as MM/DD/YY in loc. Timestamps
// without an offset are read as UTC. Unparseable values fall back to their
// first ten characters.
func FormatOrderDate(raw string, loc *time.Location) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc).Format(OrderDateLayout)
		}
	}
	if r := []rune(s); len(r) > 10 {
		return string(r[:10])
	}
	return s
}

// PreviewGroups fetches orders paid in the last days days and returns one
// row per consolidated group.
func (s *Service) PreviewGroups(ctx context.Context, days int) (*GroupPreview, error) {
	days, err := s.days(days)
	if err != nil {
		return nil, err
	}
	records, err := s.deps.Source.FetchRecent(ctx, days)
	if err != nil {
		return nil, upstreamError(err)
	}
	grouping := s.group(ctx, records)

	out := &GroupPreview{
		Days:    days,
		Records: len(records),
		Dropped: grouping.Dropped,
		Groups:  make([]GroupRow, 0, grouping.Len()),
	}
	for _, g := range grouping.Ordered() {
		row := s.groupRow(g)
		out.Fallbacks += row.Fallbacks
		out.Groups = append(out.Groups, row)
	}
	s.deps.Metrics.RecordFallbacks(ctx, "preview", out.Fallbacks)

	logger.WithLogger(ctx, s.logger).Info("Orders grouped",
		zap.Int("days", days),
		zap.Int("records", out.Records),
		zap.Int("groups", len(out.Groups)),
		zap.Int("dropped", out.Dropped),
		zap.Int("fallbacks", out.Fallbacks))
	return out, nil
}

func (s *Service) groupRow(g *shipment.Group) GroupRow {
	rep := g.Representative()
	totals := s.deps.Aggregator.Aggregate(g)
	return GroupRow{
		OID:             g.Key,
		Invoice:         strings.TrimSpace(rep.Invoice),
		OrderDate:       FormatOrderDate(rep.PaymentDate, s.cfg.Location),
		SCAC:            rep.SCAC(),
		SKU8:            rep.SKUPrefix(skuPrefixLength),
		Records:         g.Size(),
		TotalPackages:   totals.TotalPackages,
		DisplayWeight:   totals.DisplayWeight,
		EstimatedWeight: totals.EstimatedWeight,
		Fallbacks:       totals.FallbackCount(),
	}
}

// SearchPurchaseOrders returns the raw orders of the given POs, one row per
// order.
func (s *Service) SearchPurchaseOrders(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	pos := normalizePurchaseOrders(req.PurchaseOrders)
	if len(pos) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one purchase order is required")
	}
	shipped, err := parseShipped(req.Shipped)
	if err != nil {
		return nil, err
	}

	records, err := s.deps.Source.FetchByPurchaseOrders(ctx, pos, shipped)
	if err != nil {
		return nil, upstreamError(err)
	}

	found := make(map[string]struct{}, len(records))
	rows := make([]SearchRow, 0, len(records))
	for _, r := range records {
		to := r.Destination
		po := strings.TrimSpace(r.PurchaseOrderID)
		found[po] = struct{}{}
		rows = append(rows, SearchRow{
			PO:       po,
			Invoice:  strings.TrimSpace(r.Invoice),
			ToName:   to.Name,
			City:     to.City,
			State:    to.State,
			Zip:      to.Zip,
			SCAC:     r.SCAC(),
			Carrier:  r.ObservedCarrierName(),
			Tracking: r.TrackingNumber(),
		})
	}

	var missing []string
	for _, po := range pos {
		if _, ok := found[po]; !ok {
			missing = append(missing, po)
		}
	}
	return &SearchResult{Requested: len(pos), Found: len(rows), Missing: missing, Rows: rows}, nil
}
