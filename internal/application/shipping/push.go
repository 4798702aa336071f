package shipping

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
)

// PushWMSOrders builds and submits one create-order request per group, one
// at a time. When ctx ends the remaining groups are marked skipped; a
// submission already in flight is allowed to finish.
func (s *Service) PushWMSOrders(ctx context.Context, req WMSPushRequest) (*WMSPushResult, error) {
	if s.deps.Submitter == nil {
		return nil, shared.NewDomainError(shared.CodeConfiguration, "WMS submitter is not configured")
	}
	pos := normalizePurchaseOrders(req.PurchaseOrders)
	if len(pos) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one purchase order is required")
	}
	shipped, err := parseShipped(req.Shipped)
	if err != nil {
		return nil, err
	}
	wh, err := s.warehouse(req.Warehouse)
	if err != nil {
		return nil, err
	}
	pickup, err := s.pickupDate(req.PickupDate)
	if err != nil {
		return nil, err
	}

	records, err := s.deps.Source.FetchByPurchaseOrders(ctx, pos, shipped)
	if err != nil {
		return nil, upstreamError(err)
	}
	grouping := s.group(ctx, records)

	// Build everything first so configuration errors surface before any
	// request is sent.
	groups := grouping.Ordered()
	requests := make([]*domainwms.OrderRequest, len(groups))
	for i, g := range groups {
		r, err := s.deps.Orders.Build(g, wh.Key, pickup)
		if err != nil {
			return nil, err
		}
		applyOverride(r, req.Overrides[g.Key])
		requests[i] = r
	}

	batchID := uuid.NewString()
	ctx = logger.WithBatchID(ctx, batchID)
	ctx, span := telemetry.StartSpan(ctx, "shipping.wms_push",
		telemetry.WithAttribute(telemetry.SpanAttrBatchID, batchID),
		telemetry.WithAttribute(telemetry.SpanAttrWarehouse, wh.Key),
		telemetry.WithAttribute(telemetry.SpanAttrGroups, len(groups)),
	)
	defer span.End()
	log := logger.WithLogger(ctx, s.logger)

	out := &WMSPushResult{
		BatchID:   batchID,
		Warehouse: wh.Key,
		Missing:   missingPurchaseOrders(pos, grouping),
		Rows:      make([]SubmissionRow, 0, len(requests)),
	}
	for _, r := range requests {
		payload := r.Payload()
		row := SubmissionRow{
			PurchaseOrder:      r.PurchaseOrder,
			ShippingMethod:     payload.ShippingMethod,
			Payload:            &payload,
			UnassignedQuantity: r.UnassignedQuantity(),
		}
		if row.UnassignedQuantity > 0 {
			log.Warn("Lines without SKU left out of order",
				zap.String("purchase_order", r.PurchaseOrder),
				zap.Int64("quantity", row.UnassignedQuantity))
		}
		if ctx.Err() != nil {
			row.Skipped = true
			out.Skipped++
			out.Rows = append(out.Rows, row)
			continue
		}

		result, err := s.deps.Submitter.Submit(ctx, r)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		row.Result = result
		switch result.Outcome {
		case valueobject.OutcomeSuccess:
			out.Succeeded++
		case valueobject.OutcomeFailure:
			out.Failed++
		default:
			out.Unknown++
		}
		out.Rows = append(out.Rows, row)
	}

	if out.Skipped > 0 {
		log.Warn("WMS push cancelled", zap.Int("skipped", out.Skipped), zap.Error(ctx.Err()))
	} else {
		telemetry.SetOK(span)
	}
	log.Info("WMS push finished",
		zap.String("warehouse", wh.Key),
		zap.Int("succeeded", out.Succeeded),
		zap.Int("failed", out.Failed),
		zap.Int("unknown", out.Unknown),
		zap.Int("skipped", out.Skipped),
		zap.Strings("missing", out.Missing))
	return out, nil
}

func (s *Service) pickupDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.today(), nil
	}
	t, err := time.ParseInLocation(domainwms.PickupLayout, raw, s.cfg.Location)
	if err != nil {
		return time.Time{}, shared.WrapDomainError(shared.CodeInvalidInput, "pickup_date must be MM/DD/YYYY", err)
	}
	return t, nil
}

func applyOverride(r *domainwms.OrderRequest, o OrderOverride) {
	if o.ReferenceNo != "" {
		r.OverrideReference(o.ReferenceNo)
	}
	if o.TrackingNo != "" {
		r.OverrideTracking(o.TrackingNo)
	}
	if o.Items != nil {
		items := make([]domainwms.Item, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, domainwms.Item{SKU: it.SKU, Quantity: it.Quantity})
		}
		r.SetItems(items)
	}
}
