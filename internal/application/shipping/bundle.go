package shipping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/printing"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
)

type renderedDocument struct {
	doc  bol.Document
	data []byte
	err  error
}

// BuildBOLBundle renders one BOL per group and zips them. A group that
// fails to render is reported in its DocumentSummary and left out of the
// ZIP; the call fails only when no document renders or ctx ends.
func (s *Service) BuildBOLBundle(ctx context.Context, req BOLBundleRequest) (*BOLBundle, error) {
	if s.deps.Renderer == nil {
		return nil, shared.NewDomainError(shared.CodeConfiguration, "BOL renderer is not configured")
	}
	mode := s.cfg.DefaultWeightMode
	if req.WeightMode != "" {
		m, ok := valueobject.ParseWeightMode(req.WeightMode)
		if !ok {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "weight_mode must be raw or estimated")
		}
		mode = m
	}
	wh, err := s.warehouse(req.Warehouse)
	if err != nil {
		return nil, err
	}
	records, err := s.fetchForBatch(ctx, req.Days, req.PurchaseOrders, req.Shipped)
	if err != nil {
		return nil, err
	}
	grouping := s.group(ctx, records)
	if grouping.Len() == 0 {
		return nil, shared.NewDomainError(shared.CodeNotFound, "No orders to print")
	}

	batchID := uuid.NewString()
	ctx = logger.WithBatchID(ctx, batchID)
	ctx, span := telemetry.StartSpan(ctx, "shipping.bol_bundle",
		telemetry.WithAttribute(telemetry.SpanAttrBatchID, batchID),
		telemetry.WithAttribute(telemetry.SpanAttrWarehouse, wh.Key),
		telemetry.WithAttribute(telemetry.SpanAttrWeightMode, mode.String()),
		telemetry.WithAttribute(telemetry.SpanAttrGroups, grouping.Len()),
	)
	defer span.End()
	log := logger.WithLogger(ctx, s.logger)

	asOf := s.today()
	groups := grouping.Ordered()
	rendered, err := s.renderAll(ctx, groups, wh, asOf, mode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out := &BOLBundle{
		BatchID:    batchID,
		FileName:   bol.BundleName(batchID),
		Warehouse:  wh.Key,
		WeightMode: mode.String(),
		Dropped:    grouping.Dropped,
		Documents:  make([]DocumentSummary, 0, len(rendered)),
	}
	entries := make([]printing.BundleEntry, 0, len(rendered))
	fallbacks := 0
	for i, r := range rendered {
		summary := documentSummary(r.doc, groups[i].Size())
		fallbacks += summary.Fallbacks
		if r.err != nil {
			summary.Error = r.err.Error()
			out.Failed++
		} else {
			out.Rendered++
			entries = append(entries, printing.BundleEntry{Name: r.doc.FileName, Data: r.data})
		}
		out.Documents = append(out.Documents, summary)
	}
	s.deps.Metrics.RecordFallbacks(ctx, "bol", fallbacks)
	telemetry.SetAttributes(span, telemetry.SpanAttrFallbacks, fallbacks)

	if out.Rendered == 0 {
		err := shared.WrapDomainError(shared.CodeUpstream, "No BOL could be rendered", rendered[0].err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	out.Data, err = printing.BuildBundle(entries, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.deps.Store != nil {
		artifact, err := s.deps.Store.Save(ctx, out.FileName, out.Data, bol.ContentTypeZIP)
		if err != nil {
			log.Warn("BOL bundle not stored", zap.Error(err))
		} else {
			out.Artifact = artifact
		}
	}

	telemetry.SetOK(span)
	log.Info("BOL bundle built",
		zap.String("warehouse", wh.Key),
		zap.String("weight_mode", mode.String()),
		zap.Int("rendered", out.Rendered),
		zap.Int("failed", out.Failed),
		zap.Int("dropped", out.Dropped),
		zap.Int("bytes", len(out.Data)))
	return out, nil
}

// renderAll builds and renders every group with bounded concurrency. The
// result slice keeps group order.
func (s *Service) renderAll(
	ctx context.Context,
	groups []*shipment.Group,
	wh shipment.WarehouseProfile,
	asOf time.Time,
	mode valueobject.WeightMode,
) ([]renderedDocument, error) {
	out := make([]renderedDocument, len(groups))
	billing := s.deps.Profiles.Billing()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.RenderConcurrency)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc := s.deps.Documents.Build(grp, wh, billing, asOf, mode)
			data, err := s.deps.Renderer.RenderBOL(gctx, &doc)
			if err == nil && len(data) == 0 {
				err = fmt.Errorf("shipping: empty document for %s", grp.Key)
			}
			s.deps.Metrics.RecordBOL(gctx, err == nil)
			if err != nil {
				logger.WithLogger(gctx, s.logger).Warn("BOL render failed",
					zap.String("group", grp.Key), zap.Error(err))
			}
			out[i] = renderedDocument{doc: doc, data: data, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func documentSummary(doc bol.Document, records int) DocumentSummary {
	weight := doc.Fields.Get(bol.FieldTotalWeight)
	return DocumentSummary{
		Key:           doc.Key,
		FileName:      doc.FileName,
		Records:       records,
		Lines:         doc.Lines,
		Overflow:      doc.Overflow,
		TotalPackages: doc.Totals.TotalPackages,
		Weight:        weight,
		Fallbacks:     doc.Totals.FallbackCount(),
	}
}

// fetchForBatch loads records by PO when any are given, otherwise by date
// window.
func (s *Service) fetchForBatch(ctx context.Context, days int, pos []string, shippedRaw string) ([]shipment.OrderRecord, error) {
	if pos = normalizePurchaseOrders(pos); len(pos) > 0 {
		shipped, err := parseShipped(shippedRaw)
		if err != nil {
			return nil, err
		}
		records, err := s.deps.Source.FetchByPurchaseOrders(ctx, pos, shipped)
		return records, upstreamError(err)
	}
	days, err := s.days(days)
	if err != nil {
		return nil, err
	}
	records, err := s.deps.Source.FetchRecent(ctx, days)
	return records, upstreamError(err)
}
