package shipping

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
)

var (
	mst       = time.FixedZone("MST", -7*60*60)
	fixedNow  = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	testDest  = shipment.Address{Name: "Max Dog", Street: "58 Fruit St.", City: "Worcester", State: "MA", Zip: "01609", Phone: "1234567890"}
	otherDest = shipment.Address{Name: "Ann Lee", Street: "9 Elm Rd", City: "Austin", State: "TX", Zip: "78701"}
)

func testRecords() []shipment.OrderRecord {
	return []shipment.OrderRecord{
		{
			PurchaseOrderID: "PO-1",
			Invoice:         "INV-1",
			CarrierCode:     "SAIA",
			PaymentDate:     "2026-03-09T05:00:00Z",
			Destination:     testDest,
			Items:           []shipment.LineItem{{SKU: "ABC12345XYZ", Quantity: valueobject.RawInt(2)}},
			Packages: []shipment.PackageDescriptor{{
				Count: valueobject.RawInt(1), Weight: valueobject.NewRawNumber("40"), WeightUnit: "lb",
				TrackingNumber: "PRO-1", CarrierName: "Saia LTL Freight",
			}},
		},
		{
			PurchaseOrderID: "PO-1",
			Invoice:         "INV-1B",
			CarrierCode:     "SAIA",
			Destination:     testDest,
			Items:           []shipment.LineItem{{SKU: "DEF", Quantity: valueobject.RawInt(1)}},
		},
		{},
		{
			PurchaseOrderID: "PO-2",
			Invoice:         "INV-2",
			CarrierCode:     "ODFL",
			PaymentDate:     "not a date at all",
			Destination:     otherDest,
			Items:           []shipment.LineItem{{SKU: "GHI", Quantity: valueobject.NewRawNumber("x")}},
			Packages:        []shipment.PackageDescriptor{{Count: valueobject.RawInt(1)}},
		},
	}
}

type testHarness struct {
	svc       *Service
	source    *MockOrderSource
	renderer  *MockRenderer
	store     *MockArtifactStore
	submitter *MockSubmitter
	logs      *observer.ObservedLogs
}

func newHarness(t *testing.T, modify func(*Dependencies)) *testHarness {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	profiles := shipment.NewProfileDirectory([]shipment.WarehouseProfile{
		{Key: "NJ", Name: "NJ Warehouse", Street: "1 Dock Rd", CityStateZip: "Edison, NJ 08817", SID: "SID-NJ", WMSCode: "NJW"},
		{Key: "CA", Name: "CA Warehouse", ShortCode: "LA"},
	}, shipment.BillingProfile{Name: "Freight Desk LLC"})
	methods := shipment.NewShippingMethodResolver(shipment.ShippingMethodPolicy{
		CustomerShipWarehouse: "CA",
		SelfLTLWarehouse:      "NJ",
	})
	agg := shipment.NewAggregator(shipment.DefaultWeightPolicy())

	h := &testHarness{
		source:    &MockOrderSource{},
		renderer:  &MockRenderer{},
		store:     &MockArtifactStore{},
		submitter: &MockSubmitter{},
		logs:      logs,
	}
	deps := Dependencies{
		Source:     h.source,
		Profiles:   profiles,
		Aggregator: agg,
		Documents:  bol.NewBuilder(bol.DefaultConfig(), agg, shipment.NewCarrierResolver(shipment.DefaultCarrierTable())),
		Orders:     domainwms.NewBuilder(domainwms.DefaultBuilderConfig(), profiles, methods),
		Renderer:   h.renderer,
		Store:      h.store,
		Submitter:  h.submitter,
		Logger:     zap.New(core),
	}
	if modify != nil {
		modify(&deps)
	}
	svc, err := NewService(deps, Config{DefaultWarehouse: "NJ", Location: mst, RenderConcurrency: 2})
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	h.svc = svc
	return h
}

func pdfOf(doc *bol.Document) []byte {
	return []byte("%PDF-" + doc.FileName)
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestNewService_MissingDependencies(t *testing.T) {
	_, err := NewService(Dependencies{}, Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order source")
}

func TestNewService_Defaults(t *testing.T) {
	h := newHarness(t, nil)
	cfg := h.svc.Config()
	assert.Equal(t, DefaultDays, cfg.DefaultDays)
	assert.Equal(t, 31, cfg.MaxDays)
	assert.Equal(t, valueobject.WeightModeRaw, cfg.DefaultWeightMode)
	assert.Equal(t, []string{"CA", "NJ"}, h.svc.Warehouses())
}

func TestFormatOrderDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2026-03-09T05:00:00Z", "03/08/26"},
		{"2026-03-09T05:00:00.123+00:00", "03/08/26"},
		{"2026-03-09T12:00:00", "03/09/26"},
		{"2026-03-09 12:00:00", "03/09/26"},
		{"2026-03-09", "03/08/26"},
		{"not a date at all", "not a date"},
		{"short", "short"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOrderDate(tt.raw, mst))
		})
	}
}

func TestPreviewGroups(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchRecent", mock.Anything, DefaultDays).Return(testRecords(), nil)

	preview, err := h.svc.PreviewGroups(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, preview.Days)
	assert.Equal(t, 4, preview.Records)
	assert.Equal(t, 1, preview.Dropped)
	require.Len(t, preview.Groups, 2)

	first := preview.Groups[0]
	assert.Equal(t, "PO-1", first.OID)
	assert.Equal(t, "INV-1", first.Invoice)
	assert.Equal(t, "03/08/26", first.OrderDate)
	assert.Equal(t, "SAIA", first.SCAC)
	assert.Equal(t, "ABC12345", first.SKU8)
	assert.Equal(t, 2, first.Records)
	assert.Equal(t, int64(1), first.TotalPackages)
	assert.Equal(t, int64(40), first.DisplayWeight)
	assert.Equal(t, int64(190), first.EstimatedWeight)

	second := preview.Groups[1]
	assert.Equal(t, "PO-2", second.OID)
	assert.Equal(t, "not a date", second.OrderDate)
	assert.Positive(t, second.Fallbacks)
	assert.Equal(t, first.Fallbacks+second.Fallbacks, preview.Fallbacks)

	assert.Equal(t, 1, h.logs.FilterMessage("Orders grouped").Len())
	h.source.AssertExpectations(t)
}

func TestPreviewGroups_Errors(t *testing.T) {
	t.Run("days out of range", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.PreviewGroups(context.Background(), 40)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		h.source.AssertNotCalled(t, "FetchRecent", mock.Anything, mock.Anything)
	})

	t.Run("source unavailable", func(t *testing.T) {
		h := newHarness(t, nil)
		h.source.On("FetchRecent", mock.Anything, 2).
			Return(nil, fmt.Errorf("%w: HTTP 503", shipment.ErrOrderSourceUnavailable))
		_, err := h.svc.PreviewGroups(context.Background(), 2)
		assert.ErrorIs(t, err, shared.ErrUpstream)
		assert.ErrorIs(t, err, shipment.ErrOrderSourceUnavailable)
	})
}

func TestSearchPurchaseOrders(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-1", "PO-404"}, shipment.ShippedNo).
		Return(testRecords()[:2], nil)

	res, err := h.svc.SearchPurchaseOrders(context.Background(), SearchRequest{
		PurchaseOrders: []string{" PO-1 ", "", "PO-404", "PO-1"},
		Shipped:        "0",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Requested)
	assert.Equal(t, 2, res.Found)
	assert.Equal(t, []string{"PO-404"}, res.Missing)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, SearchRow{
		PO: "PO-1", Invoice: "INV-1", ToName: "Max Dog", City: "Worcester", State: "MA", Zip: "01609",
		SCAC: "SAIA", Carrier: "Saia LTL Freight", Tracking: "PRO-1",
	}, res.Rows[0])
	assert.Equal(t, "INV-1B", res.Rows[1].Invoice)
	assert.Empty(t, res.Rows[1].Tracking)
}

func TestSearchPurchaseOrders_Validation(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.SearchPurchaseOrders(context.Background(), SearchRequest{PurchaseOrders: []string{" ", ""}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = h.svc.SearchPurchaseOrders(context.Background(), SearchRequest{PurchaseOrders: []string{"PO-1"}, Shipped: "2"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	h.source.AssertNotCalled(t, "FetchByPurchaseOrders", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildBOLBundle(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchRecent", mock.Anything, 5).Return(testRecords(), nil)
	h.renderer.On("RenderBOL", mock.Anything, mock.Anything).Return(pdfOf, nil)
	h.store.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything, bol.ContentTypeZIP).
		Return(&bol.Artifact{Key: "bols/2026/03/x.zip", URL: "https://s3.example.com/x.zip"}, nil)

	bundle, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{Days: 5})
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.BatchID)
	assert.Equal(t, bol.BundleName(bundle.BatchID), bundle.FileName)
	assert.Equal(t, "NJ", bundle.Warehouse)
	assert.Equal(t, "estimated", bundle.WeightMode)
	assert.Equal(t, 1, bundle.Dropped)
	assert.Equal(t, 2, bundle.Rendered)
	assert.Equal(t, 0, bundle.Failed)
	require.Len(t, bundle.Documents, 2)

	po1 := bundle.Documents[0]
	assert.Equal(t, "PO-1", po1.Key)
	assert.Equal(t, "BOL_PO-1_ABC12345_NJ_SAIA.pdf", po1.FileName)
	assert.Equal(t, 2, po1.Records)
	assert.Equal(t, 2, po1.Lines)
	assert.Equal(t, "190", po1.Weight)
	assert.Equal(t, "BOL_PO-2_GHI_NJ_ODFL.pdf", bundle.Documents[1].FileName)

	files := unzip(t, bundle.Data)
	assert.Equal(t, map[string]string{
		"BOL_PO-1_ABC12345_NJ_SAIA.pdf": "%PDF-BOL_PO-1_ABC12345_NJ_SAIA.pdf",
		"BOL_PO-2_GHI_NJ_ODFL.pdf":      "%PDF-BOL_PO-2_GHI_NJ_ODFL.pdf",
	}, files)

	require.NotNil(t, bundle.Artifact)
	assert.Equal(t, "https://s3.example.com/x.zip", bundle.Artifact.URL)
	h.store.AssertCalled(t, "Save", mock.Anything, bundle.FileName, bundle.Data, bol.ContentTypeZIP)

	entries := h.logs.FilterMessage("BOL bundle built").All()
	require.Len(t, entries, 1)
	assert.Equal(t, bundle.BatchID, entries[0].ContextMap()["batch_id"])
}

func TestBuildBOLBundle_ByPurchaseOrderRawWeight(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) { d.Store = nil })
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-1"}, shipment.ShippedAny).
		Return(testRecords()[:2], nil)
	h.renderer.On("RenderBOL", mock.Anything, mock.Anything).Return(pdfOf, nil)

	bundle, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{
		PurchaseOrders: []string{"PO-1"},
		Warehouse:      "ca",
		WeightMode:     "RAW",
		Days:           99,
	})
	require.NoError(t, err)

	assert.Equal(t, "CA", bundle.Warehouse)
	assert.Equal(t, "raw", bundle.WeightMode)
	require.Len(t, bundle.Documents, 1)
	assert.Equal(t, "40", bundle.Documents[0].Weight)
	assert.Equal(t, "BOL_PO-1_ABC12345_LA_SAIA.pdf", bundle.Documents[0].FileName)
	assert.Nil(t, bundle.Artifact)
	h.source.AssertNotCalled(t, "FetchRecent", mock.Anything, mock.Anything)
}

func TestBuildBOLBundle_PartialFailure(t *testing.T) {
	h := newHarness(t, nil)
	isPO2 := func(d *bol.Document) bool { return d.Key == "PO-2" }
	h.source.On("FetchRecent", mock.Anything, DefaultDays).Return(testRecords(), nil)
	h.renderer.On("RenderBOL", mock.Anything, mock.MatchedBy(isPO2)).Return(nil, errors.New("chrome crashed"))
	h.renderer.On("RenderBOL", mock.Anything, mock.MatchedBy(func(d *bol.Document) bool { return !isPO2(d) })).
		Return(pdfOf, nil)
	h.store.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("bucket missing"))

	bundle, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, bundle.Rendered)
	assert.Equal(t, 1, bundle.Failed)
	assert.Equal(t, "chrome crashed", bundle.Documents[1].Error)
	assert.Empty(t, bundle.Documents[0].Error)
	assert.Len(t, unzip(t, bundle.Data), 1)
	assert.Nil(t, bundle.Artifact)
	assert.Equal(t, 1, h.logs.FilterMessage("BOL bundle not stored").Len())
	assert.Equal(t, 1, h.logs.FilterMessage("BOL render failed").Len())
}

func TestBuildBOLBundle_Errors(t *testing.T) {
	t.Run("no renderer", func(t *testing.T) {
		h := newHarness(t, func(d *Dependencies) { d.Renderer = nil })
		_, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{})
		assert.ErrorIs(t, err, shared.ErrConfiguration)
	})

	t.Run("bad weight mode", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{WeightMode: "heavy"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown warehouse", func(t *testing.T) {
		h := newHarness(t, nil)
		_, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{Warehouse: "TX"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.ErrorIs(t, err, shipment.ErrUnknownWarehouse)
	})

	t.Run("no orders", func(t *testing.T) {
		h := newHarness(t, nil)
		h.source.On("FetchRecent", mock.Anything, DefaultDays).Return([]shipment.OrderRecord{{}}, nil)
		_, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("every render fails", func(t *testing.T) {
		h := newHarness(t, nil)
		h.source.On("FetchRecent", mock.Anything, DefaultDays).Return(testRecords(), nil)
		h.renderer.On("RenderBOL", mock.Anything, mock.Anything).Return(nil, errors.New("no chrome"))
		_, err := h.svc.BuildBOLBundle(context.Background(), BOLBundleRequest{})
		assert.ErrorIs(t, err, shared.ErrUpstream)
		h.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled", func(t *testing.T) {
		h := newHarness(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		h.source.On("FetchRecent", mock.Anything, DefaultDays).Return(testRecords(), nil)
		h.renderer.On("RenderBOL", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { cancel() }).
			Return(pdfOf, nil)
		_, err := h.svc.BuildBOLBundle(ctx, BOLBundleRequest{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func success(code string) *domainwms.Result {
	return &domainwms.Result{Outcome: valueobject.OutcomeSuccess, Class: valueobject.FailureClassNone, OrderCode: code, Attempts: 1}
}

func TestPushWMSOrders(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-1", "PO-2", "PO-404"}, shipment.ShippedAny).
		Return(testRecords(), nil)
	h.submitter.On("Submit", mock.Anything, mock.MatchedBy(func(r *domainwms.OrderRequest) bool { return r.PurchaseOrder == "PO-1" })).
		Return(success("WO-1"), nil)
	h.submitter.On("Submit", mock.Anything, mock.MatchedBy(func(r *domainwms.OrderRequest) bool { return r.PurchaseOrder == "PO-2" })).
		Return(&domainwms.Result{Outcome: valueobject.OutcomeFailure, Class: valueobject.FailureClassSKUNotFound, Retryable: true}, nil)

	res, err := h.svc.PushWMSOrders(context.Background(), WMSPushRequest{
		PurchaseOrders: []string{"PO-1", "PO-2", "PO-404"},
		Overrides: map[string]OrderOverride{
			"PO-1": {ReferenceNo: "REF-77", TrackingNo: "TRK-77"},
			"PO-2": {Items: []ItemOverride{{SKU: "GHI-FIXED", Quantity: 1}}},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, "NJ", res.Warehouse)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, []string{"PO-404"}, res.Missing)
	require.Len(t, res.Rows, 2)

	po1 := res.Rows[0]
	assert.Equal(t, "PO-1", po1.PurchaseOrder)
	assert.Equal(t, "SELF_LTL_BULK", po1.ShippingMethod)
	require.NotNil(t, po1.Payload)
	assert.Equal(t, "REF-77", po1.Payload.ReferenceNo)
	assert.Equal(t, "TRK-77", po1.Payload.TrackingNo)
	assert.Equal(t, "NJW", po1.Payload.WarehouseCode)
	assert.Equal(t, "Pickup date: 03/10/2026", po1.Payload.OrderDesc)
	assert.Equal(t, []domainwms.Item{{SKU: "ABC12345XYZ", Quantity: 2}, {SKU: "DEF", Quantity: 1}}, po1.Payload.Items)
	assert.Equal(t, "WO-1", po1.Result.OrderCode)

	po2 := res.Rows[1]
	assert.Equal(t, "SELF_LTL_SINGLE", po2.ShippingMethod)
	assert.Equal(t, []domainwms.Item{{SKU: "GHI-FIXED", Quantity: 1}}, po2.Payload.Items)
	assert.Equal(t, "test-PO-2", po2.Payload.ReferenceNo)
	assert.True(t, po2.Result.Retryable)

	h.submitter.AssertNumberOfCalls(t, "Submit", 2)
}

func TestPushWMSOrders_ReportsLinesWithoutSKU(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-2"}, shipment.ShippedAny).
		Return(testRecords()[3:], nil)
	h.submitter.On("Submit", mock.Anything, mock.Anything).Return(success("WO-2"), nil)

	res, err := h.svc.PushWMSOrders(context.Background(), WMSPushRequest{
		PurchaseOrders: []string{"PO-2"},
		Overrides: map[string]OrderOverride{
			"PO-2": {Items: []ItemOverride{{SKU: "GHI", Quantity: 1}, {SKU: " ", Quantity: 2}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []domainwms.Item{{SKU: "GHI", Quantity: 1}}, res.Rows[0].Payload.Items)
	assert.Equal(t, int64(2), res.Rows[0].UnassignedQuantity)
	assert.Equal(t, 1, h.logs.FilterMessage("Lines without SKU left out of order").Len())
}

func TestPushWMSOrders_ConfigErrorBeforeSend(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-1"}, shipment.ShippedAny).
		Return(testRecords()[:2], nil)

	_, err := h.svc.PushWMSOrders(context.Background(), WMSPushRequest{PurchaseOrders: []string{"PO-1"}, Warehouse: "CA"})
	require.Error(t, err)
	var cfgErr *domainwms.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "warehouses.ca.wms_code", cfgErr.Field)
	assert.ErrorIs(t, err, shared.ErrConfiguration)
	h.submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestPushWMSOrders_SubmitterConfigError(t *testing.T) {
	h := newHarness(t, nil)
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-1"}, shipment.ShippedAny).
		Return(testRecords()[:2], nil)
	h.submitter.On("Submit", mock.Anything, mock.Anything).Return(nil, domainwms.NewConfigError("wms.app_key"))

	_, err := h.svc.PushWMSOrders(context.Background(), WMSPushRequest{PurchaseOrders: []string{"PO-1"}})
	assert.ErrorIs(t, err, shared.ErrConfiguration)
}

func TestPushWMSOrders_CancelledBetweenGroups(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.source.On("FetchByPurchaseOrders", mock.Anything, []string{"PO-1", "PO-2"}, shipment.ShippedAny).
		Return(testRecords(), nil)
	h.submitter.On("Submit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(success("WO-1"), nil).Once()

	res, err := h.svc.PushWMSOrders(ctx, WMSPushRequest{PurchaseOrders: []string{"PO-1", "PO-2"}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.Rows[0].Skipped)
	assert.True(t, res.Rows[1].Skipped)
	assert.Nil(t, res.Rows[1].Result)
	require.NotNil(t, res.Rows[1].Payload)
	assert.Equal(t, 1, h.logs.FilterMessage("WMS push cancelled").Len())
	h.submitter.AssertNumberOfCalls(t, "Submit", 1)
}

func TestPushWMSOrders_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  WMSPushRequest
		deps func(*Dependencies)
		want error
	}{
		{"no submitter", WMSPushRequest{PurchaseOrders: []string{"PO-1"}}, func(d *Dependencies) { d.Submitter = nil }, shared.ErrConfiguration},
		{"no purchase orders", WMSPushRequest{}, nil, shared.ErrInvalidInput},
		{"bad shipped", WMSPushRequest{PurchaseOrders: []string{"PO-1"}, Shipped: "yes"}, nil, shared.ErrInvalidInput},
		{"bad pickup date", WMSPushRequest{PurchaseOrders: []string{"PO-1"}, PickupDate: "2026-03-10"}, nil, shared.ErrInvalidInput},
		{"unknown warehouse", WMSPushRequest{PurchaseOrders: []string{"PO-1"}, Warehouse: "ZZ"}, nil, shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.deps)
			_, err := h.svc.PushWMSOrders(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			h.source.AssertNotCalled(t, "FetchByPurchaseOrders", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPickupDate(t *testing.T) {
	h := newHarness(t, nil)

	got, err := h.svc.pickupDate("")
	require.NoError(t, err)
	assert.Equal(t, "03/10/2026", got.Format(domainwms.PickupLayout))

	got, err = h.svc.pickupDate("12/31/2026")
	require.NoError(t, err)
	assert.Equal(t, mst, got.Location())
}
