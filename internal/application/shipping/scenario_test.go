package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
	"github.com/freightdesk/backend/internal/infrastructure/printing"
	"github.com/freightdesk/backend/internal/infrastructure/teapplix"
	infrawms "github.com/freightdesk/backend/internal/infrastructure/wms"
)

// htmlCapture stands in for headless Chrome and returns the HTML it was
// given as the "PDF".
type htmlCapture struct{}

func (htmlCapture) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	return &printing.RenderResult{PDFData: []byte(req.HTML), PageCount: 1}, nil
}

func (htmlCapture) Close() error { return nil }

func scenarioOrders() map[string][]map[string]any {
	order := func(po, invoice, sku string, qty int, weight float64) map[string]any {
		return map[string]any{
			"OriginalTxnId": po,
			"TxnId":         "T-" + invoice,
			"OrderDetails":  map[string]any{"Invoice": invoice, "ShipClass": "SAIA", "PaymentDate": "2026-03-08T10:00:00"},
			"To": map[string]any{
				"Name": "Max Dog", "Street": "58 Fruit St.", "City": "Worcester", "State": "MA",
				"ZipCode": "01609", "CountryCode": "US", "PhoneNumber": "1234567890",
			},
			"OrderItems": []map[string]any{{"ItemSKU": sku, "Quantity": qty}},
			"ShippingDetails": []map[string]any{{
				"Package": map[string]any{
					"IdenticalPackageCount": 1,
					"Weight":                map[string]any{"Value": weight, "Unit": "LB"},
					"TrackingInfo":          map[string]any{"CarrierName": "Saia", "TrackingNumber": "PRO-" + invoice},
				},
			}},
		}
	}
	return map[string][]map[string]any{
		"PO-100": {
			order("PO-100", "INV-1", "CHAIR-0001-BLK", 2, 45),
			order("PO-100", "INV-2", "TABLE-0002-OAK", 1, 80),
		},
		"PO-200": {order("PO-200", "INV-3", "SOFA-0003", 1, 150)},
	}
}

type wmsCapture struct {
	mu       sync.Mutex
	payloads []domainwms.Payload
}

func (c *wmsCapture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s := string(body)
	start := strings.Index(s, "<paramsJson>") + len("<paramsJson>")
	end := strings.Index(s, "</paramsJson>")
	var p domainwms.Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(s[start:end])), &p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	c.payloads = append(c.payloads, p)
	c.mu.Unlock()

	inner := fmt.Sprintf(`{"ask":"Success","message":"created","order_code":"WO-%s"}`, p.ReferenceNo)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0"?><SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body><response>%s</response></SOAP-ENV:Body></SOAP-ENV:Envelope>`, inner)
}

func TestScenario_ConsolidateRenderAndSubmit(t *testing.T) {
	orders := scenarioOrders()
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"orders": orders[r.URL.Query().Get("OriginalTxnId")]})
	}))
	defer source.Close()

	wmsFake := &wmsCapture{}
	wmsServer := httptest.NewServer(wmsFake)
	defer wmsServer.Close()

	log := zaptest.NewLogger(t)
	tcfg := teapplix.DefaultConfig()
	tcfg.BaseURL = source.URL
	tcfg.Token = "tok"
	tcfg.APIKey = "key"
	tcfg.RateLimit = 1000
	orderSource, err := teapplix.NewClient(tcfg, teapplix.WithLogger(log))
	require.NoError(t, err)

	submitter := infrawms.NewClient(infrawms.ClientConfig{
		Endpoint: wmsServer.URL, AppToken: "token", AppKey: "key",
		InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond,
	}, infrawms.WithLogger(log))

	renderer, err := printing.NewBOLRenderer(htmlCapture{}, nil, printing.BOLRendererConfig{}, log)
	require.NoError(t, err)

	profiles := shipment.NewProfileDirectory([]shipment.WarehouseProfile{
		{Key: "NJ", Name: "NJ Warehouse", Street: "1 Dock Rd", CityStateZip: "Edison, NJ 08817", SID: "SID-NJ", WMSCode: "NJW"},
	}, shipment.BillingProfile{Name: "Freight Desk LLC", Street: "100 Main St", CityStateZip: "Phoenix, AZ 85001"})
	agg := shipment.NewAggregator(shipment.DefaultWeightPolicy())
	svc, err := NewService(Dependencies{
		Source:     orderSource,
		Profiles:   profiles,
		Aggregator: agg,
		Documents:  bol.NewBuilder(bol.DefaultConfig(), agg, shipment.NewCarrierResolver(shipment.DefaultCarrierTable())),
		Orders: domainwms.NewBuilder(domainwms.DefaultBuilderConfig(), profiles,
			shipment.NewShippingMethodResolver(shipment.ShippingMethodPolicy{SelfLTLWarehouse: "NJ", CustomerShipWarehouse: "CA"})),
		Renderer:  renderer,
		Submitter: submitter,
		Logger:    log,
	}, Config{DefaultWarehouse: "NJ", DefaultWeightMode: valueobject.WeightModeRaw, Location: mst})
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }

	ctx := context.Background()
	pos := []string{"PO-100", "PO-200"}

	bundle, err := svc.BuildBOLBundle(ctx, BOLBundleRequest{PurchaseOrders: pos})
	require.NoError(t, err)
	require.Equal(t, 2, bundle.Rendered)

	files := unzip(t, bundle.Data)
	html, ok := files["BOL_PO-100_CHAIR-00_NJ_SAIA.pdf"]
	require.True(t, ok, "files: %v", files)
	assert.Contains(t, html, "CHAIR-0001-BLK - Furniture")
	assert.Contains(t, html, "TABLE-0002-OAK - Furniture")
	assert.Contains(t, html, "Reference PO# PO-100")
	assert.Contains(t, html, "03/10/2026")
	assert.Contains(t, html, "Edison, NJ 08817")
	assert.Equal(t, "125", bundle.Documents[0].Weight)
	assert.Equal(t, int64(2), bundle.Documents[0].TotalPackages)
	assert.Contains(t, files, "BOL_PO-200_SOFA-000_NJ_SAIA.pdf")

	push, err := svc.PushWMSOrders(ctx, WMSPushRequest{PurchaseOrders: pos, PickupDate: "03/12/2026"})
	require.NoError(t, err)
	assert.Equal(t, 2, push.Succeeded)
	assert.Equal(t, "WO-test-PO-100", push.Rows[0].Result.OrderCode)
	assert.NotEmpty(t, push.Rows[0].Result.RequestPayload)

	require.Len(t, wmsFake.payloads, 2)
	first := wmsFake.payloads[0]
	assert.Equal(t, "NJW", first.WarehouseCode)
	assert.Equal(t, "SELF_LTL_BULK", first.ShippingMethod)
	assert.Equal(t, "Pickup date: 03/12/2026", first.OrderDesc)
	assert.Equal(t, "INV-1", first.Remark)
	assert.Equal(t, "SAIA", first.PlatformShop)
	assert.Equal(t, []domainwms.Item{{SKU: "CHAIR-0001-BLK", Quantity: 2}, {SKU: "TABLE-0002-OAK", Quantity: 1}}, first.Items)
	assert.Equal(t, "SELF_LTL_SINGLE", wmsFake.payloads[1].ShippingMethod)
}
