package teapplix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
)

func rawOrder(po, invoice, shipClass, sku string, qty int) map[string]any {
	return map[string]any{
		"OriginalTxnId": po,
		"TxnId":         "TXN-" + invoice,
		"OrderDetails": map[string]any{
			"Invoice":     invoice,
			"ShipClass":   shipClass,
			"PaymentDate": "2026-03-08T10:00:00",
			"Custom":      "Call before delivery",
		},
		"To": map[string]any{
			"Name":        "Max Dog",
			"Street":      "58 Fruit St.",
			"Street2":     "Unit 1010",
			"City":        "Worcester",
			"State":       "MA",
			"ZipCode":     "01609",
			"CountryCode": "US",
			"PhoneNumber": "1234567890",
		},
		"OrderItems": []map[string]any{{"ItemSKU": sku, "Quantity": qty}},
		"ShippingDetails": []map[string]any{{
			"Package": map[string]any{
				"IdenticalPackageCount": "2",
				"Weight":                map[string]any{"Value": 16.5, "Unit": "LB"},
				"TrackingInfo":          map[string]any{"CarrierName": "Saia", "TrackingNumber": "PRO-1"},
			},
		}},
	}
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	handle   func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()
	f.handle(w, r)
}

func writeOrders(w http.ResponseWriter, key string, orders []map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{key: orders})
}

func newTestClient(t *testing.T, baseURL string, edit func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Token = "tok"
	cfg.APIKey = "key"
	cfg.RateLimit = 1000
	cfg.RateBurst = 10
	if edit != nil {
		edit(&cfg)
	}
	fixed := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	c, err := NewClient(cfg, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return c
}

func TestClient_Window(t *testing.T) {
	c := newTestClient(t, "http://unused", nil)

	start, end := c.Window(3)
	assert.Equal(t, "2026-03-07T00:00:00", start)
	assert.Equal(t, "2026-03-09T23:59:59", end)

	start, end = c.Window(1)
	assert.Equal(t, "2026-03-09T00:00:00", start)
	assert.Equal(t, "2026-03-09T23:59:59", end)

	start, _ = c.Window(0)
	assert.Equal(t, "2026-03-07T00:00:00", start)
}

func TestClient_Window_UsesConfiguredZone(t *testing.T) {
	cfg := DefaultConfig()
	late := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	c, err := NewClient(cfg, WithClock(func() time.Time { return late }))
	require.NoError(t, err)

	_, end := c.Window(1)
	assert.Equal(t, "2026-03-09T23:59:59", end)
}

func TestClient_FetchRecent_PagesAndFilters(t *testing.T) {
	api := &fakeAPI{}
	api.handle = func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("PageNumber"))
		switch page {
		case 1:
			writeOrders(w, "orders", []map[string]any{
				rawOrder("PO-1", "INV-1", "SAIA", "ABC12345", 2),
				rawOrder("PO-2", "INV-2", "unsp_cg", "XYZ", 1),
			})
		default:
			writeOrders(w, "Orders", []map[string]any{
				rawOrder("PO-1", "INV-3", "SAIA", "DEF67890", 1),
			})
		}
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.PageSize = 2 })
	records, err := c.FetchRecent(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "INV-1", records[0].Invoice)
	assert.Equal(t, "INV-3", records[1].Invoice)
	require.Len(t, api.requests, 2)

	first := api.requests[0]
	assert.Equal(t, "/OrderNotification", first.URL.Path)
	assert.Equal(t, "Bearer tok", first.Header.Get("Authorization"))
	assert.Equal(t, "key", first.Header.Get("x-api-key"))
	q := first.URL.Query()
	assert.Equal(t, "HD", q.Get("StoreKey"))
	assert.Equal(t, "0", q.Get("Shipped"))
	assert.Equal(t, "combine", q.Get("Combine"))
	assert.Equal(t, DetailLevel, q.Get("DetailLevel"))
	assert.Equal(t, "2", q.Get("PageSize"))
	assert.Equal(t, "2026-03-07T00:00:00", q.Get("PaymentDateStart"))
	assert.Equal(t, "2026-03-09T23:59:59", q.Get("PaymentDateEnd"))
	assert.Equal(t, "2", api.requests[1].URL.Query().Get("PageNumber"))
}

func TestClient_FetchRecent_MapsRecord(t *testing.T) {
	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request) {
		writeOrders(w, "orders", []map[string]any{rawOrder(" PO-1 ", "INV-1", "SAIA", " ABC12345 ", 2)})
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	records, err := newTestClient(t, srv.URL, nil).FetchRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "PO-1", r.PurchaseOrderID)
	assert.Equal(t, "TXN-INV-1", r.TxnID)
	assert.Equal(t, "SAIA", r.CarrierCode)
	assert.Equal(t, "Call before delivery", r.Instructions)
	assert.Equal(t, "2026-03-08T10:00:00", r.PaymentDate)
	assert.Equal(t, "Worcester", r.Destination.City)
	assert.Equal(t, "01609", r.Destination.Zip)
	assert.Equal(t, "US", r.Destination.Country)
	assert.Equal(t, "1234567890", r.Destination.Phone)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "ABC12345", r.Items[0].SKU)
	assert.Equal(t, int64(2), r.Items[0].Quantity.Int().Value)
	require.Len(t, r.Packages, 1)
	assert.Equal(t, int64(2), r.Packages[0].Count.Int().Value)
	assert.Equal(t, "16.5", r.Packages[0].Weight.Raw())
	assert.Equal(t, "LB", r.Packages[0].WeightUnit)
	assert.Equal(t, "PRO-1", r.Packages[0].TrackingNumber)
	assert.Equal(t, "Saia", r.Packages[0].CarrierName)
}

func TestClient_FetchRecent_Errors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, nil).FetchRecent(context.Background(), 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, shipment.ErrOrderSourceUnavailable)
		assert.Contains(t, err.Error(), "HTTP 401")
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, nil).FetchRecent(context.Background(), 3)
		assert.ErrorIs(t, err, shipment.ErrOrderSourceUnavailable)
	})

	t.Run("missing credentials", func(t *testing.T) {
		c := newTestClient(t, "http://unused", func(cfg *Config) { cfg.Token = "" })
		_, err := c.FetchRecent(context.Background(), 3)
		assert.ErrorIs(t, err, ErrConfigMissingToken)
		assert.ErrorIs(t, err, shared.ErrConfiguration)
		var cfgErr *shared.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "teapplix.token", cfgErr.Field)

		c = newTestClient(t, "http://unused", func(cfg *Config) { cfg.APIKey = "" })
		_, err = c.FetchByPurchaseOrders(context.Background(), []string{"PO-1"}, shipment.ShippedAny)
		assert.ErrorIs(t, err, ErrConfigMissingAPIKey)
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "teapplix.api_key", cfgErr.Field)
	})
}

func TestClient_FetchByPurchaseOrders(t *testing.T) {
	api := &fakeAPI{}
	api.handle = func(w http.ResponseWriter, r *http.Request) {
		po := r.URL.Query().Get("OriginalTxnId")
		if po == "PO-BAD" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeOrders(w, "orders", []map[string]any{rawOrder(po, "INV-"+po, "ODFL", "SKU-"+po, 1)})
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	records, err := c.FetchByPurchaseOrders(context.Background(), []string{"PO-1", " ", "PO-BAD", "PO-2"}, shipment.ShippedYes)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "PO-1", records[0].PurchaseOrderID)
	assert.Equal(t, "PO-2", records[1].PurchaseOrderID)
	require.Len(t, api.requests, 3)
	for _, r := range api.requests {
		assert.Equal(t, "1", r.URL.Query().Get("Shipped"))
		assert.Equal(t, "1", r.URL.Query().Get("PageNumber"))
		assert.Empty(t, r.URL.Query().Get("PaymentDateStart"))
	}
}

func TestClient_FetchByPurchaseOrders_FollowsPages(t *testing.T) {
	api := &fakeAPI{}
	api.handle = func(w http.ResponseWriter, r *http.Request) {
		po := r.URL.Query().Get("OriginalTxnId")
		switch r.URL.Query().Get("PageNumber") {
		case "1":
			writeOrders(w, "orders", []map[string]any{
				rawOrder(po, "INV-1", "ODFL", "SKU-A", 1),
				rawOrder(po, "INV-2", "ODFL", "SKU-B", 1),
			})
		case "2":
			writeOrders(w, "orders", []map[string]any{rawOrder(po, "INV-3", "ODFL", "SKU-C", 1)})
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("PageNumber"))
		}
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.PageSize = 2 })
	records, err := c.FetchByPurchaseOrders(context.Background(), []string{"PO-9"}, shipment.ShippedAny)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "INV-3", records[2].Invoice)
	require.Len(t, api.requests, 2)
	assert.Equal(t, "2", api.requests[1].URL.Query().Get("PageNumber"))
	assert.Equal(t, "PO-9", api.requests[1].URL.Query().Get("OriginalTxnId"))
}

func TestClient_FetchByPurchaseOrders_LaterPageFailureDropsPO(t *testing.T) {
	api := &fakeAPI{}
	api.handle = func(w http.ResponseWriter, r *http.Request) {
		po := r.URL.Query().Get("OriginalTxnId")
		if po == "PO-1" && r.URL.Query().Get("PageNumber") == "2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if po == "PO-1" {
			writeOrders(w, "orders", []map[string]any{
				rawOrder(po, "INV-1", "ODFL", "SKU-A", 1),
				rawOrder(po, "INV-2", "ODFL", "SKU-B", 1),
			})
			return
		}
		writeOrders(w, "orders", []map[string]any{rawOrder(po, "INV-"+po, "ODFL", "SKU-"+po, 1)})
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.PageSize = 2 })
	records, err := c.FetchByPurchaseOrders(context.Background(), []string{"PO-1", "PO-2"}, shipment.ShippedAny)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PO-2", records[0].PurchaseOrderID)
}

func TestClient_FetchByPurchaseOrders_AnyShippedOmitsFilter(t *testing.T) {
	api := &fakeAPI{handle: func(w http.ResponseWriter, r *http.Request) {
		writeOrders(w, "orders", nil)
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	records, err := newTestClient(t, srv.URL, nil).FetchByPurchaseOrders(context.Background(), []string{"PO-1"}, shipment.ShippedAny)
	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, api.requests, 1)
	_, ok := api.requests[0].URL.Query()["Shipped"]
	assert.False(t, ok)
}

func TestClient_FetchByPurchaseOrders_AllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, nil).FetchByPurchaseOrders(context.Background(), []string{"PO-1", "PO-2"}, shipment.ShippedNo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shipment.ErrOrderSourceUnavailable))
	assert.Contains(t, err.Error(), "PO-1")
	assert.Contains(t, err.Error(), "PO-2")
}

func TestClient_FetchByPurchaseOrders_InvalidFilter(t *testing.T) {
	c := newTestClient(t, "http://unused", nil)
	_, err := c.FetchByPurchaseOrders(context.Background(), []string{"PO-1"}, shipment.ShippedFilter("2"))
	assert.Error(t, err)
}

func TestClient_FetchRecent_GeneratedOrders(t *testing.T) {
	faker := gofakeit.New(42)
	const n = 25
	orders := make([]map[string]any, 0, n)
	skipped := 0
	for i := range n {
		shipClass := faker.RandomString([]string{"SAIA", "ODFL", "FXFE", UnspecifiedShipClass})
		if shipClass == UnspecifiedShipClass {
			skipped++
		}
		o := rawOrder(faker.Numerify("PO-#####"), fmt.Sprintf("INV-%d", i), shipClass, faker.LetterN(10), faker.IntRange(1, 9))
		o["To"].(map[string]any)["Name"] = faker.Name()
		o["To"].(map[string]any)["City"] = faker.City()
		orders = append(orders, o)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOrders(w, "orders", orders)
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL, func(cfg *Config) { cfg.PageSize = 100 }).FetchRecent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, records, n-skipped)
	for _, r := range records {
		assert.NotEqual(t, UnspecifiedShipClass, r.CarrierCode)
		assert.NotEmpty(t, r.Destination.Name)
		q := r.Items[0].Quantity.Int()
		assert.False(t, q.UsedDefault)
		assert.GreaterOrEqual(t, q.Value, int64(1))
	}
}

func TestNewClient_InvalidTimeZone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeZone = "Mars/Olympus"
	_, err := NewClient(cfg)
	assert.ErrorIs(t, err, ErrInvalidTimeZone)
}
