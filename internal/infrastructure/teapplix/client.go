// Package teapplix implements the shipment.OrderSource port against the
// Teapplix OrderNotification API.
package teapplix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.teapplix.com/api2"
	// DetailLevel requests shipping, inventory and marketplace sections.
	DetailLevel = "shipping|inventory|marketplace"

	notificationPath = "/OrderNotification"
	windowLayout     = "2006-01-02T15:04:05"
)

// Configuration errors
var (
	ErrConfigMissingToken  = errors.New("teapplix: token is required")
	ErrConfigMissingAPIKey = errors.New("teapplix: api key is required")
	ErrInvalidTimeZone     = errors.New("teapplix: invalid time zone")
)

// Config holds the API credentials and paging settings.
type Config struct {
	BaseURL  string
	Token    string
	APIKey   string
	StoreKey string
	PageSize int
	Timeout  time.Duration
	// DefaultDays is used by FetchRecent when days is not positive.
	DefaultDays int
	// TimeZone is the IANA zone the payment-date window is computed in.
	TimeZone     string
	RateLimit    float64
	RateBurst    int
	MaxBodyBytes int64
}

// DefaultConfig returns the standard HD store settings without credentials.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		StoreKey:     "HD",
		PageSize:     500,
		Timeout:      45 * time.Second,
		DefaultDays:  3,
		TimeZone:     "America/Phoenix",
		RateLimit:    2,
		RateBurst:    1,
		MaxBodyBytes: 32 << 20,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.StoreKey == "" {
		c.StoreKey = d.StoreKey
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.DefaultDays <= 0 {
		c.DefaultDays = d.DefaultDays
	}
	if c.TimeZone == "" {
		c.TimeZone = d.TimeZone
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = d.RateBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
}

// Validate validates the credentials. A missing value is reported as a
// *shared.ConfigError naming the setting; the sentinels stay reachable
// through errors.Is.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return &shared.ConfigError{Field: "teapplix.token", Cause: ErrConfigMissingToken}
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return &shared.ConfigError{Field: "teapplix.api_key", Cause: ErrConfigMissingAPIKey}
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock overrides the clock used for payment-date windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client fetches orders from Teapplix. It is safe for concurrent use;
// requests share one rate limiter.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

var _ shipment.OrderSource = (*Client)(nil)

// NewClient creates a client. Credentials are checked on each fetch so the
// server can start without them.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.applyDefaults()
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTimeZone, cfg.TimeZone, err)
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		loc:        loc,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Window returns the PaymentDateStart and PaymentDateEnd for the last days
// calendar days, ending at 23:59:59 today in the configured zone.
func (c *Client) Window(days int) (string, string) {
	if days <= 0 {
		days = c.cfg.DefaultDays
	}
	now := c.now().In(c.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, c.loc)
	startDay := end.AddDate(0, 0, -(days - 1))
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, c.loc)
	return start.Format(windowLayout), end.Format(windowLayout)
}

// FetchRecent returns unshipped records paid within the last days days,
// following pages until a short page is returned.
func (c *Client) FetchRecent(ctx context.Context, days int) ([]shipment.OrderRecord, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	start, end := c.Window(days)
	log := logger.WithLogger(ctx, c.logger)

	var records []shipment.OrderRecord
	for page := 1; ; page++ {
		params := c.baseParams(page)
		params.Set("PaymentDateStart", start)
		params.Set("PaymentDateEnd", end)
		params.Set("Shipped", string(shipment.ShippedNo))

		orders, err := c.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}
		records = appendRecords(records, orders)
		log.Debug("Fetched order page",
			zap.Int("page", page),
			zap.Int("orders", len(orders)),
			zap.Int("records", len(records)),
		)
		if len(orders) < c.cfg.PageSize {
			break
		}
	}

	log.Info("Fetched recent orders",
		zap.String("payment_date_start", start),
		zap.String("payment_date_end", end),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// FetchByPurchaseOrders looks up each PO id with its own request, following
// pages until a short page is returned. A PO that fails on any page is
// logged and skipped as a whole; an error is returned only when every
// lookup failed.
func (c *Client) FetchByPurchaseOrders(ctx context.Context, purchaseOrders []string, shipped shipment.ShippedFilter) ([]shipment.OrderRecord, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if !shipped.IsValid() {
		return nil, fmt.Errorf("teapplix: invalid shipped filter %q", shipped)
	}
	log := logger.WithLogger(ctx, c.logger)

	var (
		records   []shipment.OrderRecord
		attempted int
		errs      []error
	)
	for _, po := range purchaseOrders {
		po = strings.TrimSpace(po)
		if po == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempted++

		orders, err := c.fetchPurchaseOrder(ctx, po, shipped)
		if err != nil {
			log.Warn("PO lookup failed", zap.String("purchase_order", po), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", po, err))
			continue
		}
		records = appendRecords(records, orders)
	}

	if attempted > 0 && len(errs) == attempted {
		return nil, errors.Join(errs...)
	}
	log.Info("Fetched orders by PO",
		zap.Int("purchase_orders", attempted),
		zap.Int("failed", len(errs)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (c *Client) fetchPurchaseOrder(ctx context.Context, po string, shipped shipment.ShippedFilter) ([]order, error) {
	var orders []order
	for page := 1; ; page++ {
		params := c.baseParams(page)
		params.Set("OriginalTxnId", po)
		if shipped != shipment.ShippedAny {
			params.Set("Shipped", string(shipped))
		}
		batch, err := c.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
		if len(batch) < c.cfg.PageSize {
			return orders, nil
		}
	}
}

func (c *Client) baseParams(page int) url.Values {
	params := url.Values{}
	params.Set("StoreKey", c.cfg.StoreKey)
	params.Set("DetailLevel", DetailLevel)
	params.Set("Combine", "combine")
	params.Set("PageSize", strconv.Itoa(c.cfg.PageSize))
	params.Set("PageNumber", strconv.Itoa(page))
	return params
}

func (c *Client) fetchPage(ctx context.Context, params url.Values) ([]order, error) {
	ctx, span := telemetry.StartSpan(ctx, "teapplix.OrderNotification",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrOrderSource, params.Get("PageNumber")),
		telemetry.WithAttribute(telemetry.SpanAttrShippedFilter, params.Get("Shipped")),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + notificationPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("teapplix: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%w: %v", shipment.ErrOrderSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("teapplix: failed to read response: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrHTTPStatus, resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: HTTP %d: %s", shipment.ErrOrderSourceUnavailable, resp.StatusCode, snippet(body))
		telemetry.RecordError(span, err)
		return nil, err
	}

	var out notificationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		err = fmt.Errorf("%w: invalid JSON: %v", shipment.ErrOrderSourceUnavailable, err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return out.list(), nil
}

// appendRecords maps orders to records, dropping unspecified ship classes.
func appendRecords(dst []shipment.OrderRecord, orders []order) []shipment.OrderRecord {
	for _, o := range orders {
		if o.unspecified() {
			continue
		}
		dst = append(dst, o.toRecord())
	}
	return dst
}

func snippet(body []byte) string {
	const limit = 300
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
