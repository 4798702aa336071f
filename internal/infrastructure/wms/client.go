// Package wms submits create-order requests to the warehouse management
// system over its SOAP callService endpoint and classifies the replies.
package wms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
)

// Defaults applied by NewClient to zero-valued config fields.
const (
	DefaultService        = "createOrder"
	DefaultAttemptTimeout = 30 * time.Second
	DefaultMaxAttempts    = 4
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 8 * time.Second
	DefaultMaxBodyBytes   = 4 << 20
)

var errRetryableStatus = errors.New("wms: retryable status")

// ClientConfig holds the endpoint, credentials and retry policy.
type ClientConfig struct {
	Endpoint       string
	AppToken       string
	AppKey         string
	Service        string
	AttemptTimeout time.Duration
	// MaxAttempts counts the first call, so 4 means up to 3 retries.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxBodyBytes   int64
}

func (c *ClientConfig) applyDefaults() {
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = max(DefaultMaxBackoff, c.InitialBackoff)
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate reports the first missing connection setting.
func (c ClientConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Endpoint) == "":
		return domainwms.NewConfigError("wms.endpoint")
	case strings.TrimSpace(c.AppToken) == "":
		return domainwms.NewConfigError("wms.app_token")
	case strings.TrimSpace(c.AppKey) == "":
		return domainwms.NewConfigError("wms.app_key")
	}
	return nil
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records submissions on m.
func WithMetrics(m *telemetry.ShippingMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the HTTP client. Per-attempt timeouts are applied
// through the request context, not the client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Client is a WMS create-order client. Each Client owns its HTTP client;
// concurrent workers should each build their own.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *telemetry.ShippingMetrics
}

// NewClient creates a client. Missing credentials are reported by Submit,
// not here, so a server can start without WMS access configured.
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

// exchange is what the last attempt observed.
type exchange struct {
	status   int
	body     string
	err      error
	attempts int
}

// Submit sends req and classifies the reply. The returned error is non-nil
// only when nothing was sent: a missing credential yields a
// *domainwms.ConfigError. Every network outcome, including exhausted
// retries, is reported through the Result.
func (c *Client) Submit(ctx context.Context, req *domainwms.OrderRequest) (*domainwms.Result, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("wms: nil order request")
	}

	payload, err := EncodePayload(req.Payload())
	if err != nil {
		return nil, err
	}
	sub := domainwms.NewSubmission(payload)
	envelope := Envelope(payload, c.cfg.AppToken, c.cfg.AppKey, c.cfg.Service)

	ctx, span := telemetry.StartSpan(ctx, "wms.submit",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrSubmissionID, sub.ID()),
		telemetry.WithAttribute(telemetry.SpanAttrGroupKey, req.PurchaseOrder),
		telemetry.WithAttribute(telemetry.SpanAttrWarehouse, req.WarehouseKey),
	)
	defer span.End()

	log := logger.WithLogger(ctx, c.logger).With(
		zap.String("submission_id", sub.ID()),
		zap.String("purchase_order", req.PurchaseOrder),
		zap.String("warehouse_code", req.WarehouseCode),
	)

	if err := sub.MarkSent(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	ex := c.send(ctx, envelope, log.Zap())
	elapsed := time.Since(start)

	result, err := sub.Complete(classifyExchange(ex), domainwms.Result{
		Envelope:    envelope,
		RawResponse: ex.body,
		HTTPStatus:  ex.status,
		Attempts:    ex.attempts,
		Duration:    elapsed,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	c.metrics.RecordSubmission(ctx, result.Outcome.String(), result.Class.String(), elapsed)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, result.Outcome.String(),
		telemetry.SpanAttrFailureClass, result.Class.String(),
		telemetry.SpanAttrHTTPStatus, result.HTTPStatus,
		telemetry.SpanAttrAttempt, result.Attempts,
	)

	fields := []zap.Field{
		zap.String("outcome", result.Outcome.String()),
		zap.String("class", result.Class.String()),
		zap.Int("http_status", result.HTTPStatus),
		zap.Int("attempts", result.Attempts),
		zap.Duration("duration", elapsed),
	}
	switch result.Outcome {
	case valueobject.OutcomeSuccess:
		telemetry.SetOK(span)
		log.Info("WMS order accepted", append(fields, zap.String("order_code", result.OrderCode))...)
	case valueobject.OutcomeFailure:
		telemetry.RecordError(span, fmt.Errorf("wms: %s: %s", result.Class, result.Message))
		log.Warn("WMS order failed", append(fields, zap.String("message", result.Message))...)
	default:
		log.Warn("WMS response unrecognized", fields...)
	}
	return result, nil
}

// send posts envelope with retries on transient statuses and connection
// errors. Each attempt runs under its own timeout detached from ctx, so a
// cancelled caller never aborts a call in flight; ctx is only consulted
// between attempts.
func (c *Client) send(ctx context.Context, envelope string, log *zap.Logger) exchange {
	var ex exchange

	operation := func() error {
		ex.attempts++
		status, body, err := c.attempt(ctx, envelope)
		ex.status, ex.body, ex.err = status, body, err
		switch {
		case err != nil:
			return err
		case isRetryableStatus(status):
			return fmt.Errorf("%w: HTTP %d", errRetryableStatus, status)
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("WMS call failed, retrying",
			zap.Int("attempt", ex.attempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	// The final error is already captured in ex; a cancelled ctx just ends
	// the loop with whatever the last attempt saw.
	_ = backoff.RetryNotify(operation, c.newBackOff(ctx), notify)
	return ex
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.Multiplier = 2
	b.MaxInterval = c.cfg.MaxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxAttempts-1)), ctx)
}

func (c *Client) attempt(ctx context.Context, envelope string) (int, string, error) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.AttemptTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(actx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(envelope))
	if err != nil {
		return 0, "", backoff.Permanent(fmt.Errorf("wms: failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", c.cfg.Service)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, "", fmt.Errorf("wms: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return resp.StatusCode, string(body), fmt.Errorf("wms: failed to read response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func classifyExchange(ex exchange) domainwms.Classification {
	switch {
	case ex.err != nil:
		return domainwms.FailureClassification(valueobject.FailureClassTransport, ex.err.Error())
	case ex.status < 200 || ex.status > 299:
		msg := fmt.Sprintf("HTTP %d", ex.status)
		if fault, ok := parseFault(ex.body); ok {
			msg += ": " + fault.Message()
		}
		return domainwms.FailureClassification(valueobject.FailureClassTransport, msg)
	}
	return Classify(ex.body)
}
