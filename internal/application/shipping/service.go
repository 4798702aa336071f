// Package shipping holds the operator use cases: preview consolidated
// groups, build a BOL bundle, and push create-order requests to the WMS.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
)

const (
	DefaultDays              = 3
	DefaultRenderConcurrency = 4
	// OrderDateLayout is the preview date format.
	OrderDateLayout = "01/02/06"
	skuPrefixLength = 8
)

// Config holds batch defaults.
type Config struct {
	DefaultDays       int
	MaxDays           int
	DefaultWarehouse  string
	DefaultWeightMode valueobject.WeightMode
	RenderConcurrency int
	// Location is the business time zone for dates printed and shown.
	Location *time.Location
}

func (c *Config) applyDefaults() {
	if c.DefaultDays <= 0 {
		c.DefaultDays = DefaultDays
	}
	if c.MaxDays <= 0 {
		c.MaxDays = 31
	}
	if !c.DefaultWeightMode.IsValid() {
		c.DefaultWeightMode = valueobject.DefaultWeightMode
	}
	if c.RenderConcurrency <= 0 {
		c.RenderConcurrency = DefaultRenderConcurrency
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
}

// Dependencies are the collaborators of Service. Renderer, Store and
// Submitter may be nil; the operations that need them then fail with a
// configuration error.
type Dependencies struct {
	Source     shipment.OrderSource
	Profiles   *shipment.ProfileDirectory
	Aggregator *shipment.Aggregator
	Documents  *bol.Builder
	Orders     *domainwms.Builder
	Renderer   DocumentRenderer
	Store      ArtifactStore
	Submitter  OrderSubmitter
	Metrics    *telemetry.ShippingMetrics
	Logger     *zap.Logger
}

// Service runs shipping batches. It keeps no state between calls.
type Service struct {
	deps   Dependencies
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

var errMissingDependency = errors.New("shipping: missing dependency")

// NewService creates a Service.
func NewService(deps Dependencies, cfg Config) (*Service, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("%w: order source", errMissingDependency)
	case deps.Profiles == nil:
		return nil, fmt.Errorf("%w: profile directory", errMissingDependency)
	case deps.Aggregator == nil:
		return nil, fmt.Errorf("%w: aggregator", errMissingDependency)
	case deps.Documents == nil:
		return nil, fmt.Errorf("%w: document builder", errMissingDependency)
	case deps.Orders == nil:
		return nil, fmt.Errorf("%w: order builder", errMissingDependency)
	}
	cfg.applyDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, cfg: cfg, logger: logger, now: time.Now}, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Warehouses returns the configured warehouse keys.
func (s *Service) Warehouses() []string {
	return s.deps.Profiles.Keys()
}

func (s *Service) today() time.Time {
	return s.now().In(s.cfg.Location)
}

func (s *Service) warehouse(key string) (shipment.WarehouseProfile, error) {
	if strings.TrimSpace(key) == "" {
		key = s.cfg.DefaultWarehouse
	}
	wh, err := s.deps.Profiles.Warehouse(key)
	if err != nil {
		return shipment.WarehouseProfile{}, shared.WrapDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Unknown warehouse %q", key), err)
	}
	return wh, nil
}

func (s *Service) days(days int) (int, error) {
	if days == 0 {
		return s.cfg.DefaultDays, nil
	}
	if days < 0 || days > s.cfg.MaxDays {
		return 0, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("days must be between 1 and %d", s.cfg.MaxDays))
	}
	return days, nil
}

func (s *Service) group(ctx context.Context, records []shipment.OrderRecord) shipment.Grouping {
	grouping := shipment.GroupRecords(records)
	s.deps.Metrics.RecordGrouping(ctx, grouping.Len(), grouping.Dropped)
	return grouping
}

// normalizePurchaseOrders trims, drops blanks and de-duplicates, keeping order.
func normalizePurchaseOrders(pos []string) []string {
	seen := make(map[string]struct{}, len(pos))
	out := make([]string, 0, len(pos))
	for _, po := range pos {
		po = strings.TrimSpace(po)
		if po == "" {
			continue
		}
		if _, dup := seen[po]; dup {
			continue
		}
		seen[po] = struct{}{}
		out = append(out, po)
	}
	return out
}

func parseShipped(raw string) (shipment.ShippedFilter, error) {
	f := shipment.ShippedFilter(strings.TrimSpace(raw))
	if !f.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "shipped must be empty, 0 or 1")
	}
	return f, nil
}

func upstreamError(err error) error {
	if errors.Is(err, shipment.ErrOrderSourceUnavailable) {
		return shared.WrapDomainError(shared.CodeUpstream, "Order source unavailable", err)
	}
	return err
}

// missingPurchaseOrders lists requested POs with no group.
func missingPurchaseOrders(requested []string, grouping shipment.Grouping) []string {
	var missing []string
	for _, po := range requested {
		if _, ok := grouping.Get(po); !ok {
			missing = append(missing, po)
		}
	}
	return missing
}
