package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/application/shipping"
	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/freightdesk/backend/internal/infrastructure/printing"
	"github.com/freightdesk/backend/internal/infrastructure/storage"
	"github.com/freightdesk/backend/internal/infrastructure/teapplix"
	"github.com/freightdesk/backend/internal/infrastructure/telemetry"
	"github.com/freightdesk/backend/internal/infrastructure/wms"
	"github.com/freightdesk/backend/internal/interfaces/http/handler"
)

// store is an artifact store that can report its own health.
type store interface {
	shipping.ArtifactStore
	Ping(ctx context.Context) error
}

// profileDirectory converts the [warehouses] and [billing] tables.
func profileDirectory(cfg *config.Config) *shipment.ProfileDirectory {
	warehouses := make([]shipment.WarehouseProfile, 0, len(cfg.Warehouses))
	for key, wh := range cfg.Warehouses {
		warehouses = append(warehouses, shipment.WarehouseProfile{
			Key:          key,
			Name:         wh.Name,
			Street:       wh.Street,
			CityStateZip: wh.CityStateZip,
			SID:          wh.SID,
			WMSCode:      wh.WMSCode,
			ShortCode:    wh.ShortCode,
		})
	}
	return shipment.NewProfileDirectory(warehouses, shipment.BillingProfile{
		Name:         cfg.Billing.Name,
		Street:       cfg.Billing.Street,
		CityStateZip: cfg.Billing.CityStateZip,
	})
}

// shippingMethodPolicy parses the policy table. Empty codes keep the
// resolver's defaults.
func shippingMethodPolicy(p config.PolicyConfig) (shipment.ShippingMethodPolicy, error) {
	policy := shipment.ShippingMethodPolicy{
		CustomerShipWarehouse: p.CustomerShipWarehouse,
		SelfLTLWarehouse:      p.SelfLTLWarehouse,
	}
	methods := []struct {
		key string
		raw string
		dst *valueobject.ShippingMethod
	}{
		{"policy.customer_ship_method", p.CustomerShipMethod, &policy.CustomerShip},
		{"policy.self_ltl_single_method", p.SelfLTLSingleMethod, &policy.SelfLTLSingle},
		{"policy.self_ltl_bulk_method", p.SelfLTLBulkMethod, &policy.SelfLTLBulk},
	}
	for _, m := range methods {
		if m.raw == "" {
			continue
		}
		method, ok := valueobject.ParseShippingMethod(m.raw)
		if !ok {
			return policy, fmt.Errorf("%s: unknown shipping method %q", m.key, m.raw)
		}
		*m.dst = method
	}
	return policy, nil
}

func bolConfig(c config.BOLConfig) bol.Config {
	return bol.Config{
		MaxLines:           c.MaxLines,
		DescriptionSuffix:  c.DescriptionSuffix,
		HUType:             c.HUType,
		PkgType:            c.PkgType,
		NMFC:               c.NMFC,
		FreightClass:       c.FreightClass,
		InstructionPrefix:  c.InstructionPrefix,
		MasterBOL:          c.MasterBOL,
		TermPrepaid:        c.TermPrepaid,
		TermCollect:        c.TermCollect,
		TermCustomerCharge: c.TermCustomerCharge,
	}
}

func wmsBuilderConfig(c config.WMSConfig) domainwms.BuilderConfig {
	return domainwms.BuilderConfig{
		Platform:        c.Platform,
		CountryCode:     c.CountryCode,
		AllocatedAuto:   c.AllocatedAuto,
		ReferencePrefix: c.ReferencePrefix,
	}
}

func wmsClientConfig(c config.WMSConfig) wms.ClientConfig {
	return wms.ClientConfig{
		Endpoint:       c.Endpoint,
		AppToken:       c.AppToken,
		AppKey:         c.AppKey,
		Service:        c.Service,
		AttemptTimeout: c.AttemptTimeout,
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: c.InitialBackoff,
		MaxBackoff:     c.MaxBackoff,
		MaxBodyBytes:   c.MaxBodyBytes,
	}
}

func teapplixConfig(c config.TeapplixConfig) teapplix.Config {
	return teapplix.Config{
		BaseURL:      c.BaseURL,
		Token:        c.Token,
		APIKey:       c.APIKey,
		StoreKey:     c.StoreKey,
		PageSize:     c.PageSize,
		Timeout:      c.Timeout,
		DefaultDays:  c.DefaultDays,
		TimeZone:     c.TimeZone,
		RateLimit:    c.RateLimit,
		RateBurst:    c.RateBurst,
		MaxBodyBytes: c.MaxBodyBytes,
	}
}

// serviceConfig builds the batch defaults. The business time zone is the
// one the order source computes its payment window in.
func serviceConfig(cfg *config.Config) (shipping.Config, error) {
	loc, err := time.LoadLocation(cfg.Teapplix.TimeZone)
	if err != nil {
		return shipping.Config{}, fmt.Errorf("teapplix.time_zone: %w", err)
	}
	mode, ok := valueobject.ParseWeightMode(cfg.BOL.DefaultWeightMode)
	if !ok {
		return shipping.Config{}, fmt.Errorf("bol.default_weight_mode: unknown mode %q", cfg.BOL.DefaultWeightMode)
	}
	return shipping.Config{
		DefaultDays:       cfg.Teapplix.DefaultDays,
		DefaultWarehouse:  cfg.Policy.DefaultWarehouse,
		DefaultWeightMode: mode,
		RenderConcurrency: cfg.Printing.Concurrency,
		Location:          loc,
	}, nil
}

// newArtifactStore opens the configured store. The s3 driver creates the
// bucket when it is missing.
func newArtifactStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (store, error) {
	if cfg.Driver != "s3" {
		return printing.NewFileStore(printing.FileStoreConfig{
			BaseDir: cfg.LocalDir,
			Prefix:  cfg.Prefix,
			Logger:  log,
		})
	}
	s3Store, err := storage.NewS3ArtifactStore(ctx, storage.S3Config{
		Endpoint:          cfg.Endpoint,
		Region:            cfg.Region,
		Bucket:            cfg.Bucket,
		AccessKey:         cfg.AccessKey,
		SecretKey:         cfg.SecretKey,
		UseSSL:            cfg.UseSSL,
		UsePathStyle:      cfg.UsePathStyle,
		Prefix:            cfg.Prefix,
		PresignExpiration: cfg.PresignExpiration,
	}, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3Store, nil
}

// application holds everything main needs to serve and shut down.
type application struct {
	service  *shipping.Service
	store    store
	renderer *printing.BOLRenderer
}

func (a *application) Close() error {
	if a.renderer == nil {
		return nil
	}
	return a.renderer.Close()
}

func (a *application) healthChecks(h *handler.SystemHandler) {
	h.AddCheck("artifact_store", a.store.Ping)
}

// newApplication wires the shipping service from configuration.
func newApplication(ctx context.Context, cfg *config.Config, metrics *telemetry.ShippingMetrics, log *zap.Logger) (*application, error) {
	methodPolicy, err := shippingMethodPolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	svcCfg, err := serviceConfig(cfg)
	if err != nil {
		return nil, err
	}

	source, err := teapplix.NewClient(teapplixConfig(cfg.Teapplix), teapplix.WithLogger(log.Named("teapplix")))
	if err != nil {
		return nil, fmt.Errorf("order source: %w", err)
	}
	submitter := wms.NewClient(wmsClientConfig(cfg.WMS),
		wms.WithLogger(log.Named("wms")),
		wms.WithMetrics(metrics),
	)

	artifacts, err := newArtifactStore(ctx, cfg.Storage, log.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	tmpl, err := printing.NewBOLTemplate()
	if err != nil {
		return nil, fmt.Errorf("bol template: %w", err)
	}
	pdf := printing.NewChromedpRenderer(printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.RenderTimeout,
		ExecPath:       cfg.Printing.ChromePath,
		NoSandbox:      cfg.Printing.NoSandbox,
		Logger:         log.Named("chromedp"),
	})
	paper, err := printing.ParsePageSize(cfg.Printing.PaperSize)
	if err != nil {
		_ = pdf.Close()
		return nil, fmt.Errorf("printing.paper_size: %w", err)
	}
	renderer, err := printing.NewBOLRenderer(pdf, tmpl, printing.BOLRendererConfig{
		PageSize: paper,
		Timeout:  cfg.Printing.RenderTimeout,
	}, log.Named("bol"))
	if err != nil {
		_ = pdf.Close()
		return nil, fmt.Errorf("bol renderer: %w", err)
	}

	profiles := profileDirectory(cfg)
	aggregator := shipment.NewAggregator(shipment.WeightPolicy{
		BaseLb:      cfg.Policy.EstimateBaseLb,
		IncrementLb: cfg.Policy.EstimateIncrementLb,
	})
	svc, err := shipping.NewService(shipping.Dependencies{
		Source:     source,
		Profiles:   profiles,
		Aggregator: aggregator,
		Documents:  bol.NewBuilder(bolConfig(cfg.BOL), aggregator, shipment.NewCarrierResolver(cfg.Carriers)),
		Orders:     domainwms.NewBuilder(wmsBuilderConfig(cfg.WMS), profiles, shipment.NewShippingMethodResolver(methodPolicy)),
		Renderer:   renderer,
		Store:      artifacts,
		Submitter:  submitter,
		Metrics:    metrics,
		Logger:     log.Named("shipping"),
	}, svcCfg)
	if err != nil {
		_ = renderer.Close()
		return nil, err
	}
	return &application{service: svc, store: artifacts, renderer: renderer}, nil
}
