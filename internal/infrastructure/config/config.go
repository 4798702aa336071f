package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Teapplix   TeapplixConfig
	WMS        WMSConfig
	Warehouses map[string]WarehouseConfig
	Billing    BillingConfig
	Policy     PolicyConfig
	Carriers   map[string]string
	BOL        BOLConfig
	Printing   PrintingConfig
	Storage    StorageConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit float64
	RateBurst int
}

// TeapplixConfig holds the order source connection settings
type TeapplixConfig struct {
	BaseURL      string
	Token        string
	APIKey       string
	StoreKey     string
	PageSize     int
	Timeout      time.Duration
	DefaultDays  int
	TimeZone     string
	RateLimit    float64 // requests per second
	RateBurst    int
	MaxBodyBytes int64
}

// WMSConfig holds the warehouse SOAP endpoint and create-order defaults
type WMSConfig struct {
	Endpoint        string
	AppToken        string
	AppKey          string
	Service         string
	AttemptTimeout  time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	MaxBodyBytes    int64
	Platform        string
	CountryCode     string
	AllocatedAuto   string // checkbox token, sent as "1"/"0"
	ReferencePrefix string
}

// WarehouseConfig is one [warehouses.<key>] table
type WarehouseConfig struct {
	Name         string
	Street       string
	CityStateZip string
	SID          string
	WMSCode      string
	ShortCode    string
}

// BillingConfig is the bill-to party printed on every BOL
type BillingConfig struct {
	Name         string
	Street       string
	CityStateZip string
}

// PolicyConfig holds weight estimation and shipping method rules
type PolicyConfig struct {
	// DefaultWarehouse is used when a request names no warehouse.
	// Default: SelfLTLWarehouse
	DefaultWarehouse      string
	EstimateBaseLb        int64
	EstimateIncrementLb   int64
	CustomerShipWarehouse string
	SelfLTLWarehouse      string
	CustomerShipMethod    string
	SelfLTLSingleMethod   string
	SelfLTLBulkMethod     string
}

// BOLConfig holds the fixed values printed on every BOL
type BOLConfig struct {
	MaxLines           int
	DescriptionSuffix  string
	HUType             string
	PkgType            string
	NMFC               string
	FreightClass       string
	InstructionPrefix  string
	MasterBOL          string
	TermPrepaid        string
	TermCollect        string
	TermCustomerCharge string
	DefaultWeightMode  string
}

// PrintingConfig holds PDF rendering settings
type PrintingConfig struct {
	ChromePath    string
	Concurrency   int
	RenderTimeout time.Duration
	NoSandbox     bool
	PaperSize     string // letter, legal
}

// StorageConfig holds artifact storage settings. Driver is "local" or "s3".
type StorageConfig struct {
	Driver            string
	LocalDir          string
	Prefix            string
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // traces
	CollectorEndpoint string  // OTEL Collector gRPC endpoint
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool

	MetricsEnabled        bool
	MetricsExportInterval time.Duration
	LogsEnabled           bool
	LogsLevel             string

	ProfilingEnabled       bool
	ProfilingServerAddress string
	ProfilingSpanProfiles  bool
}

// Load loads configuration from a .env file, config.toml and environment
// variables. Priority (highest to lowest):
// 1. Environment variables with LTL_ prefix (e.g., LTL_WMS_APP_TOKEN)
// 2. .env (never overrides variables already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("LTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Version: v.GetString("app.version"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			RateLimit:        v.GetFloat64("http.rate_limit"),
			RateBurst:        v.GetInt("http.rate_burst"),
		},
		Teapplix: TeapplixConfig{
			BaseURL:      v.GetString("teapplix.base_url"),
			Token:        v.GetString("teapplix.token"),
			APIKey:       v.GetString("teapplix.api_key"),
			StoreKey:     v.GetString("teapplix.store_key"),
			PageSize:     v.GetInt("teapplix.page_size"),
			Timeout:      v.GetDuration("teapplix.timeout"),
			DefaultDays:  v.GetInt("teapplix.default_days"),
			TimeZone:     v.GetString("teapplix.time_zone"),
			RateLimit:    v.GetFloat64("teapplix.rate_limit"),
			RateBurst:    v.GetInt("teapplix.rate_burst"),
			MaxBodyBytes: v.GetInt64("teapplix.max_body_bytes"),
		},
		WMS: WMSConfig{
			Endpoint:        v.GetString("wms.endpoint"),
			AppToken:        v.GetString("wms.app_token"),
			AppKey:          v.GetString("wms.app_key"),
			Service:         v.GetString("wms.service"),
			AttemptTimeout:  v.GetDuration("wms.attempt_timeout"),
			MaxAttempts:     v.GetInt("wms.max_attempts"),
			InitialBackoff:  v.GetDuration("wms.initial_backoff"),
			MaxBackoff:      v.GetDuration("wms.max_backoff"),
			MaxBodyBytes:    v.GetInt64("wms.max_body_bytes"),
			Platform:        v.GetString("wms.platform"),
			CountryCode:     v.GetString("wms.country_code"),
			AllocatedAuto:   v.GetString("wms.allocated_auto"),
			ReferencePrefix: v.GetString("wms.reference_prefix"),
		},
		Warehouses: warehousesFromViper(v),
		Billing: BillingConfig{
			Name:         v.GetString("billing.name"),
			Street:       v.GetString("billing.street"),
			CityStateZip: v.GetString("billing.city_state_zip"),
		},
		Policy: PolicyConfig{
			DefaultWarehouse:      v.GetString("policy.default_warehouse"),
			EstimateBaseLb:        v.GetInt64("policy.estimate_base_lb"),
			EstimateIncrementLb:   v.GetInt64("policy.estimate_increment_lb"),
			CustomerShipWarehouse: v.GetString("policy.customer_ship_warehouse"),
			SelfLTLWarehouse:      v.GetString("policy.self_ltl_warehouse"),
			CustomerShipMethod:    v.GetString("policy.customer_ship_method"),
			SelfLTLSingleMethod:   v.GetString("policy.self_ltl_single_method"),
			SelfLTLBulkMethod:     v.GetString("policy.self_ltl_bulk_method"),
		},
		Carriers: v.GetStringMapString("carriers"),
		BOL: BOLConfig{
			MaxLines:           v.GetInt("bol.max_lines"),
			DescriptionSuffix:  v.GetString("bol.description_suffix"),
			HUType:             v.GetString("bol.hu_type"),
			PkgType:            v.GetString("bol.pkg_type"),
			NMFC:               v.GetString("bol.nmfc"),
			FreightClass:       v.GetString("bol.freight_class"),
			InstructionPrefix:  v.GetString("bol.instruction_prefix"),
			MasterBOL:          v.GetString("bol.master_bol"),
			TermPrepaid:        v.GetString("bol.term_prepaid"),
			TermCollect:        v.GetString("bol.term_collect"),
			TermCustomerCharge: v.GetString("bol.term_customer_charge"),
			DefaultWeightMode:  v.GetString("bol.default_weight_mode"),
		},
		Printing: PrintingConfig{
			ChromePath:    v.GetString("printing.chrome_path"),
			Concurrency:   v.GetInt("printing.concurrency"),
			RenderTimeout: v.GetDuration("printing.render_timeout"),
			NoSandbox:     v.GetBool("printing.no_sandbox"),
			PaperSize:     v.GetString("printing.paper_size"),
		},
		Storage: StorageConfig{
			Driver:            v.GetString("storage.driver"),
			LocalDir:          v.GetString("storage.local_dir"),
			Prefix:            v.GetString("storage.prefix"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Telemetry: TelemetryConfig{
			Enabled:                v.GetBool("telemetry.enabled"),
			CollectorEndpoint:      v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:          v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:            v.GetString("telemetry.service_name"),
			Insecure:               v.GetBool("telemetry.insecure"),
			MetricsEnabled:         v.GetBool("telemetry.metrics_enabled"),
			MetricsExportInterval:  v.GetDuration("telemetry.metrics_export_interval"),
			LogsEnabled:            v.GetBool("telemetry.logs_enabled"),
			LogsLevel:              v.GetString("telemetry.logs_level"),
			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),
			ProfilingSpanProfiles:  v.GetBool("telemetry.profiling_span_profiles"),
		},
	}
}

// warehousesFromViper reads every [warehouses.<key>] table. Keys are
// upper-cased; viper lower-cases TOML keys on read.
func warehousesFromViper(v *viper.Viper) map[string]WarehouseConfig {
	out := map[string]WarehouseConfig{}
	for key := range v.GetStringMap("warehouses") {
		prefix := "warehouses." + key + "."
		out[strings.ToUpper(key)] = WarehouseConfig{
			Name:         v.GetString(prefix + "name"),
			Street:       v.GetString(prefix + "street"),
			CityStateZip: v.GetString(prefix + "city_state_zip"),
			SID:          v.GetString(prefix + "sid"),
			WMSCode:      v.GetString(prefix + "wms_code"),
			ShortCode:    v.GetString(prefix + "short_code"),
		}
	}
	return out
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ltl-backend"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// BOL bundles and WMS pushes run inside the request.
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst <= 0 {
		cfg.HTTP.RateBurst = int(cfg.HTTP.RateLimit) + 1
	}

	if cfg.Teapplix.BaseURL == "" {
		cfg.Teapplix.BaseURL = "https://api.teapplix.com/api2"
	}
	if cfg.Teapplix.StoreKey == "" {
		cfg.Teapplix.StoreKey = "HD"
	}
	if cfg.Teapplix.PageSize == 0 {
		cfg.Teapplix.PageSize = 500
	}
	if cfg.Teapplix.Timeout == 0 {
		cfg.Teapplix.Timeout = 45 * time.Second
	}
	if cfg.Teapplix.DefaultDays == 0 {
		cfg.Teapplix.DefaultDays = 3
	}
	if cfg.Teapplix.TimeZone == "" {
		cfg.Teapplix.TimeZone = "America/Phoenix"
	}
	if cfg.Teapplix.RateLimit == 0 {
		cfg.Teapplix.RateLimit = 2
	}
	if cfg.Teapplix.RateBurst == 0 {
		cfg.Teapplix.RateBurst = 1
	}
	if cfg.Teapplix.MaxBodyBytes == 0 {
		cfg.Teapplix.MaxBodyBytes = 32 << 20 // 32MB
	}

	if cfg.WMS.Service == "" {
		cfg.WMS.Service = "createOrder"
	}
	if cfg.WMS.AttemptTimeout == 0 {
		cfg.WMS.AttemptTimeout = 30 * time.Second
	}
	if cfg.WMS.MaxAttempts == 0 {
		cfg.WMS.MaxAttempts = 4
	}
	if cfg.WMS.InitialBackoff == 0 {
		cfg.WMS.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.WMS.MaxBackoff == 0 {
		cfg.WMS.MaxBackoff = 8 * time.Second
	}
	if cfg.WMS.MaxBodyBytes == 0 {
		cfg.WMS.MaxBodyBytes = 4 << 20 // 4MB
	}
	if cfg.WMS.Platform == "" {
		cfg.WMS.Platform = "OTHER"
	}
	if cfg.WMS.CountryCode == "" {
		cfg.WMS.CountryCode = "US"
	}
	if cfg.WMS.AllocatedAuto == "" {
		cfg.WMS.AllocatedAuto = "0"
	}
	if cfg.WMS.ReferencePrefix == "" {
		cfg.WMS.ReferencePrefix = "test-"
	}

	if cfg.Warehouses == nil {
		cfg.Warehouses = map[string]WarehouseConfig{}
	}
	if cfg.Policy.DefaultWarehouse == "" {
		cfg.Policy.DefaultWarehouse = cfg.Policy.SelfLTLWarehouse
	}
	if cfg.Policy.EstimateBaseLb == 0 {
		cfg.Policy.EstimateBaseLb = 130
	}
	if cfg.Policy.EstimateIncrementLb == 0 {
		cfg.Policy.EstimateIncrementLb = 30
	}

	if cfg.BOL.MaxLines == 0 {
		cfg.BOL.MaxLines = 5
	}
	if cfg.BOL.DescriptionSuffix == "" {
		cfg.BOL.DescriptionSuffix = " - Furniture"
	}
	if cfg.BOL.HUType == "" {
		cfg.BOL.HUType = "PLT"
	}
	if cfg.BOL.PkgType == "" {
		cfg.BOL.PkgType = "CTN"
	}
	if cfg.BOL.NMFC == "" {
		cfg.BOL.NMFC = "79300"
	}
	if cfg.BOL.FreightClass == "" {
		cfg.BOL.FreightClass = "125"
	}
	if cfg.BOL.InstructionPrefix == "" {
		cfg.BOL.InstructionPrefix = "Reference PO#"
	}
	if cfg.BOL.TermPrepaid == "" {
		cfg.BOL.TermPrepaid = "Yes"
	}
	if cfg.BOL.DefaultWeightMode == "" {
		cfg.BOL.DefaultWeightMode = valueobject.DefaultWeightMode.String()
	}

	if cfg.Printing.Concurrency == 0 {
		cfg.Printing.Concurrency = 4
	}
	if cfg.Printing.RenderTimeout == 0 {
		cfg.Printing.RenderTimeout = 30 * time.Second
	}
	if cfg.Printing.PaperSize == "" {
		cfg.Printing.PaperSize = "letter"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./output"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "bols"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsExportInterval == 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Teapplix.PageSize <= 0 {
		return fmt.Errorf("teapplix.page_size must be positive")
	}
	if c.Teapplix.RateLimit < 0 {
		return fmt.Errorf("teapplix.rate_limit cannot be negative")
	}
	if c.WMS.MaxAttempts <= 0 {
		return fmt.Errorf("wms.max_attempts must be positive")
	}
	if c.Policy.EstimateBaseLb <= 0 || c.Policy.EstimateIncrementLb < 0 {
		return fmt.Errorf("policy.estimate_base_lb must be positive and policy.estimate_increment_lb non-negative")
	}
	if c.BOL.MaxLines <= 0 {
		return fmt.Errorf("bol.max_lines must be positive")
	}
	if !valueobject.WeightMode(c.BOL.DefaultWeightMode).IsValid() {
		return fmt.Errorf("bol.default_weight_mode must be raw or estimated, got %q", c.BOL.DefaultWeightMode)
	}
	if c.Printing.Concurrency <= 0 {
		return fmt.Errorf("printing.concurrency must be positive")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.driver is s3")
		}
	default:
		return fmt.Errorf("storage.driver must be local or s3, got %q", c.Storage.Driver)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative, got %f", c.HTTP.RateLimit)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.WMS.Endpoint == "" || c.WMS.AppToken == "" || c.WMS.AppKey == "" {
			return fmt.Errorf("wms.endpoint, wms.app_token and wms.app_key are required in production")
		}
		if c.Teapplix.Token == "" || c.Teapplix.APIKey == "" {
			return fmt.Errorf("teapplix.token and teapplix.api_key are required in production")
		}
		if len(c.Warehouses) == 0 {
			return fmt.Errorf("at least one warehouses.<key> table is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
