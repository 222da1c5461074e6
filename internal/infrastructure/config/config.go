package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Remote    RemoteConfig
	Sync      SyncConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings.
// Driver selects "postgres" (default) or "sqlite"; sqlite uses Path.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
	// CORSAllowOrigins lists origins allowed to call the API cross-origin
	CORSAllowOrigins []string
}

// RemoteConfig holds the Dolibarr connection settings
type RemoteConfig struct {
	// URL is the installation root, without the API path
	URL string
	// APIKey is the REST API key of the sync user
	APIKey string
	// Timeout bounds each API call
	Timeout time.Duration
	// VerifyTLS disables certificate checks when false
	VerifyTLS bool
	// Debug enables request/response logging
	Debug bool
	// Language requested for dictionary lookups, e.g. "en_US"
	Language string
}

// SyncConfig holds per-entity sync behavior
type SyncConfig struct {
	CustomersEnabled bool
	OrdersEnabled    bool
	ProductsEnabled  bool
	InventoryEnabled bool
	TaxSyncEnabled   bool
	// ExcludedOrderStatuses extends the built-in excluded set
	ExcludedOrderStatuses []string
	// DefaultWarehouseID is the remote warehouse stock movements post to
	DefaultWarehouseID int64
	// DefaultPaymentMethodID is the remote payment type for imported orders
	DefaultPaymentMethodID int64
	// DefaultBankAccountID is the remote bank account for imported orders
	DefaultBankAccountID int64
	// BatchSize is the chunk size for bulk runs
	BatchSize int
	// MemoryThresholdPercent stops a batch early when heap use crosses it
	MemoryThresholdPercent int
	// MemoryLimitMB is the heap budget the threshold applies to
	MemoryLimitMB int
	// LogRetentionDays bounds the audit trail age, 0 keeps everything
	LogRetentionDays int
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled bool
	// InventoryInterval is how often stock levels are pushed
	InventoryInterval time.Duration
	// OrderInterval is how often pending orders are swept
	OrderInterval time.Duration
	// CustomerInterval is how often customers are swept
	CustomerInterval time.Duration
	// ConnectionCheckInterval is how often the remote is probed
	ConnectionCheckInterval time.Duration
	// CacheRefreshInterval is how often reference data is repopulated
	CacheRefreshInterval time.Duration
	// TaskTimeout bounds a single scheduled pass
	TaskTimeout time.Duration
}

// CacheConfig holds reference data cache configuration
type CacheConfig struct {
	Enabled bool
	// TTL is how long reference data stays fresh
	TTL time.Duration
	// KeyPrefix namespaces keys in a shared Redis
	KeyPrefix string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BRIDGE_ prefix (e.g., BRIDGE_REMOTE_APIKEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
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
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Remote: RemoteConfig{
			URL:       v.GetString("remote.url"),
			APIKey:    v.GetString("remote.api_key"),
			Timeout:   v.GetDuration("remote.timeout"),
			VerifyTLS: v.GetBool("remote.verify_tls"),
			Debug:     v.GetBool("remote.debug"),
			Language:  v.GetString("remote.language"),
		},
		Sync: SyncConfig{
			CustomersEnabled:       v.GetBool("sync.customers_enabled"),
			OrdersEnabled:          v.GetBool("sync.orders_enabled"),
			ProductsEnabled:        v.GetBool("sync.products_enabled"),
			InventoryEnabled:       v.GetBool("sync.inventory_enabled"),
			TaxSyncEnabled:         v.GetBool("sync.tax_sync_enabled"),
			ExcludedOrderStatuses:  v.GetStringSlice("sync.excluded_order_statuses"),
			DefaultWarehouseID:     v.GetInt64("sync.default_warehouse_id"),
			DefaultPaymentMethodID: v.GetInt64("sync.default_payment_method_id"),
			DefaultBankAccountID:   v.GetInt64("sync.default_bank_account_id"),
			BatchSize:              v.GetInt("sync.batch_size"),
			MemoryThresholdPercent: v.GetInt("sync.memory_threshold_percent"),
			MemoryLimitMB:          v.GetInt("sync.memory_limit_mb"),
			LogRetentionDays:       v.GetInt("sync.log_retention_days"),
		},
		Scheduler: SchedulerConfig{
			Enabled:                 v.GetBool("scheduler.enabled"),
			InventoryInterval:       v.GetDuration("scheduler.inventory_interval"),
			OrderInterval:           v.GetDuration("scheduler.order_interval"),
			CustomerInterval:        v.GetDuration("scheduler.customer_interval"),
			ConnectionCheckInterval: v.GetDuration("scheduler.connection_check_interval"),
			CacheRefreshInterval:    v.GetDuration("scheduler.cache_refresh_interval"),
			TaskTimeout:             v.GetDuration("scheduler.task_timeout"),
		},
		Cache: CacheConfig{
			Enabled:   v.GetBool("cache.enabled"),
			TTL:       v.GetDuration("cache.ttl"),
			KeyPrefix: v.GetString("cache.key_prefix"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storebridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storebridge"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "storebridge.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 30 * time.Second
	}
	if cfg.Remote.Language == "" {
		cfg.Remote.Language = "en_US"
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 20
	}
	if cfg.Sync.MemoryThresholdPercent == 0 {
		cfg.Sync.MemoryThresholdPercent = 80
	}
	if cfg.Sync.MemoryLimitMB == 0 {
		cfg.Sync.MemoryLimitMB = 256
	}
	if cfg.Sync.LogRetentionDays == 0 {
		cfg.Sync.LogRetentionDays = 30
	}
	if cfg.Scheduler.InventoryInterval == 0 {
		cfg.Scheduler.InventoryInterval = time.Hour
	}
	if cfg.Scheduler.OrderInterval == 0 {
		cfg.Scheduler.OrderInterval = 15 * time.Minute
	}
	if cfg.Scheduler.CustomerInterval == 0 {
		cfg.Scheduler.CustomerInterval = time.Hour
	}
	if cfg.Scheduler.ConnectionCheckInterval == 0 {
		cfg.Scheduler.ConnectionCheckInterval = time.Hour
	}
	if cfg.Scheduler.CacheRefreshInterval == 0 {
		cfg.Scheduler.CacheRefreshInterval = 24 * time.Hour
	}
	if cfg.Scheduler.TaskTimeout == 0 {
		cfg.Scheduler.TaskTimeout = 10 * time.Minute
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "storebridge:ref:"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Sync.MemoryThresholdPercent < 1 || c.Sync.MemoryThresholdPercent > 100 {
		return fmt.Errorf("sync.memory_threshold_percent must be between 1 and 100, got %d", c.Sync.MemoryThresholdPercent)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		if c.Remote.URL != "" && !strings.HasPrefix(c.Remote.URL, "https://") {
			return fmt.Errorf("remote.url must use https in production")
		}
		if !c.Remote.VerifyTLS {
			return fmt.Errorf("remote.verify_tls must be true in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
