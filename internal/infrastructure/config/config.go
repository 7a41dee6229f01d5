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
	CatalogDB CatalogDBConfig
	OrdersDB  OrdersDBConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Sync      SyncConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// CatalogDBConfig holds the local catalog database settings
type CatalogDBConfig struct {
	Path string // SQLite file path, or ":memory:"
}

// OrdersDBConfig holds connection settings for the external orders database
type OrdersDBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// SyncConfig holds synchronization engine tuning
type SyncConfig struct {
	BatchSize      int           // SKUs per source query
	PriceWorkers   int           // concurrent price lookups
	SourceTimeout  time.Duration // per source call
	ProgressBuffer int           // buffered progress events per run
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOCKLINK_ prefix (e.g., STOCKLINK_ORDERSDB_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		CatalogDB: CatalogDBConfig{
			Path: v.GetString("catalogdb.path"),
		},
		OrdersDB: OrdersDBConfig{
			Host:            v.GetString("ordersdb.host"),
			Port:            v.GetInt("ordersdb.port"),
			User:            v.GetString("ordersdb.user"),
			Password:        v.GetString("ordersdb.password"),
			DBName:          v.GetString("ordersdb.dbname"),
			SSLMode:         v.GetString("ordersdb.sslmode"),
			MaxOpenConns:    v.GetInt("ordersdb.max_open_conns"),
			MaxIdleConns:    v.GetInt("ordersdb.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("ordersdb.conn_max_lifetime"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Sync: SyncConfig{
			BatchSize:      v.GetInt("sync.batch_size"),
			PriceWorkers:   v.GetInt("sync.price_workers"),
			SourceTimeout:  v.GetDuration("sync.source_timeout"),
			ProgressBuffer: v.GetInt("sync.progress_buffer"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stocklink-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.CatalogDB.Path == "" {
		cfg.CatalogDB.Path = "stocklink.db"
	}
	if cfg.OrdersDB.Host == "" {
		cfg.OrdersDB.Host = "localhost"
	}
	if cfg.OrdersDB.Port == 0 {
		cfg.OrdersDB.Port = 5432
	}
	if cfg.OrdersDB.User == "" {
		cfg.OrdersDB.User = "postgres"
	}
	if cfg.OrdersDB.DBName == "" {
		cfg.OrdersDB.DBName = "orders"
	}
	if cfg.OrdersDB.SSLMode == "" {
		cfg.OrdersDB.SSLMode = "disable"
	}
	if cfg.OrdersDB.MaxOpenConns == 0 {
		cfg.OrdersDB.MaxOpenConns = 25
	}
	if cfg.OrdersDB.MaxIdleConns == 0 {
		cfg.OrdersDB.MaxIdleConns = 5
	}
	if cfg.OrdersDB.ConnMaxLifetime == 0 {
		cfg.OrdersDB.ConnMaxLifetime = 60
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// SSE responses outlive a normal request write window
		cfg.HTTP.WriteTimeout = 10 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
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
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 50
	}
	if cfg.Sync.PriceWorkers == 0 {
		cfg.Sync.PriceWorkers = 8
	}
	if cfg.Sync.SourceTimeout == 0 {
		cfg.Sync.SourceTimeout = 2 * time.Minute
	}
	if cfg.Sync.ProgressBuffer == 0 {
		cfg.Sync.ProgressBuffer = 64
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.OrdersDB.MaxOpenConns <= 0 {
		return fmt.Errorf("ordersdb.max_open_conns must be positive")
	}
	if c.OrdersDB.MaxIdleConns < 0 {
		return fmt.Errorf("ordersdb.max_idle_conns cannot be negative")
	}
	if c.OrdersDB.MaxIdleConns > c.OrdersDB.MaxOpenConns {
		return fmt.Errorf("ordersdb.max_idle_conns (%d) cannot exceed ordersdb.max_open_conns (%d)",
			c.OrdersDB.MaxIdleConns, c.OrdersDB.MaxOpenConns)
	}
	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("sync.batch_size must be positive")
	}
	if c.Sync.PriceWorkers < 1 {
		return fmt.Errorf("sync.price_workers must be positive")
	}
	if c.Sync.ProgressBuffer < 1 {
		return fmt.Errorf("sync.progress_buffer must be positive")
	}

	if c.App.Env == "production" {
		if c.OrdersDB.Password == "" {
			return fmt.Errorf("ordersdb.password is required in production")
		}
		if c.OrdersDB.SSLMode == "disable" {
			return fmt.Errorf("ordersdb.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the orders database connection string with properly escaped values
func (d *OrdersDBConfig) DSN() string {
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
