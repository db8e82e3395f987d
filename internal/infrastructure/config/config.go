package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Remote    RemoteConfig
	Sync      SyncConfig
	Sales     SalesConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // sqlite or postgres
	Path            string // sqlite file, ":memory:" for an in-memory store
	BusyTimeout     time.Duration
	BusyRetries     int
	BusyRetryDelay  time.Duration
	AutoMigrate     bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	SlowQueryThresh time.Duration
}

// IsSQLite reports whether the embedded store is selected
func (d *DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds the token gate settings
type AuthConfig struct {
	Enabled              bool
	JWTSecret            string
	TokenExpiration      time.Duration
	Issuer               string
	OperatorUsername     string
	OperatorPasswordHash string  // bcrypt hash
	LoginPerMinute       float64 // login attempts per client IP, 0 disables the limit
	LoginBurst           int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	CommandTimeout   time.Duration
	InFlightTTL      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// RemoteConfig holds the WooCommerce-style remote catalog settings
type RemoteConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Username       string // WordPress user for /wp/v2 calls
	AppPassword    string // WordPress application password
	Timeout        time.Duration
	RateLimit      float64 // requests per second
	RateBurst      int
	GetRetries     int
	MaxResponse    int64
}

// Configured reports whether a remote catalog is set up
func (r *RemoteConfig) Configured() bool {
	return r.BaseURL != ""
}

// SyncConfig holds catalog reconciliation settings
type SyncConfig struct {
	OnStartup      bool
	StartupTimeout time.Duration
	PhaseDelay     time.Duration
	PruneRemote    bool
}

// SalesConfig holds document defaults
type SalesConfig struct {
	DefaultTaxRate     decimal.Decimal
	DefaultFiscalValue decimal.Decimal
	QuoteValidity      time.Duration
	InvoiceDueAfter    time.Duration
	AllowDirectAccept  bool
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled              bool
	OverdueSweepInterval time.Duration
	QuoteExpiryInterval  time.Duration
	JobTimeout           time.Duration
	RetryAttempts        int
	RetryDelay           time.Duration
	MaxRetryDelay        time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool    // Log full SQL statements (dev only)
}

// DefaultJWTSecret is the development secret rejected in production
const DefaultJWTSecret = "atelier-development-secret-change-me"

// Load loads configuration from a .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with ATELIER_ prefix (e.g., ATELIER_DATABASE_PATH)
// 2. .env entries (never override variables already set)
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
	v.AddConfigPath("/etc/atelier")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ATELIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// booleans whose default is true cannot be detected as unset after Get
	v.SetDefault("auth.enabled", true)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("scheduler.enabled", true)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			BusyTimeout:     v.GetDuration("database.busy_timeout"),
			BusyRetries:     v.GetInt("database.busy_retries"),
			BusyRetryDelay:  v.GetDuration("database.busy_retry_delay"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			SlowQueryThresh: v.GetDuration("database.slow_query_threshold"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			Enabled:              v.GetBool("auth.enabled"),
			JWTSecret:            v.GetString("auth.jwt_secret"),
			TokenExpiration:      v.GetDuration("auth.token_expiration"),
			Issuer:               v.GetString("auth.issuer"),
			OperatorUsername:     v.GetString("auth.operator_username"),
			OperatorPasswordHash: v.GetString("auth.operator_password_hash"),
			LoginPerMinute:       v.GetFloat64("auth.login_per_minute"),
			LoginBurst:           v.GetInt("auth.login_burst"),
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
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			CommandTimeout:   v.GetDuration("http.command_timeout"),
			InFlightTTL:      v.GetDuration("http.in_flight_ttl"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Remote: RemoteConfig{
			BaseURL:        strings.TrimRight(v.GetString("remote.base_url"), "/"),
			ConsumerKey:    v.GetString("remote.consumer_key"),
			ConsumerSecret: v.GetString("remote.consumer_secret"),
			Username:       v.GetString("remote.username"),
			AppPassword:    v.GetString("remote.app_password"),
			Timeout:        v.GetDuration("remote.timeout"),
			RateLimit:      v.GetFloat64("remote.rate_limit"),
			RateBurst:      v.GetInt("remote.rate_burst"),
			GetRetries:     v.GetInt("remote.get_retries"),
			MaxResponse:    v.GetInt64("remote.max_response_bytes"),
		},
		Sync: SyncConfig{
			OnStartup:      v.GetBool("sync.on_startup"),
			StartupTimeout: v.GetDuration("sync.startup_timeout"),
			PhaseDelay:     v.GetDuration("sync.phase_delay"),
			PruneRemote:    v.GetBool("sync.prune_remote"),
		},
		Sales: SalesConfig{
			QuoteValidity:     v.GetDuration("sales.quote_validity"),
			InvoiceDueAfter:   v.GetDuration("sales.invoice_due_after"),
			AllowDirectAccept: v.GetBool("sales.quote_allow_direct_accept"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              v.GetBool("scheduler.enabled"),
			OverdueSweepInterval: v.GetDuration("scheduler.overdue_sweep_interval"),
			QuoteExpiryInterval:  v.GetDuration("scheduler.quote_expiry_interval"),
			JobTimeout:           v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:        v.GetInt("scheduler.retry_attempts"),
			RetryDelay:           v.GetDuration("scheduler.retry_delay"),
			MaxRetryDelay:        v.GetDuration("scheduler.max_retry_delay"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
	}

	var err error
	if cfg.Sales.DefaultTaxRate, err = parseDecimal(v, "sales.default_tax_rate", "19"); err != nil {
		return nil, err
	}
	if cfg.Sales.DefaultFiscalValue, err = parseDecimal(v, "sales.default_fiscal_value", "1.000"); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDecimal(v *viper.Viper, key, fallback string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q: %w", key, raw, err)
	}
	return d, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "atelier-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "atelier.db"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5 * time.Second
	}
	if cfg.Database.BusyRetries == 0 {
		cfg.Database.BusyRetries = 5
	}
	if cfg.Database.BusyRetryDelay == 0 {
		cfg.Database.BusyRetryDelay = 50 * time.Millisecond
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
		cfg.Database.DBName = "atelier"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		if cfg.Database.IsSQLite() {
			cfg.Database.MaxOpenConns = 1
		} else {
			cfg.Database.MaxOpenConns = 25
		}
	}
	if cfg.Database.MaxIdleConns == 0 {
		if cfg.Database.IsSQLite() {
			cfg.Database.MaxIdleConns = 1
		} else {
			cfg.Database.MaxIdleConns = 5
		}
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryThresh == 0 {
		cfg.Database.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = DefaultJWTSecret
	}
	if cfg.Auth.TokenExpiration == 0 {
		cfg.Auth.TokenExpiration = 12 * time.Hour
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "atelier-backend"
	}
	if cfg.Auth.LoginPerMinute > 0 && cfg.Auth.LoginBurst <= 0 {
		cfg.Auth.LoginBurst = 5
	}
	if cfg.Auth.OperatorUsername == "" {
		cfg.Auth.OperatorUsername = "admin"
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
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.CommandTimeout == 0 {
		cfg.HTTP.CommandTimeout = 30 * time.Second
	}
	if cfg.HTTP.InFlightTTL == 0 {
		cfg.HTTP.InFlightTTL = cfg.HTTP.CommandTimeout + 5*time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 30 * time.Second
	}
	if cfg.Remote.RateLimit == 0 {
		cfg.Remote.RateLimit = 5
	}
	if cfg.Remote.RateBurst == 0 {
		cfg.Remote.RateBurst = 5
	}
	if cfg.Remote.GetRetries == 0 {
		cfg.Remote.GetRetries = 3
	}
	if cfg.Remote.MaxResponse == 0 {
		cfg.Remote.MaxResponse = 10 << 20 // 10MB
	}
	if cfg.Sync.StartupTimeout == 0 {
		cfg.Sync.StartupTimeout = 2 * time.Minute
	}
	if cfg.Sync.PhaseDelay == 0 {
		cfg.Sync.PhaseDelay = 500 * time.Millisecond
	}
	if cfg.Sales.QuoteValidity == 0 {
		cfg.Sales.QuoteValidity = 30 * 24 * time.Hour
	}
	if cfg.Sales.InvoiceDueAfter == 0 {
		cfg.Sales.InvoiceDueAfter = 30 * 24 * time.Hour
	}
	if cfg.Scheduler.OverdueSweepInterval == 0 {
		cfg.Scheduler.OverdueSweepInterval = time.Hour
	}
	if cfg.Scheduler.QuoteExpiryInterval == 0 {
		cfg.Scheduler.QuoteExpiryInterval = time.Hour
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 10 * time.Second
	}
	if cfg.Scheduler.MaxRetryDelay == 0 {
		cfg.Scheduler.MaxRetryDelay = 2 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "atelier-backend"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Database.BusyRetries < 0 {
		return fmt.Errorf("database.busy_retries cannot be negative")
	}

	if c.Sales.DefaultTaxRate.IsNegative() || c.Sales.DefaultTaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("sales.default_tax_rate must be between 0 and 100")
	}
	if c.Sales.DefaultFiscalValue.IsNegative() {
		return fmt.Errorf("sales.default_fiscal_value cannot be negative")
	}

	if c.Remote.Configured() {
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("remote.base_url is not a valid URL: %q", c.Remote.BaseURL)
		}
		if (c.Remote.ConsumerKey == "") != (c.Remote.ConsumerSecret == "") {
			return fmt.Errorf("remote.consumer_key and remote.consumer_secret must be set together")
		}
		if (c.Remote.Username == "") != (c.Remote.AppPassword == "") {
			return fmt.Errorf("remote.username and remote.app_password must be set together")
		}
	}
	if c.Remote.RateLimit < 0 {
		return fmt.Errorf("remote.rate_limit cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Auth.Enabled && (c.Auth.JWTSecret == DefaultJWTSecret || len(c.Auth.JWTSecret) < 32) {
			return fmt.Errorf("auth.jwt_secret must be set to at least 32 characters in production")
		}
		if c.Auth.Enabled && c.Auth.OperatorPasswordHash == "" {
			return fmt.Errorf("auth.operator_password_hash is required in production")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the PostgreSQL connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
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

// SQLiteDSN returns the go-sqlite3 connection string with WAL and busy timeout enabled
func (d *DatabaseConfig) SQLiteDSN() string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprintf("%d", d.BusyTimeout.Milliseconds()))
	q.Set("_foreign_keys", "on")
	if d.Path == ":memory:" {
		q.Set("cache", "shared")
		return "file::memory:?" + q.Encode()
	}
	q.Set("_journal_mode", "WAL")
	return "file:" + d.Path + "?" + q.Encode()
}
