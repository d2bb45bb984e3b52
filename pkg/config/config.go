package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Auth0        Auth0Config
	Mixpanel     MixpanelConfig
	S3           S3Config
	Dispatcher   DispatcherConfig
	Catalog      CatalogConfig
	Reconcile    ReconcileConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VALU_APP_ENV" required:"true"`
	Port         string `envconfig:"VALU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VALU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VALU_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"VALU_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the configured CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type DBConfig struct {
	DSN    string `envconfig:"VALU_DB_DSN"`
	Driver string `envconfig:"VALU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VALU_DB_HOST"`
	LegacyPort     int    `envconfig:"VALU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VALU_DB_USER"`
	LegacyPassword string `envconfig:"VALU_DB_PASSWORD"`
	LegacyName     string `envconfig:"VALU_DB_NAME"`
	LegacySSLMode  string `envconfig:"VALU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VALU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VALU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VALU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VALU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"VALU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VALU_REDIS_ADDR"`
	Password     string        `envconfig:"VALU_REDIS_PASSWORD"`
	DB           int           `envconfig:"VALU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VALU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VALU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VALU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VALU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VALU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VALU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VALU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VALU_JWT_EXPIRATION_MINUTES" required:"true"`
}

type RateLimitConfig struct {
	CheckUserWindow     time.Duration `envconfig:"VALU_RATE_LIMIT_CHECK_USER_WINDOW" default:"1m"`
	CheckUserIPLimit    int           `envconfig:"VALU_RATE_LIMIT_CHECK_USER_IP_LIMIT" default:"30"`
	CheckUserEmailLimit int           `envconfig:"VALU_RATE_LIMIT_CHECK_USER_EMAIL_LIMIT" default:"10"`
	IdempotencyTTL      time.Duration `envconfig:"VALU_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"VALU_AUTO_MIGRATE" default:"false"`
	BootstrapRoles bool `envconfig:"VALU_BOOTSTRAP_ROLES" default:"false"`
}

type Auth0Config struct {
	Domain       string        `envconfig:"VALU_AUTH0_DOMAIN"`
	ClientID     string        `envconfig:"VALU_AUTH0_CLIENT_ID"`
	ClientSecret string        `envconfig:"VALU_AUTH0_CLIENT_SECRET"`
	Audience     string        `envconfig:"VALU_AUTH0_AUDIENCE"`
	Timeout      time.Duration `envconfig:"VALU_AUTH0_TIMEOUT" default:"10s"`

	APIAudience string        `envconfig:"VALU_AUTH0_API_AUDIENCE"`
	EmailClaim  string        `envconfig:"VALU_AUTH0_EMAIL_CLAIM" default:"email"`
	JWKSRefresh time.Duration `envconfig:"VALU_AUTH0_JWKS_REFRESH" default:"5m"`
}

// VerifierEnabled reports whether login tokens can be verified against the
// tenant's signing keys.
func (a Auth0Config) VerifierEnabled() bool {
	return strings.TrimSpace(a.Domain) != ""
}

// Issuer is the "iss" claim the tenant writes into its tokens.
func (a Auth0Config) Issuer() string {
	return a.BaseURL() + "/"
}

// JWKSURL is the tenant's published signing key set.
func (a Auth0Config) JWKSURL() string {
	return a.BaseURL() + "/.well-known/jwks.json"
}

// Enabled reports whether enough Auth0 settings exist to call the management API.
func (a Auth0Config) Enabled() bool {
	return a.Domain != "" && a.ClientID != "" && a.ClientSecret != ""
}

// BaseURL returns the tenant base URL without a trailing slash.
func (a Auth0Config) BaseURL() string {
	domain := strings.TrimRight(strings.TrimSpace(a.Domain), "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// ManagementAudience returns the configured audience or the tenant default.
func (a Auth0Config) ManagementAudience() string {
	if a.Audience != "" {
		return a.Audience
	}
	return a.BaseURL() + "/api/v2/"
}

type MixpanelConfig struct {
	Token   string        `envconfig:"VALU_MIXPANEL_TOKEN"`
	APIHost string        `envconfig:"VALU_MIXPANEL_API_HOST" default:"https://api.mixpanel.com"`
	Timeout time.Duration `envconfig:"VALU_MIXPANEL_TIMEOUT" default:"5s"`
}

type S3Config struct {
	Region          string        `envconfig:"VALU_AWS_REGION" default:"us-east-1"`
	Bucket          string        `envconfig:"VALU_S3_BUCKET" default:"api-images-prod"`
	AccessKeyID     string        `envconfig:"VALU_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string        `envconfig:"VALU_AWS_SECRET_ACCESS_KEY"`
	KeyPrefix       string        `envconfig:"VALU_S3_KEY_PREFIX" default:"valu"`
	PublicURLPrefix string        `envconfig:"VALU_S3_PUBLIC_URL_PREFIX" default:"https://api-images-prod.s3.amazonaws.com/"`
	URLExpiry       time.Duration `envconfig:"VALU_S3_URL_EXPIRY" default:"1h"`
}

type DispatcherConfig struct {
	Workers     int           `envconfig:"VALU_DISPATCH_WORKERS" default:"4"`
	QueueSize   int           `envconfig:"VALU_DISPATCH_QUEUE_SIZE" default:"256"`
	RatePerSec  float64       `envconfig:"VALU_DISPATCH_RATE_PER_SEC" default:"20"`
	Burst       int           `envconfig:"VALU_DISPATCH_BURST" default:"10"`
	TaskTimeout time.Duration `envconfig:"VALU_DISPATCH_TASK_TIMEOUT" default:"15s"`
}

type CatalogConfig struct {
	TagFeedURL      string        `envconfig:"VALU_CATALOG_TAG_FEED_URL" default:"https://api.coingecko.com/api/v3/coins/categories"`
	ProtocolFeedURL string        `envconfig:"VALU_CATALOG_PROTOCOL_FEED_URL" default:"https://api.llama.fi/protocols"`
	Timeout         time.Duration `envconfig:"VALU_CATALOG_TIMEOUT" default:"30s"`
	SyncInterval    time.Duration `envconfig:"VALU_CATALOG_SYNC_INTERVAL" default:"24h"`
	SyncLockTTL     time.Duration `envconfig:"VALU_CATALOG_SYNC_LOCK_TTL" default:"30m"`
}

type ReconcileConfig struct {
	LockTTL time.Duration `envconfig:"VALU_RECONCILE_LOCK_TTL" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
