package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	AuthRateLimit AuthRateLimitConfig
	Lending       LendingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"LENDSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"LENDSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LENDSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LENDSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LENDSTOCK_DB_DSN"`
	Driver string `envconfig:"LENDSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LENDSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"LENDSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LENDSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"LENDSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"LENDSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"LENDSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LENDSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LENDSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LENDSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LENDSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LENDSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LENDSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"LENDSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"LENDSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LENDSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LENDSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LENDSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LENDSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LENDSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LENDSTOCK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LENDSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LENDSTOCK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LENDSTOCK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LENDSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LENDSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LENDSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LENDSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LENDSTOCK_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LENDSTOCK_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LENDSTOCK_CORS_ALLOWED_ORIGINS" default:"*"`
}

// AuthRateLimitConfig throttles the credential endpoints per client IP and
// per submitted email.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"LENDSTOCK_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"LENDSTOCK_LOGIN_RATE_IP_LIMIT" default:"10"`
	LoginEmailLimit int           `envconfig:"LENDSTOCK_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
}

// LendingConfig tunes workflow behavior that is not stored in system settings.
type LendingConfig struct {
	AdminEmails []string `envconfig:"LENDSTOCK_ADMIN_EMAILS"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"LENDSTOCK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"LENDSTOCK_PUBSUB_DOMAIN_TOPIC" default:"ls-domain-events"`
	DomainSubscription string `envconfig:"LENDSTOCK_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LENDSTOCK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LENDSTOCK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LENDSTOCK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LENDSTOCK_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"LENDSTOCK_CRON_LOCK_TTL" default:"55m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
