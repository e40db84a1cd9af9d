package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "lendstock"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv     = "LENDSTOCK_APP_ENV"
	EnvPort       = "LENDSTOCK_APP_PORT"
	EnvDBDSN      = "LENDSTOCK_DB_DSN"
	EnvDBHost     = "LENDSTOCK_DB_HOST"
	EnvDBUser     = "LENDSTOCK_DB_USER"
	EnvDBName     = "LENDSTOCK_DB_NAME"
	EnvRedisURL   = "LENDSTOCK_REDIS_URL"
	EnvJWTSecret  = "LENDSTOCK_JWT_SECRET"
	EnvJWTIssuer  = "LENDSTOCK_JWT_ISSUER"
	EnvJWTExpMins = "LENDSTOCK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
