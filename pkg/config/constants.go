package config

const (
	EnvPrefix = "VALU"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "VALU_APP_ENV"
	EnvPort     = "VALU_APP_PORT"
	EnvLogLevel = "VALU_LOG_LEVEL"

	EnvDBDSN    = "VALU_DB_DSN"
	EnvDBDriver = "VALU_DB_DRIVER"
	EnvDBHost   = "VALU_DB_HOST"
	EnvDBUser   = "VALU_DB_USER"
	EnvDBName   = "VALU_DB_NAME"

	EnvRedisURL = "VALU_REDIS_URL"

	EnvJWTSecret  = "VALU_JWT_SECRET"
	EnvJWTIssuer  = "VALU_JWT_ISSUER"
	EnvJWTExpMins = "VALU_JWT_EXPIRATION_MINUTES"

	EnvAuth0Domain       = "VALU_AUTH0_DOMAIN"
	EnvAuth0ClientID     = "VALU_AUTH0_CLIENT_ID"
	EnvAuth0ClientSecret = "VALU_AUTH0_CLIENT_SECRET"

	EnvMixpanelToken = "VALU_MIXPANEL_TOKEN"
	EnvS3URLExpiry   = "VALU_S3_URL_EXPIRY"
	EnvDispatchQueue = "VALU_DISPATCH_QUEUE_SIZE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
