package config

const (
	EnvPrefix = "GROOVEBAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "GROOVEBAY_APP_ENV"
	EnvPort     = "GROOVEBAY_APP_PORT"
	EnvLogLevel = "GROOVEBAY_LOG_LEVEL"

	EnvDBDSN      = "GROOVEBAY_DB_DSN"
	EnvDBHost     = "GROOVEBAY_DB_HOST"
	EnvDBPort     = "GROOVEBAY_DB_PORT"
	EnvDBUser     = "GROOVEBAY_DB_USER"
	EnvDBPassword = "GROOVEBAY_DB_PASSWORD"
	EnvDBName     = "GROOVEBAY_DB_NAME"

	EnvRedisURL  = "GROOVEBAY_REDIS_URL"
	EnvJWTSecret = "GROOVEBAY_JWT_SECRET"
	EnvJWTIssuer = "GROOVEBAY_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
