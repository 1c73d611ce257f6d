package config

const (
	EnvPrefix = "CSEMOTORS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DefaultIdentityCookie = "jwt"
)

const (
	EnvAppEnv       = "CSEMOTORS_APP_ENV"
	EnvPort         = "CSEMOTORS_APP_PORT"
	EnvLogLevel     = "CSEMOTORS_LOG_LEVEL"
	EnvDBDSN        = "CSEMOTORS_DB_DSN"
	EnvDBSQLitePath = "CSEMOTORS_DB_SQLITE_PATH"
	EnvDBHost       = "CSEMOTORS_DB_HOST"
	EnvDBPort       = "CSEMOTORS_DB_PORT"
	EnvDBUser       = "CSEMOTORS_DB_USER"
	EnvDBPassword   = "CSEMOTORS_DB_PASSWORD"
	EnvDBName       = "CSEMOTORS_DB_NAME"
	EnvRedisURL     = "CSEMOTORS_REDIS_URL"
	EnvJWTSecret    = "CSEMOTORS_JWT_SECRET"
	EnvJWTIssuer    = "CSEMOTORS_JWT_ISSUER"
	EnvJWTExpMins   = "CSEMOTORS_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite    = "CSEMOTORS_USE_SQLITE"
	EnvFlashTTL     = "CSEMOTORS_FLASH_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
