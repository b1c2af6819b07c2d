package config

const (
	EnvAppEnv       = "CATALOG_APP_ENV"
	EnvPort         = "CATALOG_APP_PORT"
	EnvPublicURL    = "CATALOG_PUBLIC_URL"
	EnvLogLevel     = "CATALOG_LOG_LEVEL"
	EnvLogFormat    = "CATALOG_LOG_FORMAT"
	EnvLogWarnStack = "CATALOG_LOG_WARN_STACK"

	EnvDBDSN      = "CATALOG_DB_DSN"
	EnvDBDriver   = "CATALOG_DB_DRIVER"
	EnvDBHost     = "CATALOG_DB_HOST"
	EnvDBPort     = "CATALOG_DB_PORT"
	EnvDBUser     = "CATALOG_DB_USER"
	EnvDBPassword = "CATALOG_DB_PASSWORD"
	EnvDBName     = "CATALOG_DB_NAME"
	EnvDBSSLMode  = "CATALOG_DB_SSLMODE"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvJWTSecret    = "CATALOG_JWT_SECRET"
	EnvJWTIssuer    = "CATALOG_JWT_ISSUER"
	EnvJWTAlgorithm = "CATALOG_JWT_ALGORITHM"
	EnvJWTExpMins   = "CATALOG_JWT_EXPIRATION_MINUTES"

	EnvStorageDriver   = "CATALOG_STORAGE_DRIVER"
	EnvStorageLocalDir = "CATALOG_STORAGE_LOCAL_DIR"
	EnvS3Bucket        = "CATALOG_S3_BUCKET"
	EnvS3Region        = "CATALOG_S3_REGION"
	EnvS3Endpoint      = "CATALOG_S3_ENDPOINT"
	EnvS3AccessKeyID   = "CATALOG_S3_ACCESS_KEY_ID"
	EnvS3SecretKey     = "CATALOG_S3_SECRET_ACCESS_KEY"
	EnvS3PublicURL     = "CATALOG_S3_PUBLIC_URL"

	EnvSendEmails  = "CATALOG_SEND_EMAILS"
	EnvDefaultFrom = "CATALOG_DEFAULT_FROM_EMAIL"

	EnvUseSQLite   = "CATALOG_USE_SQLITE"
	EnvAutoMigrate = "CATALOG_AUTO_MIGRATE"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// envconfig reads the fully spelled names from struct tags.
const EnvPrefix = ""

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
