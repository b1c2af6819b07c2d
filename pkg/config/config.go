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
	AuthRateLimit AuthRateLimitConfig
	HTTPRateLimit HTTPRateLimitConfig
	Storage       StorageConfig
	S3            S3Config
	Notifications NotificationsConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations envconfig cannot express with tags.
func (c *Config) Validate() error {
	if _, ok := jwtAlgorithms[strings.ToUpper(c.JWT.Algorithm)]; !ok {
		return fmt.Errorf("%s must be one of HS256, HS384, HS512", EnvJWTAlgorithm)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	switch c.DB.Driver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, c.DB.Driver)
	}
	switch c.Storage.Driver {
	case StorageDriverLocal:
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("%s is required for local storage", EnvStorageLocalDir)
		}
	case StorageDriverS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("%s is required for s3 storage", EnvS3Bucket)
		}
		if c.S3.PublicURL == "" {
			return fmt.Errorf("%s is required for s3 storage", EnvS3PublicURL)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	return nil
}

var jwtAlgorithms = map[string]struct{}{"HS256": {}, "HS384": {}, "HS512": {}}

type AppConfig struct {
	Env             string        `envconfig:"CATALOG_APP_ENV" required:"true"`
	Port            string        `envconfig:"CATALOG_APP_PORT" default:"8080"`
	PublicURL       string        `envconfig:"CATALOG_PUBLIC_URL" default:"http://localhost:8080"`
	LogLevel        string        `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"CATALOG_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"CATALOG_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"CATALOG_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOG_DB_DSN"`
	Driver string `envconfig:"CATALOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOG_DB_USER"`
	LegacyPassword string `envconfig:"CATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery logs statements slower than this at warn level. Zero disables it.
	SlowQuery time.Duration `envconfig:"CATALOG_DB_SLOW_QUERY" default:"200ms"`
}

// RedisConfig is optional. An empty URL disables redis-backed auth rate limits.
type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret    string `envconfig:"CATALOG_JWT_SECRET" required:"true"`
	Issuer    string `envconfig:"CATALOG_JWT_ISSUER" default:"catalog-backend"`
	Algorithm string `envconfig:"CATALOG_JWT_ALGORITHM" default:"HS256"`
	// one year
	ExpirationMinutes int `envconfig:"CATALOG_JWT_EXPIRATION_MINUTES" default:"525600"`
}

func (j JWTConfig) Expiration() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CATALOG_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CATALOG_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CATALOG_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CATALOG_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CATALOG_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CATALOG_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CATALOG_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CATALOG_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CATALOG_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CATALOG_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CATALOG_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// HTTPRateLimitConfig drives the in-process per-IP limiter on every route.
type HTTPRateLimitConfig struct {
	Requests int           `envconfig:"CATALOG_HTTP_RATE_LIMIT_REQUESTS" default:"300"`
	Window   time.Duration `envconfig:"CATALOG_HTTP_RATE_LIMIT_WINDOW" default:"1m"`
}

type StorageConfig struct {
	Driver   string `envconfig:"CATALOG_STORAGE_DRIVER" default:"local"`
	LocalDir string `envconfig:"CATALOG_STORAGE_LOCAL_DIR" default:"public"`
	// MaxUploadBytes caps a single image upload.
	MaxUploadBytes int64 `envconfig:"CATALOG_STORAGE_MAX_UPLOAD_BYTES" default:"3145728"`
}

type S3Config struct {
	Bucket          string `envconfig:"CATALOG_S3_BUCKET"`
	Region          string `envconfig:"CATALOG_S3_REGION" default:"auto"`
	Endpoint        string `envconfig:"CATALOG_S3_ENDPOINT"`
	AccessKeyID     string `envconfig:"CATALOG_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"CATALOG_S3_SECRET_ACCESS_KEY"`
	PublicURL       string `envconfig:"CATALOG_S3_PUBLIC_URL"`
}

type NotificationsConfig struct {
	SendEmails  bool   `envconfig:"CATALOG_SEND_EMAILS" default:"false"`
	DefaultFrom string `envconfig:"CATALOG_DEFAULT_FROM_EMAIL" default:"no-reply@catalog.local"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CATALOG_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DBDriverSQLite {
		db.DSN = "file:catalog.db?_foreign_keys=on"
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
