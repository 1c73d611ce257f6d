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
	Flash         FlashConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			return nil, fmt.Errorf("%s is required when %s is set", EnvDBSQLitePath, EnvUseSQLite)
		}
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.JWT.CookieName == "" {
		cfg.JWT.CookieName = DefaultIdentityCookie
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"CSEMOTORS_APP_ENV" required:"true"`
	Port            string        `envconfig:"CSEMOTORS_APP_PORT" required:"true"`
	LogLevel        string        `envconfig:"CSEMOTORS_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"CSEMOTORS_LOG_WARN_STACK" default:"false"`
	ReadTimeout     time.Duration `envconfig:"CSEMOTORS_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"CSEMOTORS_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"CSEMOTORS_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"CSEMOTORS_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN        string `envconfig:"CSEMOTORS_DB_DSN"`
	SQLitePath string `envconfig:"CSEMOTORS_DB_SQLITE_PATH" default:"csemotors.db"`

	LegacyHost     string `envconfig:"CSEMOTORS_DB_HOST"`
	LegacyPort     int    `envconfig:"CSEMOTORS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CSEMOTORS_DB_USER"`
	LegacyPassword string `envconfig:"CSEMOTORS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CSEMOTORS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CSEMOTORS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CSEMOTORS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CSEMOTORS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CSEMOTORS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CSEMOTORS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CSEMOTORS_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"CSEMOTORS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CSEMOTORS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CSEMOTORS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CSEMOTORS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"CSEMOTORS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// JWTConfig holds the identity token signing settings. The secret is read once at startup
// and passed explicitly to the token codec.
type JWTConfig struct {
	Secret            string `envconfig:"CSEMOTORS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CSEMOTORS_JWT_ISSUER" default:"cse-motors"`
	ExpirationMinutes int    `envconfig:"CSEMOTORS_JWT_EXPIRATION_MINUTES" default:"60"`
	CookieName        string `envconfig:"CSEMOTORS_JWT_COOKIE_NAME" default:"jwt"`
	SecureCookie      bool   `envconfig:"CSEMOTORS_JWT_SECURE_COOKIE" default:"false"`
}

// TTL returns the identity token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CSEMOTORS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CSEMOTORS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CSEMOTORS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CSEMOTORS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CSEMOTORS_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"CSEMOTORS_PASSWORD_MIN_LENGTH" default:"12"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CSEMOTORS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CSEMOTORS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CSEMOTORS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CSEMOTORS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CSEMOTORS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CSEMOTORS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// FlashConfig controls the per-client flash message queue.
type FlashConfig struct {
	CookieName string        `envconfig:"CSEMOTORS_FLASH_COOKIE_NAME" default:"sessionId"`
	TTL        time.Duration `envconfig:"CSEMOTORS_FLASH_TTL" default:"2h"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"CSEMOTORS_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"CSEMOTORS_AUTO_MIGRATE" default:"false"`
	AccessSessions bool `envconfig:"CSEMOTORS_ACCESS_SESSIONS" default:"true"`
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
