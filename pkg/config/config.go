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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"PARKING_APP_ENV" required:"true"`
	Port         string `envconfig:"PARKING_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PARKING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARKING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PARKING_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PARKING_DB_DSN"`
	Driver string `envconfig:"PARKING_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARKING_DB_HOST"`
	LegacyPort     int    `envconfig:"PARKING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARKING_DB_USER"`
	LegacyPassword string `envconfig:"PARKING_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARKING_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARKING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARKING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARKING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARKING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARKING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PARKING_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARKING_REDIS_ADDR"`
	Password     string        `envconfig:"PARKING_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARKING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARKING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARKING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARKING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARKING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARKING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PARKING_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PARKING_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PARKING_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PARKING_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PARKING_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PARKING_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PARKING_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PARKING_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PARKING_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig describes the single privileged operator. The admin never has a
// users row; the password hash is an argon2id encoded string.
type AdminConfig struct {
	Email        string `envconfig:"PARKING_ADMIN_EMAIL" required:"true"`
	PasswordHash string `envconfig:"PARKING_ADMIN_PASSWORD_HASH" required:"true"`
	DisplayName  string `envconfig:"PARKING_ADMIN_NAME" default:"Administrator"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PARKING_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PARKING_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PARKING_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PARKING_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PARKING_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PARKING_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PARKING_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	MaxAgeSeconds  int      `envconfig:"PARKING_CORS_MAX_AGE" default:"300"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARKING_AUTO_MIGRATE" default:"false"`
	// Eventing toggles outbox writes. The api still works with eventing off,
	// it just never enqueues domain events.
	Eventing bool `envconfig:"PARKING_FEATURE_EVENTING" default:"true"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"PARKING_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	IdempotencyKeyTTL    time.Duration `envconfig:"PARKING_HTTP_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PARKING_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PARKING_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PARKING_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ParkingTopic          string `envconfig:"PARKING_PUBSUB_PARKING_TOPIC" default:"parking-events"`
	AnalyticsSubscription string `envconfig:"PARKING_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"parking-events-analytics"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"PARKING_BIGQUERY_DATASET" default:"parking"`
	ReservationTable string `envconfig:"PARKING_BIGQUERY_RESERVATION_TABLE" default:"reservation_events"`
	SpotTable        string `envconfig:"PARKING_BIGQUERY_SPOT_TABLE" default:"spot_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PARKING_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PARKING_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PARKING_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PollInterval converts the configured poll interval into a duration.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
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
