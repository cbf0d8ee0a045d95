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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Scheduler    SchedulerConfig
	Clustering   ClusteringConfig
	GoogleMaps   GoogleMapsConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FRITOS_APP_ENV" required:"true"`
	Port         string `envconfig:"FRITOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRITOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRITOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FRITOS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FRITOS_DB_DSN"`
	Driver string `envconfig:"FRITOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRITOS_DB_HOST"`
	LegacyPort     int    `envconfig:"FRITOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRITOS_DB_USER"`
	LegacyPassword string `envconfig:"FRITOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRITOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRITOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRITOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRITOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRITOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRITOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRITOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRITOS_REDIS_ADDR"`
	Password     string        `envconfig:"FRITOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRITOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRITOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRITOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRITOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRITOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRITOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SchedulerConfig drives the kitchen-launch recalculation loop.
type SchedulerConfig struct {
	TickInterval   time.Duration `envconfig:"FRITOS_SCHEDULER_TICK_INTERVAL" default:"1m"`
	LockTTL        time.Duration `envconfig:"FRITOS_SCHEDULER_LOCK_TTL" default:"5m"`
	LaunchPriority int           `envconfig:"FRITOS_SCHEDULER_LAUNCH_PRIORITY" default:"1000"`
	// Launch timestamps are only rewritten when the recomputed value moves by
	// more than this threshold, to avoid churn from sub-minute estimate jitter.
	RewriteThreshold time.Duration `envconfig:"FRITOS_SCHEDULER_REWRITE_THRESHOLD" default:"1m"`
}

// ClusteringConfig carries the delivery grouping heuristics. The defaults are
// urban guesses, not calibrated constants; tune them per deployment geography.
type ClusteringConfig struct {
	MaxDistanceKM     float64 `envconfig:"FRITOS_CLUSTER_MAX_DISTANCE_KM" default:"1.5"`
	MaxHopMinutes     float64 `envconfig:"FRITOS_CLUSTER_MAX_HOP_MINUTES" default:"3"`
	AssumedSpeedKMH   float64 `envconfig:"FRITOS_CLUSTER_ASSUMED_SPEED_KMH" default:"30"`
	PerStopMinutes    int     `envconfig:"FRITOS_CLUSTER_PER_STOP_MINUTES" default:"2"`
	MaxOrdersPerRound int     `envconfig:"FRITOS_CLUSTER_MAX_ORDERS_PER_ROUND" default:"6"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"FRITOS_GOOGLE_MAPS_API_KEY"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FRITOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FRITOS_AUTO_MIGRATE" default:"false"`
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
