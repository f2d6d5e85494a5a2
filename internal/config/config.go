package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/Gorstka/Yatube/pkg/config"
	pkglog "github.com/Gorstka/Yatube/pkg/log"
	"github.com/Gorstka/Yatube/pkg/pubsub"
	"github.com/Gorstka/Yatube/pkg/storage"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Feed     FeedConfig
	Auth     AuthConfig
	Storage  storage.Config
	Media    MediaConfig
	PubSub   pubsub.Config `mapstructure:"pubsub"`
	Metrics  MetricsConfig
	Log      pkglog.Config
}

type ServerConfig struct {
	Host            string
	Port            int
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	TimeZone        string `mapstructure:"timezone"`
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig configures the timed cache in front of the main feed.
type CacheConfig struct {
	Driver string        `mapstructure:"driver"` // memory, redis
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type FeedConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type AuthConfig struct {
	Secret       string        `mapstructure:"secret"`
	Issuer       string        `mapstructure:"issuer"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	LoginURL     string        `mapstructure:"login_url"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
}

type MediaConfig struct {
	MaxUploadMB     int           `mapstructure:"max_upload_mb"`
	ThumbnailWidth  int           `mapstructure:"thumbnail_width"`
	ThumbnailHeight int           `mapstructure:"thumbnail_height"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads ./config/config.yaml (optional) and the environment.
func Load() (*Config, error) {
	return LoadFrom("./config", "config")
}

// LoadFrom reads configName.yaml from configPath (optional) and the
// environment.
func LoadFrom(configPath, configName string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, configName)
	if err != nil {
		return nil, err
	}
	return build(v)
}

// LoadFile reads an explicit YAML file plus the environment.
func LoadFile(path string) (*Config, error) {
	v, err := pkgconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "yatube")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.file_path", "./data/yatube.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "index_page")
	v.SetDefault("cache.ttl", "20s")
	v.SetDefault("feed.page_size", 10)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "yatube")
	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("auth.cookie_name", "sessionid")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.login_url", "/auth/login/")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./media")
	v.SetDefault("storage.local.url_prefix", "/media")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "yatube-media")
	v.SetDefault("storage.s3.use_path_style", true)
	v.SetDefault("media.max_upload_mb", 10)
	v.SetDefault("media.thumbnail_width", 960)
	v.SetDefault("media.thumbnail_height", 339)
	v.SetDefault("media.url_expiry", "1h")
	v.SetDefault("pubsub.driver", "none")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.group_id", "yatube")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "yatube")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("cache.driver", "CACHE_DRIVER")
	v.BindEnv("cache.ttl", "CACHE_TTL")
	v.BindEnv("auth.secret", "SECRET_KEY")
	v.BindEnv("auth.cookie_secure", "SESSION_COOKIE_SECURE")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.local.base_path", "MEDIA_ROOT")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.s3.public_url", "S3_PUBLIC_URL")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "PUBSUB_REDIS_ADDRESS")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
