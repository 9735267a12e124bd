package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"

	DefaultTaxRate  = 0.18
	DefaultCurrency = "inr"
)

type Config struct {
	Server         ServerConfig
	Logging        LoggingConfig
	Store          StoreConfig
	Mongo          MongoConfig
	Database       DatabaseConfig
	Cache          CacheConfig
	Redis          RedisConfig
	Orders         OrderConfig
	AuthService    ServiceConfig
	ProductService ServiceConfig
	Stripe         StripeConfig
	Kafka          KafkaConfig
	Features       FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggingConfig struct {
	Level string
	Env   string
}

type StoreConfig struct {
	Driver string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type CacheConfig struct {
	Driver     string
	MemorySize int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OrderConfig holds the pricing constants and cache policy of the order workflow.
type OrderConfig struct {
	TaxRate float64
	// Currency is sent lowercase to the payment provider.
	Currency string
	// OrderTTL of zero keeps single-order entries until invalidated.
	OrderTTL           time.Duration
	UserListTTL        time.Duration
	InvalidateUserList bool
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StripeConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

type FeatureFlags struct {
	EnableOrderEvents bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; existing variables win.
func Load() *Config {
	_ = godotenv.Load()

	upstreamTimeout := getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second)

	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8000),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Logging: LoggingConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
			Env:   getEnvString("APP_ENV", "development"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnvString("STORE_DRIVER", StoreDriverMongo)),
		},
		Mongo: MongoConfig{
			URI:        getEnvString("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnvString("MONGO_DATABASE", "orders"),
			Collection: getEnvString("MONGO_COLLECTION", "orders"),
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "orders"),
			Password:     getEnvString("DB_PASSWORD", "orders"),
			Name:         getEnvString("DB_NAME", "orders"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Cache: CacheConfig{
			Driver:     strings.ToLower(getEnvString("CACHE_DRIVER", CacheDriverRedis)),
			MemorySize: getEnvInt("CACHE_MEMORY_SIZE", 10000),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Orders: OrderConfig{
			TaxRate:            getEnvFloat("ORDER_TAX_RATE", DefaultTaxRate),
			Currency:           strings.ToLower(getEnvString("ORDER_CURRENCY", DefaultCurrency)),
			OrderTTL:           getEnvDuration("ORDER_CACHE_TTL", 0),
			UserListTTL:        getEnvDuration("ORDER_LIST_CACHE_TTL", time.Hour),
			InvalidateUserList: getEnvBool("ORDER_INVALIDATE_USER_LIST", false),
		},
		AuthService: ServiceConfig{
			BaseURL: getEnvString("AUTH_SERVICE_URL", "http://localhost:8001"),
			Timeout: upstreamTimeout,
		},
		ProductService: ServiceConfig{
			BaseURL: getEnvString("PRODUCT_SERVICE_URL", "http://localhost:8002"),
			Timeout: upstreamTimeout,
		},
		Stripe: StripeConfig{
			BaseURL: getEnvString("STRIPE_API_URL", "https://api.stripe.com"),
			APIKey:  getEnvString("STRIPE_API_KEY", ""),
			Timeout: upstreamTimeout,
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "orders"),
		},
		Features: FeatureFlags{
			EnableOrderEvents: getEnvBool("FEATURE_ORDER_EVENTS", false),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "1h") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
