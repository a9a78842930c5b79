package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Elastic   ElasticsearchConfig
	Mongo     MongoConfig
	Media     MediaConfig
	Commerce  CommerceConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	AppEnv        string
	HTTPPort      string
	GRPCPort      string
	PublicBaseURL string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
	CartsTopic  string
	GroupID     string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type MediaConfig struct {
	Dir          string
	BaseURL      string
	MaxUploadMB  int
	AllowedTypes []string
}

type CommerceConfig struct {
	Currency              string
	ShippingFlatRate      decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRatePercent        decimal.Decimal
	PointValue            decimal.Decimal
	PointsPerCurrency     decimal.Decimal
	CartAbandonAfter      time.Duration
	LowStockThreshold     int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:        getEnv("APP_ENV", "dev"),
			HTTPPort:      getEnv("HTTP_PORT", ":8080"),
			GRPCPort:      getEnv("GRPC_PORT", ":8082"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_commerce"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
			TTL:       getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic: getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			CartsTopic:  getEnv("KAFKA_TOPIC_CARTS", "carts.events"),
			GroupID:     getEnv("KAFKA_GROUP_LOYALTY", "loyalty"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DB", "omnipos_commerce"),
		},
		Media: MediaConfig{
			Dir:         getEnv("MEDIA_DIR", "./storage/media"),
			BaseURL:     strings.TrimRight(getEnv("MEDIA_BASE_URL", "http://localhost:8080/media"), "/"),
			MaxUploadMB: getEnvInt("MEDIA_MAX_UPLOAD_MB", 10),
			AllowedTypes: getEnvSlice("MEDIA_ALLOWED_TYPES", []string{
				"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml",
				"application/pdf", "video/mp4",
			}),
		},
		Commerce: CommerceConfig{
			Currency:              getEnv("STORE_CURRENCY", "USD"),
			ShippingFlatRate:      getEnvDecimal("SHIPPING_FLAT_RATE", decimal.NewFromInt(10)),
			FreeShippingThreshold: getEnvDecimal("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(100)),
			TaxRatePercent:        getEnvDecimal("TAX_RATE_PERCENT", decimal.Zero),
			PointValue:            getEnvDecimal("LOYALTY_POINT_VALUE", decimal.RequireFromString("0.01")),
			PointsPerCurrency:     getEnvDecimal("LOYALTY_POINTS_PER_CURRENCY", decimal.NewFromInt(1)),
			CartAbandonAfter:      getEnvDuration("CART_ABANDON_AFTER", 24*time.Hour),
			LowStockThreshold:     getEnvInt("LOW_STOCK_THRESHOLD", 5),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}
