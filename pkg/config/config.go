package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	MQTT       MQTTConfig
	S3         S3Config
	DynamoDB   DynamoDBConfig
	CloudWatch CloudWatchConfig
	Monitor    MonitorConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type NATSConfig struct {
	Enabled bool
	URL     string
	Subject string
}

type MQTTConfig struct {
	Enabled   bool
	BrokerURL string
	ClientID  string
	Topic     string
}

type S3Config struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	URLMode         string
	PresignedTTL    time.Duration
}

type DynamoDBConfig struct {
	Enabled         bool
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
}

type CloudWatchConfig struct {
	Enabled         bool
	Namespace       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	FlushInterval   time.Duration
}

type MonitorConfig struct {
	StationIDs        []string
	RefreshInterval   time.Duration
	HistoryInterval   time.Duration
	SpotlightInterval time.Duration
	MaxSeriesRange    time.Duration
}

type SecurityConfig struct {
	AllowedOrigins []string
	AuthEnabled    bool
	AuthToken      string
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	redisTTL, err := parseDuration(getEnv("REDIS_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_TTL: %w", err)
	}

	presignedTTL, err := parseDuration(getEnv("S3_PRESIGNED_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid S3_PRESIGNED_TTL: %w", err)
	}

	cwFlushInterval, err := parseDuration(getEnv("CLOUDWATCH_FLUSH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOUDWATCH_FLUSH_INTERVAL: %w", err)
	}

	refreshInterval, err := parseDuration(getEnv("MONITOR_REFRESH_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_REFRESH_INTERVAL: %w", err)
	}

	historyInterval, err := parseDuration(getEnv("MONITOR_HISTORY_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_HISTORY_INTERVAL: %w", err)
	}

	spotlightInterval, err := parseDuration(getEnv("MONITOR_SPOTLIGHT_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_SPOTLIGHT_INTERVAL: %w", err)
	}

	maxSeriesRange, err := parseDuration(getEnv("MONITOR_MAX_SERIES_RANGE", "744h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_MAX_SERIES_RANGE: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rateLimitRPS, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	rateLimitBurst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "buoywatch"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			TTL:      redisTTL,
		},
		NATS: NATSConfig{
			Enabled: getEnvBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("NATS_ALERT_SUBJECT", "alerts.events.>"),
		},
		MQTT: MQTTConfig{
			Enabled:   getEnvBool("MQTT_ENABLED", false),
			BrokerURL: getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
			ClientID:  getEnv("MQTT_CLIENT_ID", "buoywatch-core"),
			Topic:     getEnv("MQTT_MEASUREMENT_TOPIC", "buoys/+/measurements"),
		},
		S3: S3Config{
			Enabled:         getEnvBool("S3_ENABLED", false),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
			URLMode:         getEnv("S3_URL_MODE", "presigned"),
			PresignedTTL:    presignedTTL,
		},
		DynamoDB: DynamoDBConfig{
			Enabled:         getEnvBool("DYNAMODB_ENABLED", false),
			TableName:       getEnv("DYNAMODB_TABLE", "buoywatch-exports"),
			Region:          getEnv("DYNAMODB_REGION", "us-east-1"),
			Endpoint:        getEnv("DYNAMODB_ENDPOINT", ""),
			AccessKeyID:     getEnv("DYNAMODB_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("DYNAMODB_SECRET_ACCESS_KEY", ""),
			StrongReads:     getEnvBool("DYNAMODB_STRONG_READS", false),
		},
		CloudWatch: CloudWatchConfig{
			Enabled:         getEnvBool("CLOUDWATCH_ENABLED", false),
			Namespace:       getEnv("CLOUDWATCH_NAMESPACE", "BuoyWatch/Core"),
			Region:          getEnv("CLOUDWATCH_REGION", "us-east-1"),
			Endpoint:        getEnv("CLOUDWATCH_ENDPOINT", ""),
			AccessKeyID:     getEnv("CLOUDWATCH_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("CLOUDWATCH_SECRET_ACCESS_KEY", ""),
			FlushInterval:   cwFlushInterval,
		},
		Monitor: MonitorConfig{
			StationIDs:        splitCSV(getEnv("MONITOR_STATION_IDS", "")),
			RefreshInterval:   refreshInterval,
			HistoryInterval:   historyInterval,
			SpotlightInterval: spotlightInterval,
			MaxSeriesRange:    maxSeriesRange,
		},
		Security: SecurityConfig{
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
			AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
			AuthToken:      getEnv("AUTH_BEARER_TOKEN", ""),
			RateLimitRPS:   rateLimitRPS,
			RateLimitBurst: rateLimitBurst,
		},
	}

	if cfg.Security.AuthEnabled && cfg.Security.AuthToken == "" {
		return nil, fmt.Errorf("AUTH_BEARER_TOKEN is required when AUTH_ENABLED=true")
	}

	if len(cfg.Monitor.StationIDs) == 0 {
		return nil, fmt.Errorf("MONITOR_STATION_IDS must name at least one station")
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	current := ""

	for _, r := range raw {
		if r == ',' {
			if current != "" {
				items = append(items, current)
				current = ""
			}
			continue
		}
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			current += string(r)
		}
	}

	if current != "" {
		items = append(items, current)
	}

	return items
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
