package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration, loaded once per process.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type LogConfig struct {
	Level string
}

var (
	instance *Config
	once     sync.Once
)

// Load reads configuration from a .env file (when present) and the
// environment, with sane defaults for local development. Subsequent
// calls return the same instance.
func Load() (*Config, error) {
	once.Do(func() {
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")

		viper.SetDefault("DIKENANG_HOST", "")
		viper.SetDefault("DIKENANG_PORT", "8080")
		viper.SetDefault("DIKENANG_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("DIKENANG_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("DIKENANG_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("DIKENANG_JWT_SECRET", "secret")
		viper.SetDefault("DIKENANG_JWT_EXPIRE", "24h")
		viper.SetDefault("DIKENANG_LOG_LEVEL", "info")

		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "dikenang")
		viper.SetDefault("POSTGRES_SSLMODE", "disable")

		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)

		viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
		viper.SetDefault("KAFKA_TOPIC", "dikenang.notifications")
		viper.SetDefault("KAFKA_CONSUMER_GROUP", "dikenang-notifier")

		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "dikenang-attachments")
		viper.SetDefault("MINIO_USE_SSL", false)

		viper.AutomaticEnv()

		// Missing .env is fine, environment variables and defaults apply.
		_ = viper.ReadInConfig()

		instance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("DIKENANG_HOST"),
				Port:         viper.GetString("DIKENANG_PORT"),
				ReadTimeout:  viper.GetDuration("DIKENANG_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("DIKENANG_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("DIKENANG_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				URL:      viper.GetString("DATABASE_URL"),
				Host:     viper.GetString("POSTGRES_HOST"),
				Port:     viper.GetString("POSTGRES_PORT"),
				User:     viper.GetString("POSTGRES_USER"),
				Password: viper.GetString("POSTGRES_PASSWORD"),
				DBName:   viper.GetString("POSTGRES_DB"),
				SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			},
			Redis: RedisConfig{
				URL:          viper.GetString("REDIS_URL"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("DIKENANG_JWT_SECRET"),
				Expire: viper.GetDuration("DIKENANG_JWT_EXPIRE"),
			},
			Kafka: KafkaConfig{
				Brokers:       viper.GetStringSlice("KAFKA_BROKERS"),
				Topic:         viper.GetString("KAFKA_TOPIC"),
				ConsumerGroup: viper.GetString("KAFKA_CONSUMER_GROUP"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			},
			Log: LogConfig{
				Level: viper.GetString("DIKENANG_LOG_LEVEL"),
			},
		}
	})

	return instance, nil
}
