package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
	Worker   WorkerConfig
}

var (
	ConfigInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	URL       string
	VerifyTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Group   string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret string
}

type WorkerConfig struct {
	SweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	// Viper setup
	once.Do(func() {
		viper.SetDefault("ELECTION_PORT", "8080")
		viper.SetDefault("ELECTION_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("ELECTION_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("ELECTION_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("ELECTION_JWT_SECRET", "secret")
		viper.SetDefault("ELECTION_SWEEP_INTERVAL", time.Minute)
		viper.SetDefault("MYSQL_USER", "root")
		viper.SetDefault("MYSQL_PASSWORD", "password")
		viper.SetDefault("MYSQL_HOST", "localhost")
		viper.SetDefault("MYSQL_PORT", "3306")
		viper.SetDefault("MYSQL_DB", "election")
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_VERIFY_TTL", time.Minute)
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_GROUP", "election-ledger-workers")
		viper.SetDefault("MINIO_ENDPOINT", "")
		viper.SetDefault("MINIO_ACCESS_KEY", "")
		viper.SetDefault("MINIO_SECRET_KEY", "")
		viper.SetDefault("MINIO_BUCKET", "election-audit")
		viper.SetDefault("MINIO_USE_SSL", false)
		viper.AutomaticEnv()

		ConfigInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("ELECTION_HOST"),
				Port:         viper.GetString("ELECTION_PORT"),
				ReadTimeout:  viper.GetDuration("ELECTION_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("ELECTION_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("ELECTION_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("MYSQL_HOST"),
				Port:     viper.GetString("MYSQL_PORT"),
				User:     viper.GetString("MYSQL_USER"),
				Password: viper.GetString("MYSQL_PASSWORD"),
				DBName:   viper.GetString("MYSQL_DB"),
			},
			Redis: RedisConfig{
				URL:       viper.GetString("REDIS_URL"),
				VerifyTTL: viper.GetDuration("REDIS_VERIFY_TTL"),
			},
			Kafka: KafkaConfig{
				Brokers: strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
				Group:   viper.GetString("KAFKA_GROUP"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("ELECTION_JWT_SECRET"),
			},
			Worker: WorkerConfig{
				SweepInterval: viper.GetDuration("ELECTION_SWEEP_INTERVAL"),
			},
		}
	})

	return ConfigInstance, nil
}
