package config

import (
	"context"
	"sync"

	"order-ledger/internal/common/enum"
	ai "order-ledger/internal/pkg/ai-connector"
	database "order-ledger/internal/pkg/db"
	"order-ledger/internal/pkg/rabbitmq"
	"order-ledger/internal/pkg/redis"
	s3aws "order-ledger/internal/pkg/storage/s3"
	"order-ledger/internal/pkg/table"
)

// Config holds all application configuration loaded from environment variables
type Config struct {
	AppEnv      enum.EnvEnum `env:"APP_ENV" envDefault:"development"`
	AppPort     int          `env:"APP_PORT" envDefault:"8080"`
	AppTimezone string       `env:"APP_TIMEZONE" envDefault:"Asia/Jakarta"`
	LogLevel    string       `env:"LOG_LEVEL" envDefault:"info"`

	TableDriver enum.TableDriverEnum `env:"TABLE_DRIVER" envDefault:"postgres"`
	DBHost      string               `env:"DB_HOST" envDefault:"localhost"`
	DBPort      int                  `env:"DB_PORT" envDefault:"5432"`
	DBUser      string               `env:"DB_USER" envDefault:"postgres"`
	DBPass      string               `env:"DB_PASS" envDefault:""`
	DBName      string               `env:"DB_NAME" envDefault:"postgres"`
	DBSSLMode   string               `env:"DB_SSL_MODE" envDefault:"disable"`

	KVDriver      enum.KVDriverEnum `env:"KV_DRIVER" envDefault:"redis"`
	RedisHost     string            `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int               `env:"REDIS_PORT" envDefault:"6379"`
	RedisUser     string            `env:"REDIS_USER" envDefault:"default"`
	RedisPass     string            `env:"REDIS_PASS" envDefault:""`
	RedisPoolSize int               `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisDB       int               `env:"REDIS_DB" envDefault:"0"`

	RabbitHost    string `env:"RABBIT_HOST" envDefault:"localhost"`
	RabbitPort    int    `env:"RABBIT_PORT" envDefault:"5672"`
	RabbitUser    string `env:"RABBIT_USER" envDefault:"guest"`
	RabbitPass    string `env:"RABBIT_PASS" envDefault:"guest"`
	RabbitWorkers int    `env:"RABBIT_WORKERS" envDefault:"4"`

	LedgerSheet  string               `env:"LEDGER_SHEET" envDefault:"ORDER"`
	InvoiceSheet string               `env:"INVOICE_SHEET" envDefault:"INVOICE"`
	CounterMode  enum.CounterModeEnum `env:"COUNTER_MODE" envDefault:"atomic"`

	PaymentProvider    enum.PaymentProviderEnum `env:"PAYMENT_PROVIDER" envDefault:"doku"`
	PaymentEnvironment string                   `env:"PAYMENT_ENVIRONMENT" envDefault:"sandbox"`
	PaymentDueMinutes  int                      `env:"PAYMENT_DUE_MINUTES" envDefault:"60"`
	DokuClientID       string                   `env:"DOKU_CLIENT_ID" envDefault:""`
	DokuSecretKey      string                   `env:"DOKU_SECRET_KEY" envDefault:""`
	MidtransServerKey  string                   `env:"MIDTRANS_SERVER_KEY" envDefault:""`

	WebhookURL         string `env:"WEBHOOK_URL" envDefault:""`
	HTTPTimeoutSeconds int    `env:"HTTP_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPProxyURL       string `env:"HTTP_PROXY_URL" envDefault:""`

	S3BucketName      string `env:"S3_BUCKET_NAME" envDefault:""`
	S3Region          string `env:"S3_REGION" envDefault:"ap-southeast-1"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" envDefault:""`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" envDefault:""`
	S3Endpoint        string `env:"S3_ENDPOINT" envDefault:""`
	S3PresignHours    int    `env:"S3_PRESIGN_HOURS" envDefault:"72"`

	GeminiAPIKey string `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// SetupServerDto contains dependencies for server setup
type SetupServerDto struct {
	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     *sync.WaitGroup
	Env    *Config
	Db     *database.Database
	Tables table.Store
	Rds    redis.IRedis
	Rb     *rabbitmq.ConnectionManager
	S3     s3aws.Is3
	Ai     *ai.AiClient
}
