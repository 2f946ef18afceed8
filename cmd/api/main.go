package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	config "order-ledger/configs"
	"order-ledger/internal/common/enum"
	ai "order-ledger/internal/pkg/ai-connector"
	database "order-ledger/internal/pkg/db"
	"order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/metrics"
	"order-ledger/internal/pkg/rabbitmq"
	"order-ledger/internal/pkg/redis"
	s3aws "order-ledger/internal/pkg/storage/s3"
	"order-ledger/internal/pkg/table"
	"order-ledger/internal/pkg/validation"
	invoiceRepo "order-ledger/internal/repository/invoice"
	serverApp "order-ledger/internal/server"

	"github.com/gin-gonic/gin"
)

// @title           Order Ledger API
// @version         1.0
// @description     Records customer orders in a positional ledger and issues invoices with payment links

// @BasePath        /api
func main() {
	logger.Setup()
	defer logger.Sync()

	env, err := config.GetEnv()
	if err != nil {
		logger.Error.Println("Error getting environment", err)
		panic(err)
	}

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup Redis (only when counters live there)
	var rds redis.IRedis
	if env.KVDriver == enum.KVRedis {
		client, err := setupRedis(ctx, env)
		if err != nil {
			logger.Error.Println("Error setting up Redis", err)
			return
		}
		rds = client
		defer func() { _ = client.Close() }()
	}

	// Setup ordered tables
	var db *database.Database
	var tables table.Store
	if env.TableDriver == enum.TableMemory {
		tables = table.NewMemoryStore()
	} else {
		db, err = setupDB(env)
		if err != nil {
			logger.Error.Println("Error setting up Database", err)
			return
		}
		defer func() { _ = db.Close() }()
		tables = table.NewGormStore(db.DB)
	}

	err = database.SeedSheets(ctx, tables,
		database.SheetSeed{Name: env.LedgerSheet, Header: ledger.Header},
		database.SheetSeed{Name: env.InvoiceSheet, Header: invoiceRepo.Header},
	)
	if err != nil {
		logger.Error.Println("Error seeding sheets", err)
		return
	}

	// Setup RabbitMQ
	rabbit, err := setupRabbitMQ(ctx, env)
	if err != nil {
		logger.Error.Println("Error setting up RabbitMQ", err)
		return
	}
	defer func() { _ = rabbit.Close() }()

	// Setup S3 (optional)
	var storage s3aws.Is3
	if env.S3BucketName != "" {
		client, err := setupS3(ctx, env, rds)
		if err != nil {
			logger.Error.Println("Error setting up S3", err)
			return
		}
		storage = client
	} else {
		logger.Warning.Println("S3_BUCKET_NAME is empty, invoice documents will not be stored")
	}

	// Setup AI Client (optional)
	aiClient, err := ai.NewAiClient(ctx, &ai.Config{
		GeminiAPIKey: env.GeminiAPIKey,
		GeminiModel:  env.GeminiModel,
	})
	if err != nil {
		logger.Error.Println("Error setting up Gemini", err)
		return
	}
	defer func() { _ = aiClient.Close() }()
	logger.Info.Printf("Gemini order parsing enabled: %t", aiClient.Enabled())

	setupServer(&config.SetupServerDto{
		Ctx:    ctx,
		Cancel: cancel,
		Wg:     &wg,
		Env:    env,
		Db:     db,
		Tables: tables,
		Rds:    rds,
		Rb:     rabbit,
		S3:     storage,
		Ai:     aiClient,
	})
}

func setupRedis(ctx context.Context, env *config.Config) (*redis.Client, error) {
	return redis.Setup(ctx, &redis.Config{
		Host:     env.RedisHost,
		Username: env.RedisUser,
		Port:     env.RedisPort,
		Password: env.RedisPass,
		PoolSize: env.RedisPoolSize,
		DB:       env.RedisDB,
	})
}

func setupRabbitMQ(ctx context.Context, env *config.Config) (*rabbitmq.ConnectionManager, error) {
	return rabbitmq.NewConnectionManager(ctx, &rabbitmq.Config{
		Username: env.RabbitUser,
		Password: env.RabbitPass,
		Host:     env.RabbitHost,
		Port:     env.RabbitPort,
	})
}

func setupDB(env *config.Config) (*database.Database, error) {
	return database.Setup(&database.Config{
		Host:     env.DBHost,
		Port:     env.DBPort,
		User:     env.DBUser,
		Password: env.DBPass,
		Database: env.DBName,
		SSLMode:  env.DBSSLMode,
		Driver:   env.TableDriver,
	})
}

func setupS3(ctx context.Context, env *config.Config, rds redis.IRedis) (*s3aws.S3Client, error) {
	return s3aws.NewS3Client(ctx, s3aws.S3Config{
		AWSRegion:          env.S3Region,
		AWSAccessKeyID:     env.S3AccessKeyID,
		AWSSecretAccessKey: env.S3SecretAccessKey,
		Endpoint:           env.S3Endpoint,
		BucketName:         env.S3BucketName,
		PresignTTL:         time.Duration(env.S3PresignHours) * time.Hour,
	}, rds)
}

func setupServer(payload *config.SetupServerDto) {
	env := payload.Env
	ctx := payload.Ctx

	err := validation.Setup()
	if err != nil {
		logger.Error.Println("Failed to setup validation")
		panic(err)
	}

	publisher, err := rabbitmq.NewPublisher(ctx, payload.Rb)
	if err != nil {
		panic(err)
	}
	defer func() { _ = publisher.Close() }()

	m := metrics.Default(metrics.Config{ServiceName: "order-ledger", Environment: env.AppEnv.ToString()})
	container, err := serverApp.NewContainer(payload, m, publisher)
	if err != nil {
		logger.Error.Println("Failed to build services", err)
		panic(err)
	}

	if env.AppEnv == enum.PRODUCTION {
		gin.SetMode(gin.ReleaseMode)
	}
	e := gin.New()
	e.Use(gin.Recovery())

	serverApp.Setup(e, container, serverApp.Backends{Db: payload.Db, Redis: payload.Rds, Rb: payload.Rb})

	worker, err := serverApp.InitWorker(ctx, payload.Rb, container)
	if err != nil {
		logger.Error.Println("Failed to start worker", err)
		panic(err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", env.AppPort),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	payload.Wg.Add(1)
	go func() {
		defer payload.Wg.Done()
		logger.HTTP.Println("========= Server Started =========")
		logger.HTTP.Println("=========", env.AppPort, "=========")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Println("Server error:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.HTTP.Println("========= Server Shutting Down =========")

	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	_ = server.Shutdown(shutdownCtx)
	if err := worker.Stop(); err != nil {
		logger.Warning.Println("Worker stop:", err)
	}
	payload.Cancel()
	payload.Wg.Wait()
	logger.HTTP.Println("========= Server Stopped =========")
}
