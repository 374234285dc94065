package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"election-service/internal/adapters/kafka"
	"election-service/internal/config"
	"election-service/internal/database"
	"election-service/internal/jobs"
	"election-service/internal/server/repository"
	"election-service/internal/server/service"
	"election-service/internal/storage"
	"election-service/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting ledger worker")

	db, err := database.NewMySQLDB(
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	if err != nil {
		log.Fatal("Failed to connect to MySQL:", err)
	}

	var cache service.VerificationCache
	if cfg.Redis.URL != "" {
		redisClient, err := database.NewRedisConnection(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		cache = service.NewRedisVerificationCache(redisClient, cfg.Redis.VerifyTTL)
	}

	var archiver service.ChainArchiver
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket,
			cfg.MinIO.UseSSL,
		)
		if err != nil {
			log.Fatal("Failed to connect to MinIO:", err)
		}
		archiver = minioClient
	}

	syncProducer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatal("Failed to create Kafka producer:", err)
	}
	defer syncProducer.Close()
	producer := jobs.NewKafkaProducer(syncProducer)

	electionRepo := repository.NewElectionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	sealer := service.NewSealerService(voteRepo, producer, cache)
	tally := service.NewTallyService(db)
	finalizer := service.NewFinalizeService(electionRepo, voteRepo, archiver, nil)
	lifecycle := service.NewLifecycleService(electionRepo, voteRepo, producer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic sweep + dispatch alongside the consumers.
	scheduler := worker.NewScheduler(lifecycle, cfg.Worker.SweepInterval)
	go scheduler.Run(ctx)

	group, err := kafka.InitConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.Group)
	if err != nil {
		log.Fatal("Failed to create consumer group:", err)
	}
	defer group.Close()

	go func() {
		for err := range group.Errors() {
			slog.Error("consumer group error", "error", err)
		}
	}()

	handler := worker.NewWorker(sealer, tally, finalizer)
	go func() {
		for {
			// Consume returns on rebalance; loop until cancelled.
			if err := group.Consume(ctx, jobs.Topics(), handler); err != nil {
				slog.Error("consume failed", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Worker shutting down...")
	cancel()
	slog.Info("Worker stopped")
}
