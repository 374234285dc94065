package server

import (
	"fmt"
	"net/http"
	"time"

	"election-service/internal/adapters/kafka"
	"election-service/internal/config"
	"election-service/internal/database"
	"election-service/internal/jobs"
	"election-service/internal/server/handlers"
	"election-service/internal/server/repository"
	"election-service/internal/server/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App wires the HTTP side of the service: the cast boundary, the
// verification API and the admin lifecycle endpoints.
type App struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.NewMySQLDB(
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	if err != nil {
		return nil, err
	}

	var cache service.VerificationCache
	if cfg.Redis.URL != "" {
		redisClient, err := database.NewRedisConnection(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		cache = service.NewRedisVerificationCache(redisClient, cfg.Redis.VerifyTTL)
	}

	producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, err
	}
	jobProducer := jobs.NewKafkaProducer(producer)

	// Repositories
	electionRepo := repository.NewElectionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	resultRepo := repository.NewResultRepository(db)

	// Services
	voteService := service.NewVoteService(voteRepo, electionRepo)
	verifyService := service.NewVerifyService(voteRepo, cache)
	lifecycleService := service.NewLifecycleService(electionRepo, voteRepo, jobProducer, nil)

	// Handlers
	voteHandler := handlers.NewVoteHandler(voteService, cfg.Kafka.Brokers)
	verifyHandler := handlers.NewVerifyHandler(verifyService, electionRepo)
	electionHandler := handlers.NewElectionHandler(electionRepo, resultRepo, lifecycleService)

	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, cfg.JWT.Secret, voteHandler, verifyHandler, electionHandler)

	return &App{router: router, db: db, cfg: cfg}, nil
}

// Engine exposes the configured router, mainly for the entrypoint and
// HTTP-level tests.
func (a *App) Engine() *gin.Engine {
	return a.router
}

// Server builds the http.Server with the configured timeouts.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}
}

// Run starts the HTTP server and blocks.
func (a *App) Run() error {
	srv := a.Server()
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = 30 * time.Second
	}
	return srv.ListenAndServe()
}
