package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"dikenang-service/internal/comment"
	"dikenang-service/internal/config"
	"dikenang-service/internal/database"
	"dikenang-service/internal/middleware"
	"dikenang-service/internal/notification"
	"dikenang-service/internal/post"
	"dikenang-service/internal/pubsub"
	"dikenang-service/internal/realtime"
	"dikenang-service/internal/relationship"
	"dikenang-service/internal/user"
	"dikenang-service/internal/vote"
	"dikenang-service/pkg/logger"
)

// App wires the HTTP API, the realtime hub and their dependencies.
type App struct {
	httpServer *http.Server
	hub        *realtime.Hub
	producer   *notification.Producer
	userSvc    user.Service
	log        *logger.Logger

	hubCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	blobs, err := database.NewMinIOClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}

	producer, err := notification.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start kafka producer: %w", err)
	}

	bus := pubsub.NewRedisBus(redisClient)

	// Repositories
	userRepo := user.NewRepository(db)
	postRepo := post.NewRepository(db)
	voteRepo := vote.NewRepository(db)
	commentRepo := comment.NewRepository(db)
	relationshipRepo := relationship.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// Services
	userService := user.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.Expire)
	postService := post.NewService(postRepo, blobs, producer, log)
	voteService := vote.NewService(voteRepo, postRepo, bus, producer, log)
	commentService := comment.NewService(commentRepo, postRepo, producer)
	relationshipService := relationship.NewService(relationshipRepo)

	// Handlers
	hub := realtime.NewHub(bus, log)
	handlers := &handlerSet{
		user:         user.NewHandler(userService),
		post:         post.NewHandler(postService),
		vote:         vote.NewHandler(voteService),
		comment:      comment.NewHandler(commentService),
		relationship: relationship.NewHandler(relationshipService),
		notification: notification.NewHandler(notificationRepo),
		realtime:     realtime.NewHandler(hub, log),
	}

	auth := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimit := middleware.NewRateLimitMiddleware(redisClient)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS())
	setupRoutes(router, handlers, auth, rateLimit)

	return &App{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		hub:      hub,
		producer: producer,
		userSvc:  userService,
		log:      log,
	}, nil
}

// Run seeds reference data, starts the realtime hub and serves HTTP
// until Shutdown is called.
func (a *App) Run() error {
	if err := a.userSvc.SeedBadgeCatalog(context.Background()); err != nil {
		return fmt.Errorf("failed to seed badge catalog: %w", err)
	}

	hubCtx, cancel := context.WithCancel(context.Background())
	a.hubCancel = cancel
	go func() {
		if err := a.hub.Run(hubCtx); err != nil {
			a.log.Error("realtime hub stopped", "error", err)
		}
	}()

	a.log.Info("server listening", "addr", a.httpServer.Addr)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.hubCancel != nil {
		a.hubCancel()
	}
	if err := a.producer.Close(); err != nil {
		a.log.Error("failed to close kafka producer", "error", err)
	}
	return a.httpServer.Shutdown(ctx)
}
