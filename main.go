package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"chat-pipeline/internal/cache"
	"chat-pipeline/internal/config"
	"chat-pipeline/internal/db"
	"chat-pipeline/internal/handlers"
	"chat-pipeline/internal/observability"
	"chat-pipeline/internal/queue"
	"chat-pipeline/internal/repositories"
	"chat-pipeline/internal/services"
)

const serviceName = "chat-pipeline"

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		logger.Fatal("init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer database.Close()

	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisCache.Close()
	unreadCache := cache.NewUnreadCache(redisCache, cfg.UnreadTTL)

	topology := queue.Topology{
		DeliveryExchange:     cfg.DeliveryExchange,
		DeliveryQueue:        cfg.DeliveryQueue,
		DeadLetterExchange:   cfg.DeadLetterExchange,
		DeadLetterQueue:      cfg.DeadLetterQueue,
		NotificationExchange: cfg.NotificationExchange,
		DeliveryLimit:        cfg.DeliveryLimit,
	}
	publisher, err := queue.Dial(cfg.AMQPURL, topology, 5, 2*time.Second, logger)
	if err != nil {
		logger.Fatal("connect amqp", zap.Error(err))
	}
	defer publisher.Close()

	userRepo := repositories.NewUserRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	memberRepo := repositories.NewMemberRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	readStatusRepo := repositories.NewReadStatusRepo(database)

	deliverer := services.NewDeliverer(messageRepo, roomRepo, memberRepo, unreadCache, publisher, logger)
	delivery := services.NewFallbackDelivery(services.NewQueueDelivery(publisher), deliverer, logger)
	ingest := services.NewIngestService(memberRepo, delivery, logger)
	provisioner := services.NewProvisioner(userRepo, roomRepo, memberRepo, logger)
	tracker := services.NewReadTracker(memberRepo, messageRepo, roomRepo, readStatusRepo, unreadCache, logger)
	processor := services.NewProcessor(deliverer, logger)

	for i := 0; i < cfg.ConsumerCount; i++ {
		consumer := queue.NewBatchConsumer(publisher.Connection(), topology, processor, cfg.BatchSize, cfg.BatchWindow, logger)
		go func(n int) {
			for {
				err := consumer.Run(ctx)
				if ctx.Err() != nil {
					return
				}
				logger.Error("consumer stopped, restarting", zap.Int("consumer", n), zap.Error(err))
				time.Sleep(2 * time.Second)
			}
		}(i)
	}

	roomHandler := handlers.NewRoomHandler(provisioner, roomRepo)
	messageHandler := handlers.NewMessageHandler(ingest, memberRepo, messageRepo)
	readHandler := handlers.NewReadHandler(tracker)
	userHandler := handlers.NewUserHandler(userRepo)
	healthHandler := handlers.NewHealthHandler(database, redisCache)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/users", userHandler.CreateUser)
	router.GET("/users/:email", userHandler.GetUser)
	router.PUT("/users/:email", userHandler.UpdateUser)

	router.POST("/rooms/private", roomHandler.CreatePrivateChat)
	router.POST("/rooms/group", roomHandler.CreateGroupChat)
	router.GET("/rooms", roomHandler.ListRooms)

	router.POST("/rooms/:room_id/messages", messageHandler.SendMessage)
	router.GET("/rooms/:room_id/messages", messageHandler.GetMessages)
	router.POST("/rooms/:room_id/read", readHandler.MarkRead)
	router.GET("/unread", readHandler.GetUnreadCounts)

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
