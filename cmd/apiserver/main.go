package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/joho/godotenv/autoload"
	redisDriver "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/handlers/apiserver"
	appKafka "social-go/internal/kafka"
	"social-go/internal/logging"
	appRedis "social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/socialtypes"
	"social-go/internal/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logging.New(cfg)
	log.WithFields(logrus.Fields{"app": cfg.AppName, "version": cfg.AppVersion, "env": cfg.AppEnv}).Info("API server starting")

	// 2. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// 3. 初始化 Redis Client
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.WithError(err).WithField("addr", cfg.Redis.Addr).Fatal("failed to connect to redis")
	}
	cancelPing()
	log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")

	blacklist := appRedis.NewRedisTokenBlacklist(redisClient)
	rateLimiter := appRedis.NewRedisRateLimiter(redisClient)

	// 4. 初始化 Kafka Producer (optional)
	var events socialtypes.FriendEventPublisher = socialtypes.NoopFriendEventPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka, log)
		if err != nil {
			log.WithError(err).Fatal("failed to create kafka producer")
		}
		defer producer.Close()
		events = appKafka.NewFriendEventPublisher(producer, cfg.Kafka.FriendEventsTopic)
		log.WithField("topic", cfg.Kafka.FriendEventsTopic).Info("friend events go to kafka")
	} else {
		log.Info("kafka disabled, friend events are not published")
	}

	// 5. 初始化存储服务
	if cfg.Storage.Type != "local" {
		log.WithField("type", cfg.Storage.Type).Fatal("unsupported storage type")
	}
	fileStore, err := storage.NewLocalStorageService(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize local storage")
	}

	// 6. Repositories and services
	userRepo := storage.NewGormUserRepository(db)
	friendReqRepo := storage.NewGormFriendRequestRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)

	maxUpload := cfg.Storage.MaxFileSizeMB << 20
	chatService := services.NewChatService(cfg.Auth, log)
	authService := services.NewAuthService(userRepo, blacklist, chatService, cfg.Auth, log)
	userService := services.NewUserService(userRepo)
	ledger := services.NewFriendRequestService(db, userRepo, friendReqRepo, friendshipRepo, log)
	graph := services.NewSocialGraphService(userRepo, friendshipRepo, ledger, events, cfg.Social, log)
	pictures := services.NewProfilePictureService(userRepo, fileStore, maxUpload, log)

	// 7. 设置 HTTP 路由
	r := apiserver.NewRouter(apiserver.RouterDeps{
		Auth:                    apiserver.NewAuthHandler(authService, userService, cfg, log),
		Users:                   apiserver.NewUserHandler(graph, pictures, maxUpload, log),
		FriendRequest:           apiserver.NewFriendRequestHandler(graph, log),
		Chat:                    apiserver.NewChatHandler(chatService, log),
		Gate:                    auth.NewJWTSessionGate(cfg.Auth, blacklist),
		CookieName:              cfg.Auth.CookieName,
		RateLimiter:             rateLimiter,
		FriendRequestRateLimit:  cfg.Social.FriendRequestRateLimit,
		FriendRequestRateWindow: cfg.Social.FriendRequestRateWindow,
		UploadsURL:              cfg.Storage.BaseURL,
		UploadsDir:              cfg.Storage.LocalPath,
		Log:                     log,
	})

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	// 8. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handlers.CORS(corsOptions...)(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", serverAddr).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("API server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down API server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("API server forced to shut down")
	}
	log.Info("API server stopped")
}
