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

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/config"
	"social-go/internal/handlers/chatserver"
	appKafka "social-go/internal/kafka"
	kafkahandlers "social-go/internal/kafka/handlers"
	"social-go/internal/logging"
	"social-go/internal/metrics"
	"social-go/internal/middleware"
	"social-go/internal/websocket"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logging.New(cfg)
	log.WithFields(logrus.Fields{"app": cfg.AppName, "version": cfg.AppVersion}).Info("chat server starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	// 2. 初始化 WebSocket Hub
	hub := websocket.NewHub(log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	// 3. Friend events from the API server
	if cfg.Kafka.Enabled {
		consumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka, log)
		if err != nil {
			log.WithError(err).Fatal("failed to create kafka consumer")
		}
		defer consumer.Close()

		eventHandler := kafkahandlers.NewFriendEventHandler(hub, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			topics := []string{cfg.Kafka.FriendEventsTopic}
			log.WithFields(logrus.Fields{"topic": cfg.Kafka.FriendEventsTopic, "group": cfg.Kafka.ConsumerGroup}).Info("friend event consumer started")
			if err := consumer.Consume(ctx, topics, cfg.Kafka.ConsumerGroup, eventHandler.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("friend event consumer stopped with error")
			}
		}()
	} else {
		log.Warn("kafka disabled, no friend notifications will be pushed")
	}

	// 4. 配置 HTTP 服务器路由
	wsHandler := chatserver.NewWebSocketHandler(hub, auth.NewChatSessionGate(cfg.Auth, nil), cfg, log)
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(log))
	r.HandleFunc(cfg.Server.WebSocketPath, wsHandler.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:           serverAddr,
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": serverAddr, "path": cfg.Server.WebSocketPath}).Info("chat server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("chat server failed")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down chat server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("chat server forced to shut down")
	}

	cancel()
	wg.Wait()
	log.Info("chat server stopped")
}
