package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"social-go/internal/config"
	"social-go/internal/events"
	"social-go/internal/handlers/chatserver"
	appKafka "social-go/internal/kafka"
	appRedis "social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/storage"
	"social-go/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	log.Printf("%s chat server starting (version %s)", cfg.AppName, cfg.AppVersion)

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("initializing database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("migrating database: %v", err)
	}

	redisClient, err := appRedis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("connecting to Redis: %v", err)
	}
	defer redisClient.Close()
	blacklist := appRedis.NewRedisTokenBlacklist(redisClient)
	presenceStore := appRedis.NewRedisPresenceStore(redisClient)

	producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("creating Kafka producer: %v", err)
	}
	defer producer.Close()

	userRepo := storage.NewGormUserRepository(db)
	relRepo := storage.NewGormRelationshipRepository(db)
	roomRepo := storage.NewGormRoomRepository(db)
	msgRepo := storage.NewGormMessageRepository(db)

	hub := websocket.NewHub()
	dispatcher := websocket.NewDispatcher(hub)

	friendService := services.NewFriendService(userRepo, relRepo, dispatcher)
	chatService := services.NewChatService(roomRepo, msgRepo, dispatcher, producer, cfg.Kafka.MessagesTopic)
	presenceService := services.NewPresenceService(userRepo, relRepo, dispatcher, presenceStore)

	router := chatserver.NewEventRouter(hub, friendService, chatService, presenceService, cfg.Auth, blacklist)

	// Outgoing consumer: deliveries produced by external collaborators (match
	// flow, REST mutations) fan out to connections bound on this instance.
	outgoingConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("creating outgoing Kafka consumer: %v", err)
	}
	defer outgoingConsumer.Close()

	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()

	go func() {
		err := outgoingConsumer.Consume(consumerCtx, []string{cfg.Kafka.OutgoingTopic}, cfg.Kafka.ConsumerGroup,
			func(ctx context.Context, kafkaMsg *confluentKafka.Message) error {
				var env events.DeliverEnvelope
				if err := json.Unmarshal(kafkaMsg.Value, &env); err != nil {
					log.Printf("outgoing consumer: bad delivery envelope: %v", err)
					return nil // commit past poison messages
				}
				dispatcher.DeliverEnvelope(&env)
				return nil
			})
		if err != nil {
			log.Printf("outgoing consumer stopped: %v", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.HandleFunc(cfg.Server.WebSocketPath, chatserver.ServeWS(hub, router, cfg.WebSocket))
	httpMux.Handle("/metrics", promhttp.Handler())

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:           serverAddr,
		Handler:        httpMux,
		ReadTimeout:    cfg.Server.ReadTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Printf("chat server listening on %s (websocket path %s)", serverAddr, cfg.Server.WebSocketPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("chat server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("chat server shutting down")

	cancelConsumers()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("chat server shutdown failed: %v", err)
	}
	log.Println("chat server stopped")
}
