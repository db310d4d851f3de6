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

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"social-go/internal/config"
	"social-go/internal/events"
	apihandlers "social-go/internal/handlers/apiserver"
	appKafka "social-go/internal/kafka"
	"social-go/internal/middleware"
	appRedis "social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/storage"
	"social-go/internal/websocket"
)

// kafkaDispatcher routes deliveries through the outgoing topic instead of a
// local hub: the API server holds no websocket connections, so every event it
// emits must travel to whichever chat server instance the target is bound on.
type kafkaDispatcher struct {
	producer      appKafka.MessageProducer
	outgoingTopic string
}

func (d *kafkaDispatcher) Deliver(userID uint, event string, payload interface{}) {
	env, err := events.NewEnvelope(event, payload)
	if err != nil {
		log.Printf("kafka dispatcher: marshal %s for user %d: %v", event, userID, err)
		return
	}
	raw, err := json.Marshal(events.DeliverEnvelope{UserID: userID, Event: env.Event, Payload: env.Payload})
	if err != nil {
		log.Printf("kafka dispatcher: marshal envelope %s for user %d: %v", event, userID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	key := []byte(fmt.Sprintf("%d", userID))
	if err := d.producer.SendMessage(ctx, d.outgoingTopic, key, raw); err != nil {
		log.Printf("kafka dispatcher: publish %s for user %d: %v", event, userID, err)
	}
}

var _ websocket.EventDispatcher = (*kafkaDispatcher)(nil)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	log.Printf("%s API server starting (version %s)", cfg.AppName, cfg.AppVersion)

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("initializing database: %v", err)
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

	dispatcher := &kafkaDispatcher{producer: producer, outgoingTopic: cfg.Kafka.OutgoingTopic}

	friendService := services.NewFriendService(userRepo, relRepo, dispatcher)
	chatService := services.NewChatService(roomRepo, msgRepo, dispatcher, producer, cfg.Kafka.MessagesTopic)
	presenceService := services.NewPresenceService(userRepo, relRepo, dispatcher, presenceStore)

	friendHandler := apihandlers.NewFriendHandler(friendService)
	chatHandler := apihandlers.NewChatHandler(chatService, userRepo)
	userHandler := apihandlers.NewUserHandler(presenceService)

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return middleware.AuthMiddleware(next, cfg.Auth, blacklist)
	})
	api.HandleFunc("/friends", friendHandler.ListFriendsHandler).Methods(http.MethodGet)
	api.HandleFunc("/friend-requests/incoming", friendHandler.ListIncomingRequestsHandler).Methods(http.MethodGet)
	api.HandleFunc("/friend-requests/outgoing", friendHandler.ListOutgoingRequestsHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms", chatHandler.ListRoomsHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomID:[0-9]+}/messages", chatHandler.ListMessagesHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID:[0-9]+}/presence", userHandler.GetPresenceHandler).Methods(http.MethodGet)

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		gorillaHandlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		gorillaHandlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		gorillaHandlers.AllowCredentials(),
		gorillaHandlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	)(router)

	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: gorillaHandlers.LoggingHandler(os.Stdout, corsHandler),
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("API server shutdown failed: %v", err)
	}
	log.Println("API server stopped")
}
