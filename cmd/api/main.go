package main

import (
	"context"
	"fmt"
	"log"

	"livepoll/config"
	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/response"
	"livepoll/internal/repository"
	"livepoll/internal/server"
	"livepoll/internal/services"
	"livepoll/internal/websocket"
	"livepoll/pkg/database"
	"livepoll/pkg/events"
	"livepoll/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)
	defer l.Logger.Sync()

	// Connect to Database
	database.Connect(cfg)

	if err := database.DB.AutoMigrate(
		&poll.Poll{},
		&poll.Question{},
		&poll.Option{},
		&response.Response{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event broker: Redis when configured, in-process otherwise.
	var bus events.Broker = events.NewInProcBus()
	if cfg.RedisEnabled {
		broker := events.NewRedisBroker(
			fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			cfg.RedisPassword,
			cfg.RedisDB,
		)
		if err := broker.Ping(ctx); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		bus = broker
	}

	repos := repository.New(database.DB)
	pollService := services.NewPollService(repos.Polls, repos.Responses, bus, l)
	responseService := services.NewResponseService(repos.Polls, repos.Responses, bus, l)

	hub := websocket.NewHub(l)
	if err := hub.SubscribeEvents(ctx, bus); err != nil {
		log.Fatalf("Failed to subscribe hub to poll events: %v", err)
	}
	go hub.Run(ctx)

	gateway := websocket.NewGateway(hub, pollService, responseService, l)
	wsHandler := websocket.NewHandler(hub, gateway)

	srv := server.New(cfg, l)
	srv.SetupRoutes(wsHandler)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
