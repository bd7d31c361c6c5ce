package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-locker/internal/config"
	"smart-locker/internal/events"
	"smart-locker/internal/infrastructure/database/postgres"
	"smart-locker/internal/infrastructure/hardware"
	"smart-locker/internal/logger"
	"smart-locker/internal/routes"
	"smart-locker/internal/usecase/admin"
	"smart-locker/internal/usecase/auth"
	"smart-locker/internal/usecase/locker"
	"smart-locker/internal/usecase/session"
	"smart-locker/internal/ws"
	"smart-locker/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	userRepo := postgres.NewUserRepository(db)
	lockerRepo := postgres.NewLockerRepository(db)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := lockerRepo.Seed(seedCtx, cfg.Locker.LockerIDs()); err != nil {
		seedCancel()
		logger.Fatal("Failed to seed lockers", zap.Error(err))
	}
	seedCancel()

	var driver hardware.Driver
	switch cfg.Actuator.Driver {
	case "rpio":
		driver = hardware.NewRPIODriver()
	default:
		driver = hardware.NewMemoryDriver()
	}

	channelPins := make(map[int]int, len(cfg.Actuator.ChannelPins))
	for i, pin := range cfg.Actuator.ChannelPins {
		channelPins[i+1] = pin
	}

	controller, err := hardware.NewController(driver, hardware.Config{
		Hold:        time.Duration(cfg.Actuator.HoldSeconds) * time.Second,
		ChannelPins: channelPins,
		ActiveLow:   cfg.Actuator.ActiveLow,
		BuzzerPin:   cfg.Actuator.BuzzerPin,
	})
	if err != nil {
		logger.Fatal("Failed to initialize actuator controller", zap.Error(err))
	}
	defer controller.Shutdown()

	var eventSink session.EventSink
	if cfg.MQTT.Enabled {
		mqttClient := mqtt.NewClient(&mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,

			AutoReconnect: true,
		})
		if err := mqttClient.Connect(); err != nil {
			logger.Error("Failed to connect to MQTT broker, telemetry disabled", zap.Error(err))
		} else {
			defer mqttClient.Disconnect()
			eventSink = events.NewMQTTSink(mqttClient, cfg.MQTT.Topic)
		}
	}

	wsManager := ws.NewManager()

	authService := auth.NewService(userRepo, cfg)
	lockerService := locker.NewService(lockerRepo, cfg.Locker.MaxPerUser)
	adminService := admin.NewService(db, userRepo)

	sessions := session.NewManager(lockerService, controller, cfg.Locker.ChannelOf, eventSink, wsManager)
	defer sessions.CloseAll()

	router := routes.SetupRoutes(cfg, routes.Deps{
		DB:          db,
		AuthService: authService,
		Lockers:     lockerService,
		Admin:       adminService,
		Sessions:    sessions,
		WS:          wsManager,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
