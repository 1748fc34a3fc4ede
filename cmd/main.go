package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridecare/ridecare/internal/adapters"
	"github.com/ridecare/ridecare/internal/auth"
	"github.com/ridecare/ridecare/internal/config"
	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/handlers"
	"github.com/ridecare/ridecare/internal/ingest"
	"github.com/ridecare/ridecare/internal/middleware"
	"github.com/ridecare/ridecare/internal/push"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()
	log.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	rules := &db.MongoRuleCollection{Collection: database.Collection("rules")}
	events := &db.MongoEventCollection{Collection: database.Collection("events")}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}

	// Push delivery is optional: without credentials the server still runs,
	// it just evaluates without sending.
	var dispatcher *push.Dispatcher
	messenger, err := push.NewFCMMessenger(context.Background(), cfg.FCMCredentialsFile)
	if err != nil {
		log.WithError(err).Warn("push delivery disabled")
	} else {
		dispatcher = push.NewDispatcher(messenger, users)
	}

	tripAdapter := adapters.NewTripAdapter(vehicles, rules, events, users, dispatcher)

	subscriber := ingest.NewSubscriber(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, tripAdapter)
	if err := subscriber.Start(); err != nil {
		log.WithError(err).Fatal("failed to start trip ingestion")
	}
	defer subscriber.Stop()

	sweeper := adapters.NewSweeper(vehicles, rules, events, users, dispatcher)
	if err := sweeper.Start(cfg.SweepSchedule, cfg.SweepTimezone); err != nil {
		log.WithError(err).Fatal("failed to schedule maintenance sweep")
	}
	defer sweeper.Stop()

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	authHandler := handlers.NewAuthHandler(authService, users, rules)
	ruleHandler := handlers.NewRuleHandler(rules)
	eventHandler := handlers.NewEventHandler(events)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, rules, events)
	deviceHandler := handlers.NewDeviceHandler(users)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	loginLimit := rateLimiter.RateLimit(10, 60)
	mux.Handle("/api/auth/login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("/api/auth/register", loginLimit(http.HandlerFunc(authHandler.Register)))
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)

	mux.HandleFunc("/api/rules", ruleHandler.HandleRules)
	mux.Handle("/api/rules/", authMiddleware.RequirePermission("manage_rules")(http.HandlerFunc(ruleHandler.DeleteRule)))
	mux.HandleFunc("/api/events", eventHandler.HandleEvents)
	mux.HandleFunc("/api/vehicles", vehicleHandler.HandleVehicles)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.HandleVehicleByID)
	mux.Handle("/api/devices/token", authMiddleware.RequirePermission("manage_devices")(http.HandlerFunc(deviceHandler.HandleToken)))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: authMiddleware.Authenticate(mux),
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP shutdown failed")
	}
}
