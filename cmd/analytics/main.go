package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/analytics"
	"storefront/internal/kafka"
	"storefront/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

const cfgPath = "config/analytics-config.yaml"

func main() {
	// Init logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	logger := zapLogger.Sugar()
	defer func() { _ = zapLogger.Sync() }()

	// Parse config
	c, err := analytics.NewConfig(cfgPath)
	if err != nil {
		logger.Fatalf("Error parsing config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	db, err := sql.Open("postgres", c.CfgDB.DSN())
	if err != nil {
		logger.Fatalf("Error connecting to DB: %v", err)
	}
	defer db.Close()

	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Errorf("DB ping failed: %v", err)
	}

	// Init Kafka Consumer
	consumer := kafka.NewConsumer(c.CfgKafka.Brokers, c.CfgKafka.Topic, c.CfgKafka.GroupID, logger)
	defer consumer.Close()

	// Init analytics repository и service через интерфейсы
	repo := analytics.NewRepository(db, logger)
	service := analytics.NewService(repo, logger)

	// Start event processor
	go consumer.Consume(ctx, service.ProcessEvent)

	// Init HTTP server
	handler := analytics.NewHandler(service, logger)
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/products/top", handler.GetTopProducts).Methods("GET")
	r.HandleFunc("/scope/{scope_id}/preferences", handler.GetScopePreferences).Methods("GET")

	srv := &http.Server{
		Addr:         c.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Failed to shutdown server: %v", err)
		}
	}()

	logger.Infof("Starting analytics service on %s", c.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
