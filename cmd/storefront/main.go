package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/account"
	"storefront/internal/app"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	elastic "storefront/internal/elastic_search"
	"storefront/internal/etl"
	handlersAccount "storefront/internal/handlers/account"
	handlersCart "storefront/internal/handlers/cart"
	handlersProduct "storefront/internal/handlers/product"
	handlersSession "storefront/internal/handlers/session"
	"storefront/internal/kafka"
	"storefront/internal/middleware"
	"storefront/internal/session"
	"storefront/internal/storage"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

const cfgPath = "config/config.yaml"

func main() {
	// init logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	logger := zapLogger.Sugar()
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			logger.Warnf("error to sync logger: %v", err)
		}
	}()

	// парсим конфиг
	c, err := app.NewConfig(cfgPath)
	if err != nil {
		logger.Fatalf("error to parsing config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// init redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.CfgRedis.Addr,
		Password: c.CfgRedis.Password,
		DB:       c.CfgRedis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warnf("failed to ping redis: %v", err)
	}

	// слот для снимков корзин
	var slot storage.Slot
	switch c.CfgCart.Storage {
	case app.StorageMemory:
		slot = storage.NewMemorySlot()
	case app.StorageRedis:
		slot = storage.NewRedisSlot(redisClient, logger, c.CfgCart.SnapshotTTL)
	case app.StoragePostgres:
		db, err := sql.Open("postgres", c.CfgDB.DSN())
		if err != nil {
			logger.Fatalf("error to database start: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(c.MaxOpenConns)
		if err := db.Ping(); err != nil {
			logger.Infof("Failed to get response to ping: %v", err)
		}
		slot = storage.NewPostgresSlot(db, logger)
	}

	registry := cart.NewRegistry(func(scope string) cart.SnapshotStorage {
		return storage.Bind(slot, scope, cart.SnapshotKey)
	}, logger, c.CfgCart.WriteTimeout)
	go registry.RunSweeper(ctx, c.CfgCart.SweepInterval, c.CfgCart.IdleTimeout)

	// внешние сервисы
	catalogClient := catalog.NewClient(c.CfgCatalog.BaseURL, c.CfgCatalog.Timeout, c.CfgCatalog.Breaker, logger)
	accountClient := account.NewClient(c.CfgAccount.BaseURL, c.CfgAccount.Timeout, logger)

	// init elastic
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: c.CfgES.Addresses})
	if err != nil {
		logger.Fatalf("error to create elastic client: %v", err)
	}
	searchService := elastic.NewService(esClient, logger, c.CfgES.Index)
	if err := searchService.EnsureIndex(ctx); err != nil {
		logger.Warnf("failed to ensure search index: %v", err)
	}

	pipeline := etl.NewPipeline(
		etl.NewCatalogExtractor(catalogClient, logger, 0),
		etl.NewTransformer(logger),
		etl.NewElasticLoader(searchService, logger),
		logger,
		c.ETLTimeout,
	)
	go pipeline.Run(ctx)

	// события аналитики
	var producer kafka.EventProducer
	if len(c.CfgKafka.Brokers) > 0 {
		producer = kafka.NewProducer(c.CfgKafka.Brokers, c.CfgKafka.Topic, logger)
	} else {
		logger.Warn("kafka brokers are not configured, analytics events are dropped")
		producer = kafka.NopProducer{Logger: logger}
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Warnf("error to close producer: %v", err)
		}
	}()

	sessionRepository := session.NewSessionRepository(redisClient, logger, c.Secret, c.SessionDuration)

	// init handlers
	sessionHandlers := handlersSession.NewSessionHandler(logger, sessionRepository)
	productHandlers := handlersProduct.NewProductHandler(logger, catalogClient, searchService, producer)
	accountHandlers := handlersAccount.NewAccountHandler(logger, accountClient)
	cartHandlers := handlersCart.NewCartHandler(logger, registry, catalogClient, producer)

	// init router
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Корзина требует сессию посетителя
	cartRouter := r.PathPrefix("/api/cart").Subrouter()
	cartRouter.Use(middleware.Scope(sessionRepository, logger))

	cartRouter.HandleFunc("", cartHandlers.GetCart).Methods("GET")
	cartRouter.HandleFunc("", cartHandlers.ClearCart).Methods("DELETE")
	cartRouter.HandleFunc("/items", cartHandlers.AddItem).Methods("POST")
	cartRouter.HandleFunc("/items/{id}", cartHandlers.GetItem).Methods("GET")
	cartRouter.HandleFunc("/items/{id}", cartHandlers.UpdateItem).Methods("PUT")
	cartRouter.HandleFunc("/items/{id}", cartHandlers.RemoveItem).Methods("DELETE")
	cartRouter.HandleFunc("/checkout", cartHandlers.Checkout).Methods("POST")

	// Публичные ручки, сессия необязательна
	publicRouter := r.PathPrefix("/api").Subrouter()
	publicRouter.Use(middleware.OptionalScope(sessionRepository))

	publicRouter.HandleFunc("/session", sessionHandlers.Create).Methods("POST")

	publicRouter.HandleFunc("/products", productHandlers.List).Methods("GET")
	publicRouter.HandleFunc("/products/search", productHandlers.SearchProducts).Methods("GET")
	publicRouter.HandleFunc("/products/{id}", productHandlers.Get).Methods("GET")

	publicRouter.HandleFunc("/admin/login", accountHandlers.Login).Methods("POST")
	publicRouter.HandleFunc("/user/signup", accountHandlers.Signup).Methods("POST")

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
			logger.Warnf("error to shutdown server: %v", err)
		}
	}()

	logger.Infow("starting server",
		"type", "START",
		"addr", c.ServerPort,
		"cart_storage", c.CfgCart.Storage,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("can't start server: %v", err)
	}

	logger.Info("server stopped")
}
