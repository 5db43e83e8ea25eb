package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/coderarham/storefront/internal/cache"
	"github.com/coderarham/storefront/internal/catalog"
	"github.com/coderarham/storefront/internal/gateway"
	h "github.com/coderarham/storefront/internal/http"
	"github.com/coderarham/storefront/internal/orders"
	"github.com/coderarham/storefront/internal/poller"
	"github.com/coderarham/storefront/internal/publisher"
	"github.com/coderarham/storefront/internal/repository"
	"github.com/coderarham/storefront/internal/service"
	"github.com/coderarham/storefront/internal/sheets"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	CatalogDBPath         string
	CatalogMigrationsPath string

	OrdersDB *orders.Credentials

	KafkaBrokers []string

	RazorpayBaseURL   string
	RazorpayKeyID     string
	RazorpayKeySecret string

	SheetsBaseURL  string
	SheetsAPIKey   string
	SpreadsheetID  string
	SheetReadRange string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),

		OrdersDB: &orders.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              5432,
			User:              getEnv("POSTGRES_USER", "storefront"),
			Password:          getEnv("POSTGRES_PASSWORD", "storefront"),
			DBName:            getEnv("POSTGRES_DB", "storefront"),
			MigrationsDirPath: getEnv("ORDERS_MIGRATIONS_PATH", "./internal/orders/migrations"),
		},

		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),

		SheetsBaseURL:  getEnv("SHEETS_BASE_URL", sheets.DefaultBaseURL),
		SheetsAPIKey:   getEnv("SHEETS_API_KEY", ""),
		SpreadsheetID:  getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetReadRange: getEnv("SHEETS_READ_RANGE", "Inventory!A1:C100"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart store (MongoDB)
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cartRepo := repository.NewMongoRepository(mongoDB)
	if err := cartRepo.(interface {
		CreateIndexes(ctx context.Context) error
	}).CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// Cart cache (Redis)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	cartCache := cache.NewRedisCache(redisClient)

	cartService := service.NewCartService(cartRepo, cartCache)

	// Product catalog (sqlite)
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Orders store (Postgres) + outbox
	ordersRepo, err := orders.NewRepository(cfg.OrdersDB)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(cfg.OrdersDB); err != nil {
		log.Fatalf("Failed to run orders migrations: %v", err)
	}

	// Payment gateway
	gw := gateway.NewClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// Inventory feed
	stockService := sheets.NewService(cfg.SheetsBaseURL, cfg.SheetsAPIKey, cfg.SpreadsheetID, cfg.SheetReadRange)

	// Background workers: outbox -> kafka, kafka -> cart clear
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	outboxPoller := publisher.NewOutboxPoller(ordersRepo, cfg.KafkaBrokers...)
	defer outboxPoller.Close()
	go outboxPoller.Run(workerCtx)

	cartClearPoller := poller.NewPoller(cartRepo, cartCache, cfg.KafkaBrokers...)
	defer cartClearPoller.Close()
	go cartClearPoller.Run(workerCtx)

	// Handlers
	cartHandler := h.NewCartHandler(cartService, catalogRepo, cfg.RequestTimeout)
	paymentHandler := h.NewPaymentHandler(gw, cartService, ordersRepo, cfg.RequestTimeout)
	productsHandler := h.NewProductsHandler(catalogRepo, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(ordersRepo, cfg.RequestTimeout)
	inventoryHandler := h.NewInventoryHandler(stockService, cfg.RequestTimeout)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.MockAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/{userID}", cartHandler.GetCart)
			r.Get("/{userID}/quote", cartHandler.GetQuote)
			r.Post("/add", cartHandler.AddItem)
			r.Put("/update", cartHandler.UpdateQuantity)
			r.Delete("/remove", cartHandler.RemoveItem)
			r.Delete("/clear/{userID}", cartHandler.ClearCart)
		})
		r.Route("/payment", func(r chi.Router) {
			r.Post("/create-order", paymentHandler.CreateOrder)
			r.Post("/verify", paymentHandler.Verify)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productsHandler.List)
			r.Get("/{productID}", productsHandler.Get)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/{userID}", ordersHandler.ListByUser)
			r.Get("/id/{orderID}", ordersHandler.GetByID)
		})
		r.Get("/inventory", inventoryHandler.List)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}

	log.Println("server exited")
}
