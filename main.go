package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api/middleware"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/cache"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/db"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/email"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

// backend groups the storage-facing services for the configured STORE_BACKEND.
// catalog always reads the current listing; cachedCatalog may serve data up to
// PROPERTY_CACHE_TTL_SECONDS old and is only for display and fallback lookups.
type backend struct {
	store         services.IInquiryStore
	catalog       services.IPropertyCatalog
	cachedCatalog services.IPropertyCatalog
	users         services.IUserDirectory
	templates     services.IEmailTemplateService
	close         func()
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Cache (Redis); it also backs the task queue
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	be, err := openBackend(cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize %s backend: %v", cfg.StoreBackend, err)
	}
	defer be.close()

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if cfg.MockServices {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient)
	} else {
		log.Println("MOCK_SERVICES disabled or not set: Using SMTP/Logging email sender.")
		primaryEmailSender = email.NewSMTPSender(cfg)
	}
	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)
	if cfg.LogEmailsPath != "" {
		log.Printf("LOG_EMAILS set to '%s', enabling file email logger.", cfg.LogEmailsPath)
		fileSender, err := email.NewFileEmailSender(cfg.LogEmailsPath)
		if err != nil {
			log.Printf("WARN: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", cfg.LogEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
		}
	}

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	var mockEmailClient *redis.Client
	if cfg.MockServices {
		mockEmailClient = redisClient
	}
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(cfg, mockEmailClient, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Service API listening on :%s", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		log.Println("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var rateLimiter *middleware.RateLimiterMiddleware
	var backgroundTaskSrv *asynq.Server

	log.Printf("Starting application in '%s' mode (store: %s)...", cfg.RunMode, cfg.StoreBackend)

	apiMode := func() {
		rateLimiter = middleware.NewRateLimiterMiddleware(cfg)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: api.SetupRouter(cfg, newAPIServices(cfg, be, taskClient), rateLimiter),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("Main API listening on :%s", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			log.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		processor := tasks.NewTaskProcessor(cfg, compositeSender, be.templates)
		srv, mux := tasks.SetupServer(redisClient, processor)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Background task server starting...")
			if err := srv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			log.Println("Background task server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal: %s. Shutting down gracefully...", sig)
	case <-shutdownChan:
		log.Println("Shutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}
	if rateLimiter != nil {
		rateLimiter.Close()
	}
	if backgroundTaskSrv != nil {
		// Run returns once Shutdown has drained in-flight tasks.
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	fmt.Println("Server gracefully stopped")
}

// newAPIServices builds the public API services. The submission gate checks
// listing status and ownership, so it reads the uncached catalog.
func newAPIServices(cfg *config.Config, be *backend, enqueuer tasks.Enqueuer) api.Services {
	return api.Services{
		Submission:  services.NewSubmissionService(be.store, be.catalog, be.users),
		Negotiation: services.NewNegotiationService(be.store, be.cachedCatalog),
		Notifier:    tasks.NewInquiryNotifier(enqueuer, be.users, be.cachedCatalog, cfg),
	}
}

// openBackend wires the inquiry store, property catalog, user directory and
// template source for cfg.StoreBackend.
func openBackend(cfg *config.Config, redisClient *redis.Client) (*backend, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		catalog := services.NewMemoryPropertyCatalog()
		users := services.NewMemoryUserDirectory()
		if cfg.MemorySeedFile != "" {
			seed, err := services.LoadMemorySeed(cfg.MemorySeedFile)
			if err != nil {
				return nil, err
			}
			for _, p := range seed.Properties {
				catalog.Put(p)
			}
			for _, u := range seed.Users {
				users.Put(u)
			}
			log.Printf("Loaded %d users and %d properties from %s", len(seed.Users), len(seed.Properties), cfg.MemorySeedFile)
		} else {
			log.Println("WARN: memory backend without MEMORY_SEED_FILE; every submission will fail lookups")
		}
		return &backend{
			store:         services.NewMemoryInquiryStore(),
			catalog:       catalog,
			cachedCatalog: catalog,
			users:         users,
			templates:     services.NewEmailTemplateService(nil),
			close:         func() {},
		}, nil

	default:
		mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
		if err != nil {
			return nil, err
		}
		store := services.NewMongoInquiryStore(mongoDb, cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = db.DisconnectDB(mongoClient)
			return nil, fmt.Errorf("ensure inquiry indexes: %w", err)
		}
		catalog := services.NewMongoPropertyCatalog(mongoDb)
		return &backend{
			store:         store,
			catalog:       catalog,
			cachedCatalog: services.NewCachedPropertyCatalog(catalog, redisClient, cfg.PropertyCacheTTL),
			users:         services.NewMongoUserDirectory(mongoDb),
			templates:     services.NewEmailTemplateService(mongoDb),
			close: func() {
				if err := db.DisconnectDB(mongoClient); err != nil {
					log.Printf("Error disconnecting from MongoDB: %v", err)
				}
			},
		}, nil
	}
}
