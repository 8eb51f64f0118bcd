package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"pricingradar/aggregator"
	"pricingradar/cache"
	"pricingradar/config"
	"pricingradar/database"
	"pricingradar/handlers"
	"pricingradar/middleware"
	"pricingradar/notifier"
	"pricingradar/repository"
	"pricingradar/scheduler"
	"pricingradar/scraper"
	"pricingradar/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.CreateTables(db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Marketplace registry (built-ins plus optional YAML overrides)
	marketplaces, err := config.LoadMarketplaces(cfg.MarketplacesFile)
	if err != nil {
		log.Fatalf("Failed to load marketplace configs: %v", err)
	}

	// Initialize scrapers
	var scrapers []scraper.MarketplaceScraper
	if mc, ok := marketplaces["medsgo"]; ok && mc.Enabled {
		scrapers = append(scrapers, scraper.NewMedsGoScraper(mc))
	}
	if mc, ok := marketplaces["watsons"]; ok && mc.Enabled {
		watsons, err := scraper.NewWatsonsScraper(mc)
		if err != nil {
			log.Fatalf("Failed to create Watsons scraper: %v", err)
		}
		defer watsons.Close()
		scrapers = append(scrapers, watsons)
	}

	// Scan cache
	scanCache, err := cache.New(cfg.CacheDBPath, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to open scan cache: %v", err)
	}
	defer scanCache.Close()

	// Scan pipeline
	store := &services.RepositoryStore{Products: productRepo, History: historyRepo}
	thresholds := aggregator.Thresholds{
		DiscountPercent: cfg.DiscountAlertThreshold,
		VariancePercent: cfg.VarianceAlertThreshold,
		MaxAlerts:       cfg.MaxAlerts,
	}
	scanService := services.NewScanService(scrapers, marketplaces, store, scanCache, thresholds, cfg.BackfillDays)

	// Telegram alert pushes (optional)
	tgNotifier := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)

	// Initialize handlers
	h := handlers.NewHandlers(scanService, productRepo, historyRepo, cfg.TargetVariance)
	defer h.Close()

	// Scheduled scans
	scanScheduler := scheduler.NewScanScheduler(scanService, tgNotifier, cfg.ScanCron)
	scanScheduler.Start()
	defer scanScheduler.Stop()

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	// Health and monitoring endpoints
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/status", h.Status).Methods("GET")

	// API v1 routes
	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	// Scanning
	apiV1.HandleFunc("/scan", h.Scan).Methods("POST")
	apiV1.HandleFunc("/scan-async", h.ScanAsync).Methods("POST")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTask).Methods("GET")

	// Comparison dashboard
	apiV1.HandleFunc("/comparison", h.Comparison).Methods("GET")

	// Products and history
	apiV1.HandleFunc("/products", h.GetProducts).Methods("GET")
	apiV1.HandleFunc("/products/{id}/history", h.GetPriceHistory).Methods("GET")
	apiV1.HandleFunc("/products/{id}/forecast", h.Forecast).Methods("GET")

	// Synthetic history for fresh databases
	apiV1.HandleFunc("/backfill", h.Backfill).Methods("POST")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📋 API endpoints:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /status - Detailed status")
	log.Printf("   POST /api/v1/scan - Run a market scan")
	log.Printf("   POST /api/v1/scan-async - Queue an async scan")
	log.Printf("   GET  /api/v1/tasks/{taskId} - Async scan status")
	log.Printf("   GET  /api/v1/comparison - Comparison groups, alerts, stats")
	log.Printf("   GET  /api/v1/products - Known products")
	log.Printf("   GET  /api/v1/products/{id}/history - Price history")
	log.Printf("   GET  /api/v1/products/{id}/forecast - Pricing suggestion")
	log.Printf("   POST /api/v1/backfill - Generate synthetic history")

	// Start server
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}
