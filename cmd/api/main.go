package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/config"
	"concerthub-api/internal/events"
	"concerthub-api/internal/fragment"
	"concerthub-api/internal/handler"
	"concerthub-api/internal/kvstore"
	"concerthub-api/internal/middleware"
	"concerthub-api/internal/model"
	"concerthub-api/internal/router"
	"concerthub-api/internal/service"
	"concerthub-api/internal/storage"
	"concerthub-api/internal/view"
	"concerthub-api/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ConcertHub API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Type, err)
	}
	defer backend.Close()
	log.Printf("%s store initialized", cfg.Store.Type)

	// Catalog
	items, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	cat := catalog.New(items)
	log.Printf("Catalog loaded: %d concerts", cat.Len())

	// Initialize services
	broker := events.NewBroker(16)
	state := service.NewState(cat, storage.New(backend), broker, service.Options{
		NotificationCapacity: cfg.App.NotificationCapacity,
		SessionTTL:           cfg.Session.TTL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := state.Load(ctx); err != nil {
		log.Printf("Warning: state load incomplete: %v", err)
	}
	cancel()

	// Fragments
	var source fragment.Source = fragment.NewFSSource(web.FragmentsFS())
	if cfg.Fragment.BaseURL != "" {
		httpSource, err := fragment.NewHTTPSource(cfg.Fragment.BaseURL, cfg.Fragment.Timeout)
		if err != nil {
			log.Fatalf("Invalid FRAGMENT_BASE_URL: %v", err)
		}
		source = httpSource
		log.Printf("Fragments served from %s", cfg.Fragment.BaseURL)
	}
	loader := fragment.NewLoader(source)
	loader.Debug = cfg.App.Debug
	view.Register(loader, state)

	layout, err := view.LoadLayout(web.LayoutFS())
	if err != nil {
		log.Fatalf("Failed to load layout: %v", err)
	}

	// Expired sessions
	var cleanup *service.CleanupScheduler
	if sweeper, ok := backend.(kvstore.Sweeper); ok {
		cleanupCfg := service.DefaultCleanupConfig()
		cleanupCfg.CleanupInterval = cfg.Store.SweepInterval
		cleanup = service.NewCleanupScheduler(sweeper, cleanupCfg)
		cleanup.Start()
	}

	// Initialize handlers
	r := router.New(router.Config{
		Handler:             handler.New(backend, cfg.Store.Type, cfg.App.Version, cat.Len),
		ConcertHandler:      handler.NewConcertHandler(state),
		WishlistHandler:     handler.NewWishlistHandler(state),
		OrderHandler:        handler.NewOrderHandler(state),
		NotificationHandler: handler.NewNotificationHandler(state),
		SettingsHandler:     handler.NewSettingsHandler(state),
		CheckoutHandler:     handler.NewCheckoutHandler(state),
		EventsHandler:       handler.NewEventsHandler(broker),
		AdminHandler:        handler.NewAdminHandler(state, backend, broker, cfg.Store.Type),
		ViewHandler:         handler.NewViewHandler(loader, layout),
		SessionMiddleware: middleware.NewSessionMiddleware(middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     !cfg.App.IsDevelopment(),
		}),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if cleanup != nil {
		cleanup.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

// openBackend selects the key-value store named by STORE_TYPE.
func openBackend(cfg *config.Config) (kvstore.Backend, error) {
	switch cfg.Store.Type {
	case "memory":
		return kvstore.NewMemoryBackend(), nil
	case "postgres", "postgresql":
		return kvstore.OpenSQL(kvstore.DialectPostgres, cfg.SQL.PostgresDSN())
	case "mysql":
		return kvstore.OpenSQL(kvstore.DialectMySQL, cfg.SQL.MySQLDSN())
	case "redis":
		return kvstore.NewRedisBackend(kvstore.RedisConfig{
			Addr:      cfg.Redis.Address(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	case "mongodb", "mongo":
		return kvstore.NewMongoBackend(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
		return kvstore.OpenSQLite(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown STORE_TYPE %q", cfg.Store.Type)
	}
}

func loadCatalog(path string) ([]model.Item, error) {
	if path == "" {
		return catalog.DefaultItems()
	}
	return catalog.LoadFile(path)
}
