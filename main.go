// Package main provides the main entry point for the ParqHive pricing service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/parqhive/pricing-service/app/handlers"
	"github.com/parqhive/pricing-service/app/middleware"
	"github.com/parqhive/pricing-service/app/router"
	"github.com/parqhive/pricing-service/app/services"
	businessflow "github.com/parqhive/pricing-service/business_flow"
	"github.com/parqhive/pricing-service/config"
	"github.com/parqhive/pricing-service/models"
	"github.com/parqhive/pricing-service/repository"
	"github.com/parqhive/pricing-service/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting ParqHive pricing service...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Keep the schema current
	if err := db.AutoMigrate(
		&models.HierarchyNode{},
		&models.PricingConfig{},
		&models.VehicleTypeRate{},
		&models.TimeBasedRate{},
		&models.HolidayRate{},
		&models.DiscountConfiguration{},
		&models.PricingAuditLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Bootstrap a demo hierarchy when configured
	if err := ensureSeedHierarchy(db, cfg); err != nil {
		return nil, err
	}

	// Initialize repositories
	nodeRepo := repository.NewHierarchyNodeRepository(db)
	configRepo := repository.NewPricingConfigRepository(db)
	discountRepo := repository.NewDiscountConfigurationRepository(db)
	auditRepo := repository.NewPricingAuditLogRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	inheritanceFlow := businessflow.NewPricingInheritanceFlow(
		nodeRepo,
		configRepo,
		auditRepo,
		db,
		rc,
		cfg.Pricing,
	)

	pricingFlow := businessflow.NewPricingFlow(
		nodeRepo,
		configRepo,
		auditRepo,
		db,
		rc,
		cfg.Pricing,
	)

	quoteFlow := businessflow.NewQuoteFlow(inheritanceFlow, discountRepo)

	discountFlow := businessflow.NewDiscountFlow(discountRepo, auditRepo)

	// Initialize handlers
	pricingHandler := handlers.NewPricingHandler(inheritanceFlow, pricingFlow, quoteFlow)
	discountHandler := handlers.NewDiscountHandler(discountFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		pricingHandler,
		discountHandler,
		authMiddleware,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureSeedHierarchy bootstraps a demo location tree on an empty database.
// Seeding is idempotent; a location with the configured name short-circuits.
func ensureSeedHierarchy(db *gorm.DB, cfg *config.ProductionConfig) error {
	if !cfg.Seed.Enabled {
		return nil
	}

	ctx := context.Background()
	nodeRepo := repository.NewHierarchyNodeRepository(db)
	auditRepo := repository.NewPricingAuditLogRepository(db)

	existing, err := nodeRepo.ByFilter(ctx, models.HierarchyNodeFilter{
		Level: utils.ToPtr(models.HierarchyLevelLocation),
		Name:  utils.ToPtr(cfg.Seed.LocationName),
	}, "id ASC", 1, 0)
	if err != nil {
		return fmt.Errorf("failed to check for existing seed hierarchy: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	var created int
	err = repository.WithTransaction(ctx, db, func(txCtx context.Context) error {
		location := &models.HierarchyNode{
			Level: models.HierarchyLevelLocation,
			Name:  cfg.Seed.LocationName,
		}
		if err := nodeRepo.Save(txCtx, location); err != nil {
			return err
		}
		created++

		for s := 1; s <= cfg.Seed.Sections; s++ {
			section := &models.HierarchyNode{
				Level:    models.HierarchyLevelSection,
				Name:     fmt.Sprintf("Section %d", s),
				ParentID: &location.ID,
			}
			if err := nodeRepo.Save(txCtx, section); err != nil {
				return err
			}
			created++

			for z := 1; z <= cfg.Seed.ZonesPerSect; z++ {
				zone := &models.HierarchyNode{
					Level:    models.HierarchyLevelZone,
					Name:     fmt.Sprintf("Zone %d-%d", s, z),
					ParentID: &section.ID,
				}
				if err := nodeRepo.Save(txCtx, zone); err != nil {
					return err
				}
				created++

				for p := 1; p <= cfg.Seed.SpotsPerZone; p++ {
					spot := &models.HierarchyNode{
						Level:    models.HierarchyLevelSpot,
						Name:     fmt.Sprintf("Spot %d-%d-%d", s, z, p),
						ParentID: &zone.ID,
					}
					if err := nodeRepo.Save(txCtx, spot); err != nil {
						return err
					}
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed hierarchy: %w", err)
	}

	entry := &models.PricingAuditLog{
		Action:    models.AuditActionHierarchySeeded,
		Success:   utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
	}
	if err := auditRepo.Save(ctx, entry); err != nil {
		log.Printf("Failed to write seed audit log: %v", err)
	}

	log.Printf("Seeded demo hierarchy %q with %d nodes", cfg.Seed.LocationName, created)
	return nil
}
