package router

import (
	"log"
	"os"

	"github.com/coursebridge/api/config"
	"github.com/coursebridge/api/database"
	"github.com/coursebridge/api/handlers"
	catalog_handlers "github.com/coursebridge/api/handlers/catalog"
	equivalency_handlers "github.com/coursebridge/api/handlers/equivalency"
	ingest_handlers "github.com/coursebridge/api/handlers/ingest"
	plan_handlers "github.com/coursebridge/api/handlers/plan"
	"github.com/coursebridge/api/services"
	"github.com/coursebridge/api/services/storage"
	"github.com/coursebridge/api/utils/cache"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis is optional; equivalency reads fall back to the database
	var redisCache *cache.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Continuing without read cache.", err)
			redisCache = nil
		}
	}

	// Initialize services
	catalogService := services.NewCatalogService(db)
	planService := services.NewPlanService(db)
	equivalencyService := services.NewEquivalencyService(db, redisCache)
	ingestService := services.NewIngestService(db, catalogService, redisCache)

	// The import archive is optional; without a bucket raw feeds are not kept
	var archiveClient *storage.ArchiveClient
	if getEnv, err := config.Get(); err == nil && getEnv.ARCHIVE_BUCKET != "" {
		archiveClient, err = storage.NewArchiveClient(storage.ArchiveConfig{
			AccessKey: getEnv.ARCHIVE_ACCESS_KEY,
			SecretKey: getEnv.ARCHIVE_SECRET_KEY,
			Bucket:    getEnv.ARCHIVE_BUCKET,
			Region:    getEnv.ARCHIVE_REGION,
			Endpoint:  getEnv.ARCHIVE_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: import archive disabled: %v", err)
			archiveClient = nil
		}
	}

	// Initialize handlers
	catalogHandler := catalog_handlers.NewCatalogHandler(catalogService, planService)
	equivalencyHandler := equivalency_handlers.NewEquivalencyHandler(equivalencyService)
	planHandler := plan_handlers.NewPlanHandler(planService)
	importHandler := ingest_handlers.NewImportHandler(ingestService, archiveClient)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 routes
	v1 := app.Group("/api/v1")

	// Catalog browsing
	v1.Get("/institutions", catalogHandler.ListInstitutions)
	v1.Get("/departments", catalogHandler.ListDepartments)
	v1.Get("/courses", catalogHandler.ListCourses)

	// Equivalency lookups
	v1.Get("/equivalents", equivalencyHandler.GetEquivalents)
	v1.Post("/equivalents/search", equivalencyHandler.SearchEquivalents)

	// Transfer plans
	v1.Post("/plans", planHandler.CreatePlan)
	v1.Get("/plans/:code", planHandler.GetPlan)

	// Bulk import
	v1.Post("/import", importHandler.ImportCSV)
}
