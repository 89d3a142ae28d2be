package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/coursebridge/api/database"
	"github.com/coursebridge/api/handlers/ingest"
	"github.com/coursebridge/api/services"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if len(os.Args) < 2 {
		log.Fatal("Usage: import <equivalencies.csv>")
	}

	// Initialize database connection using GORM
	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to initialize database tables: %v", err)
	}

	gormDB := store.GetDB().(*gorm.DB)

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open %s: %v", os.Args[1], err)
	}
	defer file.Close()

	records, err := ingest.ParseCSV(file)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", os.Args[1], err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("CourseBridge - Equivalency Import")
	fmt.Println(separator)
	fmt.Println()

	catalogService := services.NewCatalogService(gormDB)
	ingestService := services.NewIngestService(gormDB, catalogService, nil)

	result, err := ingestService.Ingest(context.Background(), records)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Batch %s finished\n", result.BatchID)
	fmt.Printf("  Accepted: %d\n", result.Accepted)
	fmt.Printf("  Skipped:  %d\n", result.Skipped)
	fmt.Println()
	fmt.Println(separator)
	fmt.Println("Import completed successfully!")
	fmt.Println(separator)
}
