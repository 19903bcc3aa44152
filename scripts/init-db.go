package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"order_manager/internal/config"
	"order_manager/internal/database"
	"order_manager/internal/migrations"
	"order_manager/internal/models"
)

// Standalone bootstrap: drops and recreates the schema, then reseeds
// the menu catalog. Run with: go run scripts/init-db.go
func main() {
	fmt.Println("Initializing database...")

	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.Order{},
		&models.MenuItem{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	fmt.Println("Creating tables and seeding menu...")
	if err := migrations.RunMigrations(db, logger); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("Database initialized successfully!")
}
