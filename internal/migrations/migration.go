package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"order_manager/internal/models"
	"order_manager/internal/repository"
)

// RunMigrations creates the schema and seeds the menu catalog.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	err := db.AutoMigrate(
		&models.Order{},
		&models.MenuItem{},
	)
	if err != nil {
		return err
	}

	if err := seedMenu(db, logger); err != nil {
		logger.Warn("failed to seed menu catalog", zap.Error(err))
	}
	return nil
}

// seedMenu inserts the starter catalog, but only into an empty table.
func seedMenu(db *gorm.DB, logger *zap.Logger) error {
	menuRepo := repository.NewMenuRepository(db)

	count, err := menuRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("menu catalog already seeded")
		return nil
	}

	foodItems := []models.MenuItem{
		{Name: "Nem chua", Category: "ĐỒ ĂN", Price: 36000, Description: "36k/10c"},
		{Name: "Nem cối", Category: "ĐỒ ĂN", Price: 25000},
		{Name: "Nem cối bigsize", Category: "ĐỒ ĂN", Price: 40000},
	}

	drinkItems := []models.MenuItem{
		{Name: "Trà chanh", Category: "ĐỒ UỐNG", Price: 10000},
		{Name: "Trà quất", Category: "ĐỒ UỐNG", Price: 10000},
		{Name: "Trà tắc dứa", Category: "ĐỒ UỐNG", Price: 15000},
		{Name: "Trà táo xanh", Category: "ĐỒ UỐNG", Price: 15000},
		{Name: "Soda việt quất", Category: "ĐỒ UỐNG", Price: 10000},
		{Name: "Soda dứa", Category: "ĐỒ UỐNG", Price: 10000},
		{Name: "Soda táo xanh", Category: "ĐỒ UỐNG", Price: 10000},
		{Name: "Trà việt quất", Category: "ĐỒ UỐNG", Price: 15000},
		{Name: "Trà lài vải", Category: "ĐỒ UỐNG", Price: 15000},
		{Name: "Soda vải", Category: "ĐỒ UỐNG", Price: 10000},
	}

	for _, item := range append(foodItems, drinkItems...) {
		item := item
		if err := menuRepo.Create(&item); err != nil {
			return err
		}
	}

	logger.Info("menu catalog seeded")
	return nil
}
