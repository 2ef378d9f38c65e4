package migrations

import (
	"log"

	"order_manager/internal/models"
	"order_manager/internal/repository"

	"gorm.io/gorm"
)

// RunMigrations drops and recreates all tables, then seeds sample data.
// Destructive; meant for the init-db script, not for server startup.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	log.Println("Dropping existing tables...")
	err := db.Migrator().DropTable(
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	log.Println("Creating tables...")
	err = db.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return err
	}

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds a starter product catalog so a fresh install
// has something to order.
func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	productRepo := repository.NewProductRepository(db)

	if _, err := productRepo.GetByName("Rice"); err == nil {
		log.Println("Default products already exist")
		return nil
	}

	defaults := []models.Product{
		{Name: "Rice", UnitPrice: 50},
		{Name: "Tea", UnitPrice: 20},
		{Name: "Sugar", UnitPrice: 35},
	}
	for i := range defaults {
		if err := productRepo.Create(&defaults[i]); err != nil {
			log.Printf("Warning: Failed to create product %q: %v", defaults[i].Name, err)
		}
	}

	log.Println("Default data created successfully!")
	return nil
}
