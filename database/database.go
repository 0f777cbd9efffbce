package database

import (
	"fmt"
	"log"

	config "github.com/avdonin/school_canteen/configs"
	"github.com/avdonin/school_canteen/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		DisableForeignKeyConstraintWhenMigrating: true,
		// Unique-index violations must come back as gorm.ErrDuplicatedKey so the
		// settlement layer can map them to "already claimed".
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Payment{},
		&models.MenuItem{},
		&models.RecipeLine{},
		&models.Product{},
		&models.MealClaim{},
		&models.MenuSchedule{},
		&models.Notification{},
		&models.NotificationRead{},
		&models.PurchaseRequest{},
		&models.Review{},
		&models.Allergy{},
		&models.Setting{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminUsername := config.Config("ADMIN_USERNAME")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var count int64
	if err := DB.Model(&models.User{}).Where("username = ?", adminUsername).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}
	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		Username: adminUsername,
		Password: string(hashedPassword),
		FullName: "Administrator",
		Role:     "admin",
	}
	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
