package jobs

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/models"
)

// CheckLowStock scans the inventory for products below their minimum quantity
// and posts one staff notification listing them. At most one notice per day.
func CheckLowStock() {
	log.Println("Running job: CheckLowStock...")

	var low []models.Product
	err := database.DB.
		Where("quantity < min_quantity").
		Order("name ASC").
		Find(&low).Error
	if err != nil {
		log.Printf("Error checking stock levels: %v", err)
		return
	}
	if len(low) == 0 {
		log.Println("No products below minimum stock.")
		return
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err = database.DB.Model(&models.Notification{}).
		Where("title = ? AND audience = ? AND created_at >= ?", "Low stock", "staff", today).
		Count(&count).Error
	if err != nil {
		log.Printf("Error checking existing low-stock notices: %v", err)
		return
	}
	if count > 0 {
		return
	}

	lines := make([]string, 0, len(low))
	for _, p := range low {
		lines = append(lines, fmt.Sprintf("%s: %s %s (min %s)", p.Name, p.Quantity, p.Unit, p.MinQuantity))
	}
	note := models.Notification{
		Title:    "Low stock",
		Message:  "Products below minimum: " + strings.Join(lines, "; ") + ".",
		Audience: "staff",
	}
	if err := database.DB.Create(&note).Error; err != nil {
		log.Printf("Error creating low-stock notification: %v", err)
		return
	}

	log.Printf("Low-stock notification posted for %d product(s).", len(low))
}
