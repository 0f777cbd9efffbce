package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/models"
)

type UpdatePricingRequest struct {
	Breakfast *decimal.Decimal `json:"breakfast"`
	Lunch     *decimal.Decimal `json:"lunch"`
	Both      *decimal.Decimal `json:"both"`
}

// UpdatePricing stores the per-day subscription prices. Omitted fields keep
// their current value.
func UpdatePricing(c *fiber.Ctx) error {
	var req UpdatePricingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := map[string]*decimal.Decimal{
		"subscription_price_breakfast": req.Breakfast,
		"subscription_price_lunch":     req.Lunch,
		"subscription_price_both":      req.Both,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for key, value := range updates {
			if value == nil {
				continue
			}
			if value.IsNegative() {
				return errReviewStatus(fiber.StatusBadRequest, "Prices cannot be negative")
			}
			setting := models.Setting{Key: key, Value: value.String()}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var status *reviewStatusError
		if errors.As(err, &status) {
			return c.Status(status.code).JSON(fiber.Map{"error": status.msg})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update pricing"})
	}

	return GetPricing(c)
}

// GetStatistics aggregates the last 30 days of payments and canteen visits.
func GetStatistics(c *fiber.Ctx) error {
	since := dateOnly(time.Now()).AddDate(0, 0, -30)

	var payments struct {
		Total decimal.NullDecimal `json:"total"`
		Count int64               `json:"count"`
	}
	if err := database.DB.Model(&models.Payment{}).
		Select("SUM(amount) AS total, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Scan(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load statistics"})
	}

	type visitRow struct {
		MealType string `json:"meal_type"`
		Count    int64  `json:"count"`
	}
	var visits []visitRow
	if err := database.DB.Model(&models.MealClaim{}).
		Select("meal_type, COUNT(*) AS count").
		Where("claim_date >= ?", since).
		Group("meal_type").
		Scan(&visits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load statistics"})
	}

	var activeStudents int64
	if err := database.DB.Model(&models.MealClaim{}).
		Where("claim_date >= ?", since).
		Distinct("user_id").
		Count(&activeStudents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load statistics"})
	}

	total := decimal.Zero
	if payments.Total.Valid {
		total = payments.Total.Decimal
	}
	return c.JSON(fiber.Map{
		"payments":        fiber.Map{"total": total, "count": payments.Count},
		"visits":          visits,
		"active_students": activeStudents,
	})
}

// AttendanceToday counts distinct students served today, overall and per meal.
func AttendanceToday(c *fiber.Ctx) error {
	today := dateOnly(time.Now())

	counts := fiber.Map{}
	for label, meal := range map[string]string{"breakfast": "breakfast", "lunch": "lunch"} {
		var count int64
		if err := database.DB.Model(&models.MealClaim{}).
			Where("claim_date = ? AND meal_type = ?", today, meal).
			Distinct("user_id").
			Count(&count).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attendance"})
		}
		counts[label] = count
	}

	var total int64
	if err := database.DB.Model(&models.MealClaim{}).
		Where("claim_date = ?", today).
		Distinct("user_id").
		Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attendance"})
	}
	counts["total"] = total

	return c.JSON(counts)
}
