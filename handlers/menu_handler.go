package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/models"
)

// GetMenu lists available dishes, optionally narrowed to one category or to
// the dishes scheduled for a given date.
func GetMenu(c *fiber.Ctx) error {
	query := database.DB.Model(&models.MenuItem{}).Where("available = ?", true)

	if category := c.Query("category"); category != "" {
		if category != "breakfast" && category != "lunch" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
		}
		query = query.Where("category = ?", category)
	}

	if day := c.Query("date"); day != "" {
		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		query = query.Where("id IN (?)", database.DB.
			Model(&models.MenuSchedule{}).
			Select("menu_item_id").
			Where("menu_date = ?", parsed))
	}

	var items []models.MenuItem
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load menu"})
	}
	return c.JSON(items)
}

// GetMenuCalendar returns the published schedule for the current week or
// month, grouped by date and meal type.
func GetMenuCalendar(c *fiber.Ctx) error {
	view := c.Query("view", "week")
	if view != "week" && view != "month" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid view, expected week or month"})
	}

	start := dateOnly(time.Now())
	var end time.Time
	if view == "week" {
		// Snap to Monday.
		offset := (int(start.Weekday()) + 6) % 7
		start = start.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	} else {
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
		end = start.AddDate(0, 1, 0)
	}

	var entries []models.MenuSchedule
	if err := database.DB.
		Preload("MenuItem").
		Where("menu_date >= ? AND menu_date < ?", start, end).
		Order("menu_date ASC, meal_type ASC").
		Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load menu calendar"})
	}

	days := make(map[string]fiber.Map)
	for _, e := range entries {
		key := e.MenuDate.Format("2006-01-02")
		day, ok := days[key]
		if !ok {
			day = fiber.Map{"date": key, "breakfast": []models.MenuItem{}, "lunch": []models.MenuItem{}}
			days[key] = day
		}
		items := day[e.MealType].([]models.MenuItem)
		day[e.MealType] = append(items, e.MenuItem)
	}

	out := make([]fiber.Map, 0, len(days))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if day, ok := days[d.Format("2006-01-02")]; ok {
			out = append(out, day)
		}
	}
	return c.JSON(fiber.Map{"view": view, "days": out})
}
