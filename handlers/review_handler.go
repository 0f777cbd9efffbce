package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
)

type CreateReviewRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string   `json:"comment"`
}

func CreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var dish models.MenuItem
	if err := database.DB.First(&dish, "id = ?", req.MenuItemID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Dish not found"})
	}

	review := models.Review{
		UserID:     middleware.CurrentUserID(c),
		MenuItemID: req.MenuItemID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := database.DB.Create(&review).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create review"})
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func ListReviews(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Review{})
	if dishID := c.Query("menu_item_id"); dishID != "" {
		parsed, err := uuid.Parse(dishID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid menu item id"})
		}
		query = query.Where("menu_item_id = ?", parsed)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").Limit(100).Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load reviews"})
	}
	return c.JSON(reviews)
}
