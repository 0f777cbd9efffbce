package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
)

// The fixed allergen vocabulary students can register.
var allowedAllergens = []string{
	"milk", "eggs", "gluten", "nuts", "peanuts", "fish", "shellfish", "soy", "sesame",
}

func isAllowedAllergen(a string) bool {
	for _, allowed := range allowedAllergens {
		if a == allowed {
			return true
		}
	}
	return false
}

func ListAllowedAllergens(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"allergens": allowedAllergens})
}

func ListAllergies(c *fiber.Ctx) error {
	var allergies []models.Allergy
	if err := database.DB.
		Where("user_id = ?", middleware.CurrentUserID(c)).
		Order("allergen ASC").
		Find(&allergies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load allergies"})
	}
	return c.JSON(allergies)
}

type AddAllergyRequest struct {
	Allergen string `json:"allergen" validate:"required"`
}

func AddAllergy(c *fiber.Ctx) error {
	var req AddAllergyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	allergen := strings.ToLower(strings.TrimSpace(req.Allergen))
	if !isAllowedAllergen(allergen) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown allergen"})
	}

	allergy := models.Allergy{
		UserID:   middleware.CurrentUserID(c),
		Allergen: allergen,
	}
	if err := database.DB.Create(&allergy).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Allergen already registered"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add allergy"})
	}
	return c.Status(fiber.StatusCreated).JSON(allergy)
}

func DeleteAllergy(c *fiber.Ctx) error {
	allergyID, err := uuid.Parse(c.Params("allergyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid allergy id"})
	}

	result := database.DB.
		Where("id = ? AND user_id = ?", allergyID, middleware.CurrentUserID(c)).
		Delete(&models.Allergy{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete allergy"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Allergy not found"})
	}
	return c.JSON(fiber.Map{"message": "Allergy removed"})
}
