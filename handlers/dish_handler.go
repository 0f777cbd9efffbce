package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/models"
)

// ListDishes returns every dish with its recipe lines, for the cook's
// dish-management screen.
func ListDishes(c *fiber.Ctx) error {
	var dishes []models.MenuItem
	if err := database.DB.
		Preload("RecipeLines").
		Preload("RecipeLines.Product").
		Order("category ASC, name ASC").
		Find(&dishes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dishes"})
	}
	return c.JSON(dishes)
}

type RecipeLineInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

type CreateDishRequest struct {
	Name        string            `json:"name" validate:"required,min=2,max=255"`
	Category    string            `json:"category" validate:"required,oneof=breakfast lunch"`
	Price       decimal.Decimal   `json:"price" validate:"required"`
	Description *string           `json:"description"`
	Allergens   *string           `json:"allergens"`
	Ingredients []RecipeLineInput `json:"ingredients"`
}

// CreateDish adds a dish together with its recipe. Repeated (product) entries
// in the payload collapse to the last quantity, matching the unique
// (dish, product) pair in the recipe table.
func CreateDish(c *fiber.Ctx) error {
	var req CreateDishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !req.Price.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price must be greater than 0"})
	}

	lines := make(map[uuid.UUID]decimal.Decimal, len(req.Ingredients))
	order := make([]uuid.UUID, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if !ing.Quantity.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ingredient quantity must be greater than 0"})
		}
		if _, seen := lines[ing.ProductID]; !seen {
			order = append(order, ing.ProductID)
		}
		lines[ing.ProductID] = ing.Quantity
	}

	dish := models.MenuItem{
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Allergens:   req.Allergens,
		Available:   true,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dish).Error; err != nil {
			return err
		}
		for _, productID := range order {
			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errReviewStatus(fiber.StatusBadRequest, "Unknown ingredient product")
				}
				return err
			}
			line := models.RecipeLine{
				MenuItemID: dish.ID,
				ProductID:  productID,
				Quantity:   lines[productID],
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A dish with this name already exists in the category"})
		}
		var status *reviewStatusError
		if errors.As(err, &status) {
			return c.Status(status.code).JSON(fiber.Map{"error": status.msg})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create dish"})
	}

	return c.Status(fiber.StatusCreated).JSON(dish)
}

type ToggleAvailabilityRequest struct {
	Available *bool `json:"available"`
}

// ToggleDishAvailability flips the available flag, or sets it explicitly when
// the body carries a value.
func ToggleDishAvailability(c *fiber.Ctx) error {
	dishID, err := uuid.Parse(c.Params("dishId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid dish id"})
	}

	var req ToggleAvailabilityRequest
	_ = c.BodyParser(&req)

	var dish models.MenuItem
	if err := database.DB.First(&dish, "id = ?", dishID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Dish not found"})
	}

	next := !dish.Available
	if req.Available != nil {
		next = *req.Available
	}
	if err := database.DB.Model(&dish).Update("available", next).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update dish"})
	}

	return c.JSON(fiber.Map{"id": dish.ID, "available": next})
}
