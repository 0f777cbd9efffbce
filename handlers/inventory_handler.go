package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
)

func ListProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := database.DB.Order("name ASC").Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load products"})
	}
	return c.JSON(products)
}

type PurchaseRequestInput struct {
	ProductID     *uuid.UUID       `json:"product_id"`
	ProductName   string           `json:"product_name"`
	Unit          string           `json:"unit"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"required"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	Reason        *string          `json:"reason"`
}

// CreatePurchaseRequest files a restock request for an existing product or a
// free-form (name, unit) pair.
func CreatePurchaseRequest(c *fiber.Ctx) error {
	var req PurchaseRequestInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if !req.Quantity.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity must be greater than 0"})
	}

	cost := decimal.Zero
	if req.EstimatedCost != nil {
		if req.EstimatedCost.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Estimated cost cannot be negative"})
		}
		cost = *req.EstimatedCost
	}

	productID := req.ProductID
	productName := strings.TrimSpace(req.ProductName)
	unit := strings.TrimSpace(req.Unit)

	if productID != nil {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", *productID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
		}
		productName = product.Name
		unit = product.Unit
	} else {
		if productName == "" || unit == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Pick a product or provide a name and unit"})
		}
		var product models.Product
		if err := database.DB.Where("name = ? AND unit = ?", productName, unit).First(&product).Error; err == nil {
			productID = &product.ID
		}
	}

	request := models.PurchaseRequest{
		ProductID:     productID,
		ProductName:   productName,
		Unit:          unit,
		Quantity:      req.Quantity,
		EstimatedCost: cost,
		Reason:        req.Reason,
		Status:        "pending",
		RequestedBy:   middleware.CurrentUserID(c),
	}
	if err := database.DB.Create(&request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create purchase request"})
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// ListPurchaseRequests shows the cook their own requests and the admin all of
// them.
func ListPurchaseRequests(c *fiber.Ctx) error {
	query := database.DB.Model(&models.PurchaseRequest{}).Order("created_at DESC")
	if middleware.CurrentRole(c) != "admin" {
		query = query.Where("requested_by = ?", middleware.CurrentUserID(c))
	}

	var requests []models.PurchaseRequest
	if err := query.Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load purchase requests"})
	}
	return c.JSON(requests)
}

type ReviewPurchaseRequestInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ReviewPurchaseRequest approves or rejects a pending request. Approval
// increments the product's stock inside the same transaction, creating the
// product first when the request was free-form.
func ReviewPurchaseRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request id"})
	}

	var input ReviewPurchaseRequestInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	reviewerID := middleware.CurrentUserID(c)
	now := time.Now()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var request models.PurchaseRequest
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errReviewStatus(fiber.StatusNotFound, "Purchase request not found")
			}
			return err
		}
		if request.Status != "pending" {
			return errReviewStatus(fiber.StatusBadRequest, "Purchase request already reviewed")
		}

		if input.Status == "approved" {
			product, err := resolveRequestProduct(tx, &request)
			if err != nil {
				return err
			}
			if product.Unit != request.Unit {
				return errReviewStatus(fiber.StatusBadRequest,
					fmt.Sprintf("Unit mismatch: product uses %s, request uses %s", product.Unit, request.Unit))
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", request.Quantity),
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
			request.ProductID = &product.ID
		}

		request.Status = input.Status
		request.ReviewedBy = &reviewerID
		request.ReviewedAt = &now
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		action := "approved"
		if input.Status == "rejected" {
			action = "rejected"
		}
		note := models.Notification{
			Title:       "Purchase request",
			Message:     fmt.Sprintf("Your request was %s: %s — %s %s.", action, request.ProductName, request.Quantity, request.Unit),
			Audience:    "staff",
			RecipientID: &request.RequestedBy,
			CreatedBy:   &reviewerID,
		}
		return tx.Create(&note).Error
	})
	if err != nil {
		var status *reviewStatusError
		if errors.As(err, &status) {
			return c.Status(status.code).JSON(fiber.Map{"error": status.msg})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to review purchase request"})
	}

	return c.JSON(fiber.Map{"message": "Purchase request reviewed"})
}

type reviewStatusError struct {
	code int
	msg  string
}

func (e *reviewStatusError) Error() string { return e.msg }

func errReviewStatus(code int, msg string) error { return &reviewStatusError{code: code, msg: msg} }

func resolveRequestProduct(tx *gorm.DB, request *models.PurchaseRequest) (*models.Product, error) {
	var product models.Product

	if request.ProductID != nil {
		if err := tx.First(&product, "id = ?", *request.ProductID).Error; err == nil {
			return &product, nil
		}
	}
	err := tx.Where("name = ? AND unit = ?", request.ProductName, request.Unit).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = models.Product{
		Name:     request.ProductName,
		Unit:     request.Unit,
		Quantity: decimal.Zero,
	}
	if err := tx.Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
