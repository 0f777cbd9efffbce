package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
)

// Raw card data must never reach this server; clients send an opaque token
// (card_id) plus the displayable last four digits.
var forbiddenCardFields = []string{
	"card_number", "cardNumber", "pan",
	"cvv", "cvc", "card_cvv", "cardCvv",
	"expiry", "exp", "card_expiry", "cardExpiry",
	"holder", "card_holder", "cardHolder",
}

var nonDigitRe = regexp.MustCompile(`\D`)

type PaymentRequest struct {
	PaymentType string           `json:"payment_type" validate:"required,oneof=single subscription"`
	MealType    string           `json:"meal_type" validate:"required,oneof=breakfast lunch both"`
	Amount      *decimal.Decimal `json:"amount"`
	Days        *int             `json:"days"`
	CardID      *string          `json:"card_id"`
	CardLast4   *string          `json:"card_last4"`
}

// CreatePayment handles both single top-ups and subscription purchases. A
// subscription is paid from the student's balance and becomes a payment row
// with its own day counter.
func CreatePayment(c *fiber.Ctx) error {
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	for _, key := range forbiddenCardFields {
		if v, ok := raw[key]; ok && v != nil && v != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Raw card data is not accepted, send a card token (card_id) instead",
			})
		}
	}

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID := middleware.CurrentUserID(c)
	cardID, cardLast4 := sanitizeCard(req.CardID, req.CardLast4)

	var payment models.Payment
	var newBalance decimal.Decimal

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		switch req.PaymentType {
		case "single":
			if req.Amount == nil || !req.Amount.IsPositive() {
				return errBadPayment("Amount must be greater than 0")
			}
			if err := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("balance", gorm.Expr("balance + ?", *req.Amount)).Error; err != nil {
				return err
			}
			payment = models.Payment{
				UserID:      userID,
				Amount:      *req.Amount,
				PaymentType: "single",
				MealType:    req.MealType,
				Status:      "active",
				CardID:      cardID,
				CardLast4:   cardLast4,
			}

		case "subscription":
			days := 20
			if req.Days != nil {
				days = *req.Days
			}
			if days <= 0 {
				return errBadPayment("Days must be greater than 0")
			}

			dayPrice, err := subscriptionDayPrice(tx, req.MealType)
			if err != nil {
				return err
			}
			amount := dayPrice.Mul(decimal.NewFromInt(int64(days))).Round(2)
			if !amount.IsPositive() {
				return errBadPayment("Subscription price is not configured")
			}

			result := tx.Model(&models.User{}).
				Where("id = ? AND balance >= ?", userID, amount).
				Update("balance", gorm.Expr("balance - ?", amount))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				var user models.User
				if err := tx.Select("balance").First(&user, "id = ?", userID).Error; err != nil {
					return err
				}
				return errBadPayment(fmt.Sprintf("Insufficient funds: %s required, %s on balance", amount, user.Balance))
			}

			payment = models.Payment{
				UserID:        userID,
				Amount:        amount,
				PaymentType:   "subscription",
				MealType:      req.MealType,
				DaysRemaining: days,
				Status:        "active",
				CardID:        cardID,
				CardLast4:     cardLast4,
			}
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Select("balance").First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		newBalance = user.Balance

		note := models.Notification{
			Title:       "Payment",
			Message:     paymentMessage(payment),
			Audience:    "student",
			RecipientID: &payment.UserID,
			CreatedBy:   &payment.UserID,
		}
		return tx.Create(&note).Error
	})
	if err != nil {
		var bad *badPaymentError
		if errors.As(err, &bad) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": bad.msg})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payment"})
	}

	return c.JSON(fiber.Map{
		"message":      "Payment successful",
		"payment_type": payment.PaymentType,
		"amount":       payment.Amount,
		"balance":      newBalance,
	})
}

type badPaymentError struct{ msg string }

func (e *badPaymentError) Error() string { return e.msg }

func errBadPayment(msg string) error { return &badPaymentError{msg: msg} }

func sanitizeCard(cardID, cardLast4 *string) (*string, *string) {
	if cardID != nil {
		trimmed := strings.TrimSpace(*cardID)
		if trimmed == "" {
			cardID = nil
		} else {
			if len(trimmed) > 128 {
				trimmed = trimmed[:128]
			}
			cardID = &trimmed
		}
	}
	if cardLast4 != nil {
		digits := nonDigitRe.ReplaceAllString(*cardLast4, "")
		if len(digits) >= 4 {
			last4 := digits[len(digits)-4:]
			cardLast4 = &last4
		} else {
			cardLast4 = nil
		}
	}
	return cardID, cardLast4
}

func paymentMessage(p models.Payment) string {
	label := "Top-up"
	sign := "+"
	if p.PaymentType == "subscription" {
		label = "Subscription"
		sign = "-"
	}
	mealLabels := map[string]string{"breakfast": "Breakfast", "lunch": "Lunch", "both": "Breakfast + Lunch"}
	msg := fmt.Sprintf("%s: %s%s, meal: %s", label, sign, p.Amount, mealLabels[p.MealType])
	if p.PaymentType == "subscription" {
		msg += fmt.Sprintf(" (days: %d)", p.DaysRemaining)
	}
	if p.CardLast4 != nil {
		msg += fmt.Sprintf(" (card •••• %s)", *p.CardLast4)
	}
	return msg + "."
}

// subscriptionDayPrice reads the configured per-day price, falling back to the
// cheapest available dish of the category (breakfast + lunch summed for
// "both") when no setting exists.
func subscriptionDayPrice(tx *gorm.DB, mealType string) (decimal.Decimal, error) {
	keys := map[string]string{
		"breakfast": "subscription_price_breakfast",
		"lunch":     "subscription_price_lunch",
		"both":      "subscription_price_both",
	}

	var setting models.Setting
	err := tx.First(&setting, "key = ?", keys[mealType]).Error
	if err == nil {
		if price, perr := decimal.NewFromString(setting.Value); perr == nil && !price.IsNegative() {
			return price, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	if mealType == "both" {
		breakfast, err := minAvailablePrice(tx, "breakfast")
		if err != nil {
			return decimal.Zero, err
		}
		lunch, err := minAvailablePrice(tx, "lunch")
		if err != nil {
			return decimal.Zero, err
		}
		return breakfast.Add(lunch), nil
	}
	return minAvailablePrice(tx, mealType)
}

func minAvailablePrice(tx *gorm.DB, category string) (decimal.Decimal, error) {
	var min decimal.NullDecimal
	err := tx.Model(&models.MenuItem{}).
		Where("category = ? AND available = ?", category, true).
		Select("MIN(price)").
		Row().Scan(&min)
	if err != nil {
		return decimal.Zero, err
	}
	if !min.Valid {
		return decimal.Zero, nil
	}
	return min.Decimal, nil
}

func GetBalance(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Select("balance").First(&user, "id = ?", middleware.CurrentUserID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"balance": user.Balance})
}

func GetSubscriptions(c *fiber.Ctx) error {
	var subs []models.Payment
	if err := database.DB.
		Where("user_id = ? AND payment_type = ?", middleware.CurrentUserID(c), "subscription").
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subscriptions"})
	}
	return c.JSON(subs)
}

func GetPricing(c *fiber.Ctx) error {
	pricing := fiber.Map{}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, meal := range []string{"breakfast", "lunch", "both"} {
			price, err := subscriptionDayPrice(tx, meal)
			if err != nil {
				return err
			}
			pricing[meal] = price
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load pricing"})
	}
	return c.JSON(pricing)
}
