package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
	"github.com/avdonin/school_canteen/settlement"
	"github.com/avdonin/school_canteen/utils"
)

func settlementEngine() *settlement.Engine {
	return settlement.NewEngine(settlement.NewGormStore(database.DB))
}

// settlementError maps engine errors onto HTTP responses. Business errors keep
// their payloads (required amount, shortage list); storage faults come back as
// a generic 500 that is safe to retry.
func settlementError(c *fiber.Ctx, err error) error {
	var fundsErr *settlement.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":    fundsErr.Error(),
			"required": fundsErr.Required,
			"balance":  fundsErr.Balance,
		})
	}
	var stockErr *settlement.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     stockErr.Error(),
			"shortages": stockErr.Shortages,
		})
	}

	switch {
	case errors.Is(err, settlement.ErrInvalidMealType), errors.Is(err, settlement.ErrInvalidDish):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, settlement.ErrAlreadyClaimed), errors.Is(err, settlement.ErrAlreadyConfirmed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, settlement.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, settlement.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Temporary storage failure, please retry"})
}

type IssueMealRequest struct {
	StudentID  *uuid.UUID `json:"student_id"`
	FullName   string     `json:"full_name"`
	Username   string     `json:"username"`
	MealType   string     `json:"meal_type" validate:"required"`
	MenuItemID *uuid.UUID `json:"menu_item_id"`
}

// IssueMeal settles one meal claim for a student resolved by id, full name or
// username. An ambiguous full name returns 409 with the candidate list so the
// cook can pick the right student.
func IssueMeal(c *fiber.Ctx) error {
	var req IssueMealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.StudentID == nil && req.FullName == "" && req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide a student id, full name or username"})
	}

	student, resp := resolveStudent(c, req)
	if resp != nil {
		return resp
	}

	result, err := settlementEngine().Issue(settlement.Request{
		StudentID:  student.ID,
		MealType:   req.MealType,
		MenuItemID: req.MenuItemID,
		IssuerID:   middleware.CurrentUserID(c),
	})
	if err != nil {
		return settlementError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Meal issued",
		"claim_id":    result.ClaimID,
		"funding":     result.Funding.Kind,
		"amount":      result.Funding.Amount,
		"ingredients": result.Ingredients,
	})
}

// resolveStudent finds the target student. It returns either the student or a
// ready response (ambiguous match, not found).
func resolveStudent(c *fiber.Ctx, req IssueMealRequest) (*models.User, error) {
	if req.StudentID != nil {
		var student models.User
		if err := database.DB.First(&student, "id = ?", *req.StudentID).Error; err != nil || student.Role != "student" {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return &student, nil
	}

	if req.FullName != "" {
		variants := utils.NameCaseVariants(req.FullName)

		var matches []models.User
		if err := database.DB.
			Where("role = ? AND full_name IN ?", "student", variants).
			Order("created_at ASC").
			Find(&matches).Error; err != nil {
			return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search students"})
		}

		if len(matches) == 0 {
			fuzzy := database.DB.Where("1 = 0")
			for _, v := range variants {
				fuzzy = fuzzy.Or("full_name ILIKE ?", "%"+v+"%")
			}
			if err := database.DB.Model(&models.User{}).
				Where("role = ?", "student").
				Where(fuzzy).
				Order("full_name ASC").
				Limit(25).
				Find(&matches).Error; err != nil {
				return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search students"})
			}
		}

		if len(matches) > 1 {
			return nil, c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "Several students match this name, pick one from the list",
				"matches": studentSummaries(matches),
			})
		}
		if len(matches) == 1 {
			return &matches[0], nil
		}
	}

	if req.Username != "" {
		var student models.User
		err := database.DB.Where("username = ? AND role = ?", req.Username, "student").First(&student).Error
		if err == nil {
			return &student, nil
		}
	}

	return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
}

func studentSummaries(students []models.User) []fiber.Map {
	out := make([]fiber.Map, 0, len(students))
	for _, s := range students {
		out = append(out, fiber.Map{
			"id":         s.ID,
			"full_name":  s.FullName,
			"username":   s.Username,
			"school":     s.School,
			"class_name": s.ClassName,
		})
	}
	return out
}

// SearchStudents is the staff-facing name lookup behind the issue form.
func SearchStudents(c *fiber.Ctx) error {
	query := c.Query("query", c.Query("q"))
	if len([]rune(query)) < 2 {
		return c.JSON([]fiber.Map{})
	}

	fuzzy := database.DB.Where("1 = 0")
	for _, v := range utils.NameCaseVariants(query) {
		fuzzy = fuzzy.Or("full_name ILIKE ?", "%"+v+"%")
	}

	var students []models.User
	if err := database.DB.Model(&models.User{}).
		Where("role = ?", "student").
		Where(fuzzy).
		Order("full_name ASC").
		Limit(15).
		Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search students"})
	}
	return c.JSON(studentSummaries(students))
}

// SelfClaim is kept as an explicit endpoint so clients get a clear policy
// answer instead of a 404: students may not issue meals to themselves.
func SelfClaim(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Meals are issued by canteen staff only",
	})
}

type ConfirmClaimRequest struct {
	Received *bool `json:"received" validate:"required"`
}

func ConfirmClaim(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("claimId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid claim id"})
	}

	var req ConfirmClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := settlementEngine().Confirm(claimID, middleware.CurrentUserID(c), *req.Received); err != nil {
		return settlementError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Receipt recorded"})
}

// TodayClaims lists the student's own claims for the current day.
func TodayClaims(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	today := dateOnly(time.Now())

	var claims []models.MealClaim
	if err := database.DB.
		Where("user_id = ? AND claim_date = ?", userID, today).
		Order("claimed_at ASC").
		Find(&claims).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load claims"})
	}
	return c.JSON(claims)
}

// ClaimHistory is the staff view over the claim journal, filterable by day and
// meal type.
func ClaimHistory(c *fiber.Ctx) error {
	query := database.DB.Model(&models.MealClaim{})

	if day := c.Query("date"); day != "" {
		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		query = query.Where("claim_date = ?", parsed)
	}
	if meal := c.Query("meal_type"); meal != "" {
		query = query.Where("meal_type = ?", meal)
	}

	var claims []models.MealClaim
	if err := query.Order("claimed_at DESC").Limit(200).Find(&claims).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load claim history"})
	}
	return c.JSON(claims)
}

// MealStats counts today's issued meals per meal type.
func MealStats(c *fiber.Ctx) error {
	today := dateOnly(time.Now())

	type row struct {
		MealType string `json:"meal_type"`
		Count    int64  `json:"count"`
	}
	var rows []row
	if err := database.DB.Model(&models.MealClaim{}).
		Select("meal_type, COUNT(*) AS count").
		Where("claim_date = ?", today).
		Group("meal_type").
		Scan(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load meal stats"})
	}

	stats := fiber.Map{"breakfast": int64(0), "lunch": int64(0)}
	for _, r := range rows {
		stats[r.MealType] = r.Count
	}
	return c.JSON(stats)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
