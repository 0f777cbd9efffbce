package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/models"
)

// GormStore is the production Store over the relational database. All guarded
// decrements are expressed as conditional UPDATEs so two concurrent claims can
// never drive a balance, a day counter or an ingredient quantity below zero.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTx(fn func(Tx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) HasClaim(studentID uuid.UUID, meal MealType, day time.Time) (bool, error) {
	var count int64
	err := t.db.Model(&models.MealClaim{}).
		Where("user_id = ? AND meal_type = ? AND claim_date = ?", studentID, meal, day).
		Count(&count).Error
	return count > 0, err
}

func (t *gormTx) HasAnyClaim(studentID uuid.UUID, day time.Time) (bool, error) {
	var count int64
	err := t.db.Model(&models.MealClaim{}).
		Where("user_id = ? AND claim_date = ?", studentID, day).
		Count(&count).Error
	return count > 0, err
}

func (t *gormTx) AppendClaim(c NewClaim) (uuid.UUID, error) {
	claim := models.MealClaim{
		UserID:          c.StudentID,
		MealType:        string(c.MealType),
		ClaimDate:       c.Day,
		MenuItemID:      c.MenuItemID,
		IssuedBy:        &c.IssuerID,
		ClaimedAt:       c.ClaimedAt,
		StudentReceived: c.StudentReceived,
	}
	if c.StudentReceived != nil {
		at := c.ClaimedAt
		claim.StudentMarkedAt = &at
	}
	if err := t.db.Create(&claim).Error; err != nil {
		// The unique index on (user_id, meal_type, claim_date) is the final
		// arbiter when two near-simultaneous requests both pass the gate check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return uuid.Nil, ErrAlreadyClaimed
		}
		return uuid.Nil, err
	}
	return claim.ID, nil
}

func (t *gormTx) ClaimByID(claimID, studentID uuid.UUID) (*Claim, error) {
	var claim models.MealClaim
	err := t.db.First(&claim, "id = ? AND user_id = ?", claimID, studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Claim{
		ID:        claim.ID,
		StudentID: claim.UserID,
		MealType:  MealType(claim.MealType),
		Received:  claim.StudentReceived,
	}, nil
}

func (t *gormTx) SetClaimReceipt(claimID uuid.UUID, received bool, at time.Time) error {
	return t.db.Model(&models.MealClaim{}).
		Where("id = ?", claimID).
		Updates(map[string]interface{}{
			"student_received":  received,
			"student_marked_at": at,
		}).Error
}

func (t *gormTx) LatestActiveSubscription(studentID uuid.UUID, meal MealType) (*Subscription, error) {
	var payment models.Payment
	err := t.db.
		Where("user_id = ? AND payment_type = ? AND status = ? AND days_remaining > 0 AND (meal_type = ? OR meal_type = ?)",
			studentID, "subscription", "active", meal, MealBoth).
		Order("created_at DESC").
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Subscription{
		ID:            payment.ID,
		MealType:      MealType(payment.MealType),
		DaysRemaining: payment.DaysRemaining,
	}, nil
}

func (t *gormTx) SpendSubscriptionDay(subscriptionID uuid.UUID) error {
	result := t.db.Model(&models.Payment{}).
		Where("id = ? AND days_remaining > 0", subscriptionID).
		Updates(map[string]interface{}{
			"days_remaining": gorm.Expr("days_remaining - 1"),
			"status":         gorm.Expr("CASE WHEN days_remaining - 1 <= 0 THEN 'expired' ELSE 'active' END"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %s was spent concurrently", subscriptionID)
	}
	return nil
}

func (t *gormTx) Balance(studentID uuid.UUID) (decimal.Decimal, error) {
	var user models.User
	err := t.db.Select("balance").First(&user, "id = ?", studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

func (t *gormTx) ChargeBalance(studentID uuid.UUID, amount decimal.Decimal) error {
	result := t.db.Model(&models.User{}).
		Where("id = ? AND balance >= ?", studentID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		balance, err := t.Balance(studentID)
		if err != nil {
			return err
		}
		return &InsufficientFundsError{Required: amount, Balance: balance}
	}
	return nil
}

func (t *gormTx) MinAvailablePrice(meal MealType) (decimal.Decimal, error) {
	var min decimal.NullDecimal
	err := t.db.Model(&models.MenuItem{}).
		Where("category = ? AND available = ?", meal, true).
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

func (t *gormTx) Dish(id uuid.UUID) (*Dish, error) {
	var item models.MenuItem
	err := t.db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Dish{
		ID:        item.ID,
		Name:      item.Name,
		Category:  MealType(item.Category),
		Price:     item.Price,
		Available: item.Available,
	}, nil
}

func (t *gormTx) RecipeIngredients(dishID uuid.UUID) ([]RequiredIngredient, error) {
	var required []RequiredIngredient
	err := t.db.Table("recipe_lines").
		Select("recipe_lines.product_id, products.name, products.unit, recipe_lines.quantity AS needed, products.quantity AS available").
		Joins("JOIN products ON products.id = recipe_lines.product_id").
		Where("recipe_lines.menu_item_id = ?", dishID).
		Order("products.name ASC").
		Scan(&required).Error
	return required, err
}

func (t *gormTx) IngredientByName(name string) (*RequiredIngredient, error) {
	var product models.Product
	err := t.db.Where("name = ?", name).Order("created_at ASC").First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &RequiredIngredient{
		ProductID: product.ID,
		Name:      product.Name,
		Unit:      product.Unit,
		Available: product.Quantity,
	}, nil
}

func (t *gormTx) TakeStock(productID uuid.UUID, qty decimal.Decimal) error {
	result := t.db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("stock for product %s changed concurrently", productID)
	}
	return nil
}

func (t *gormTx) UserFullName(id uuid.UUID) (string, error) {
	var user models.User
	err := t.db.Select("full_name").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.FullName, nil
}

func (t *gormTx) Notify(n Notice) error {
	recipient := n.RecipientID
	creator := n.CreatedBy
	return t.db.Create(&models.Notification{
		Title:       n.Title,
		Message:     n.Message,
		Audience:    "student",
		RecipientID: &recipient,
		CreatedBy:   &creator,
	}).Error
}
