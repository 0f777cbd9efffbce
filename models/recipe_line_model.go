package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeLine is the quantity of one product consumed by one serving of one dish.
// The (dish, product) pair is unique; writing the same pair again replaces the
// quantity instead of adding a second row.
type RecipeLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MenuItemID uuid.UUID       `gorm:"not null;uniqueIndex:idx_recipe_lines_dish_product" json:"menu_item_id"`
	ProductID  uuid.UUID       `gorm:"not null;uniqueIndex:idx_recipe_lines_dish_product" json:"product_id"`
	Quantity   decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"quantity"`

	Product Product `gorm:"foreignkey:ProductID" json:"product,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
