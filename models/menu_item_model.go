package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string          `gorm:"size:255;not null;uniqueIndex:idx_menu_items_name_category" json:"name"`
	Category    string          `gorm:"size:20;not null;uniqueIndex:idx_menu_items_name_category" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Description *string         `gorm:"type:text" json:"description"`
	Allergens   *string         `gorm:"size:255" json:"allergens"`
	Available   bool            `gorm:"default:true" json:"available"`

	RecipeLines []RecipeLine `gorm:"foreignkey:MenuItemID" json:"recipe_lines,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
