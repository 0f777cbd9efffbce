package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one ingredient in canteen stock. Quantity only decreases through
// meal settlement and only increases through approved purchase requests.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string          `gorm:"size:255;not null;uniqueIndex:idx_products_name_unit" json:"name"`
	Unit        string          `gorm:"size:20;not null;uniqueIndex:idx_products_name_unit" json:"unit"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"quantity"`
	MinQuantity decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"min_quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
