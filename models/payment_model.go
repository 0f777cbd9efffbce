package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment covers both one-off balance top-ups (type "single") and subscription
// purchases (type "subscription"). A subscription row carries its own day counter
// and stays active until it runs out.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID       `gorm:"not null;index" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentType   string          `gorm:"size:20;not null" json:"payment_type"`
	MealType      string          `gorm:"size:20" json:"meal_type"`
	DaysRemaining int             `gorm:"not null;default:0" json:"days_remaining"`
	Status        string          `gorm:"size:20;not null;default:'active'" json:"status"`
	CardID        *string         `gorm:"size:128" json:"-"`
	CardLast4     *string         `gorm:"size:4" json:"card_last4,omitempty"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
