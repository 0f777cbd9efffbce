package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProductID     *uuid.UUID      `json:"product_id"`
	ProductName   string          `gorm:"size:255;not null" json:"product_name"`
	Quantity      decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"quantity"`
	Unit          string          `gorm:"size:20;not null" json:"unit"`
	EstimatedCost decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"estimated_cost"`
	Reason        *string         `gorm:"type:text" json:"reason"`
	Status        string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	RequestedBy   uuid.UUID       `gorm:"not null" json:"requested_by"`
	ReviewedBy    *uuid.UUID      `json:"reviewed_by"`
	ReviewedAt    *time.Time      `json:"reviewed_at"`

	Requester User     `gorm:"foreignkey:RequestedBy" json:"-"`
	Product   *Product `gorm:"foreignkey:ProductID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
