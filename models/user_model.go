package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username    string          `gorm:"size:100;not null;unique" json:"username"`
	Password    string          `gorm:"not null" json:"-"`
	FullName    string          `gorm:"size:255;not null" json:"full_name"`
	DateOfBirth *time.Time      `gorm:"type:date" json:"date_of_birth"`
	School      string          `gorm:"size:255;default:''" json:"school"`
	ClassName   string          `gorm:"size:10;default:''" json:"class_name"`
	Role        string          `gorm:"size:20;not null;default:'student'" json:"role"`
	Balance     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"balance"`
	Preferences string          `gorm:"type:text;default:''" json:"preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
