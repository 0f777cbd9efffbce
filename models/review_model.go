package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"not null" json:"user_id"`
	MenuItemID uuid.UUID `gorm:"not null" json:"menu_item_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment"`

	User     User     `gorm:"foreignkey:UserID" json:"-"`
	MenuItem MenuItem `gorm:"foreignkey:MenuItemID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
