package models

import (
	"time"

	"github.com/google/uuid"
)

type MenuSchedule struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MenuDate   time.Time `gorm:"type:date;not null;uniqueIndex:idx_menu_schedule_day_meal_item" json:"menu_date"`
	MealType   string    `gorm:"size:20;not null;uniqueIndex:idx_menu_schedule_day_meal_item" json:"meal_type"`
	MenuItemID uuid.UUID `gorm:"not null;uniqueIndex:idx_menu_schedule_day_meal_item" json:"menu_item_id"`

	MenuItem MenuItem `gorm:"foreignkey:MenuItemID" json:"menu_item,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
