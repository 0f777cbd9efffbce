package models

import (
	"time"

	"github.com/google/uuid"
)

type Allergy struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"not null;uniqueIndex:idx_allergies_user_allergen" json:"user_id"`
	Allergen string    `gorm:"size:50;not null;uniqueIndex:idx_allergies_user_allergen" json:"allergen"`

	CreatedAt time.Time `json:"created_at"`
}
