package models

import (
	"time"

	"github.com/google/uuid"
)

// MealClaim is the durable record that a meal was issued to a student on a day.
// ClaimDate is denormalized from ClaimedAt so the database can enforce the
// one-claim-per-student-per-meal-per-day rule with a unique index.
type MealClaim struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID  `gorm:"not null;uniqueIndex:idx_meal_claims_user_meal_day" json:"user_id"`
	MealType   string     `gorm:"size:20;not null;uniqueIndex:idx_meal_claims_user_meal_day" json:"meal_type"`
	ClaimDate  time.Time  `gorm:"type:date;not null;uniqueIndex:idx_meal_claims_user_meal_day" json:"claim_date"`
	MenuItemID *uuid.UUID `json:"menu_item_id"`
	IssuedBy   *uuid.UUID `json:"issued_by"`
	ClaimedAt  time.Time  `gorm:"not null" json:"claimed_at"`

	// Tri-state receipt confirmation: nil until the student marks the claim.
	StudentReceived *bool      `json:"student_received"`
	StudentMarkedAt *time.Time `json:"student_marked_at"`

	User     User      `gorm:"foreignkey:UserID" json:"-"`
	Issuer   *User     `gorm:"foreignkey:IssuedBy" json:"-"`
	MenuItem *MenuItem `gorm:"foreignkey:MenuItemID" json:"-"`
}
