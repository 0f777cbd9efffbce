package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"

	// MealBoth is only valid on subscriptions, never on a claim itself.
	MealBoth MealType = "both"
)

// ParseMealType accepts the two claimable meal types.
func ParseMealType(s string) (MealType, error) {
	switch MealType(s) {
	case MealBreakfast, MealLunch:
		return MealType(s), nil
	}
	return "", ErrInvalidMealType
}

type FundingKind string

const (
	FundingSubscription FundingKind = "subscription"
	FundingCash         FundingKind = "cash"
)

// Funding is the chosen payment source for a single meal claim.
type Funding struct {
	Kind           FundingKind     `json:"kind"`
	SubscriptionID *uuid.UUID      `json:"subscription_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
}

// RequiredIngredient is one resolved recipe line joined with current stock.
type RequiredIngredient struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Needed    decimal.Decimal `json:"needed"`
	Available decimal.Decimal `json:"available"`
}

// Shortage describes one ingredient that cannot cover the requested claim.
type Shortage struct {
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Available decimal.Decimal `json:"available"`
	Needed    decimal.Decimal `json:"needed"`
}

// Request asks the engine to issue one meal to one student.
type Request struct {
	StudentID  uuid.UUID
	MealType   string
	MenuItemID *uuid.UUID
	IssuerID   uuid.UUID
}

// Result reports what a committed settlement actually did.
type Result struct {
	ClaimID     uuid.UUID            `json:"claim_id"`
	Funding     Funding              `json:"funding"`
	Ingredients []RequiredIngredient `json:"ingredients"`
}

// Dish is the engine's view of a menu item.
type Dish struct {
	ID        uuid.UUID
	Name      string
	Category  MealType
	Price     decimal.Decimal
	Available bool
}

// Subscription is the engine's view of an active subscription payment.
type Subscription struct {
	ID            uuid.UUID
	MealType      MealType
	DaysRemaining int
}

// Claim is the engine's view of a journal entry, used by the confirm path.
type Claim struct {
	ID        uuid.UUID
	StudentID uuid.UUID
	MealType  MealType
	Received  *bool
}

// NewClaim is the row appended on commit.
type NewClaim struct {
	StudentID       uuid.UUID
	MealType        MealType
	Day             time.Time
	MenuItemID      *uuid.UUID
	IssuerID        uuid.UUID
	ClaimedAt       time.Time
	StudentReceived *bool
}

// Notice is the notification event emitted to the student on commit.
type Notice struct {
	RecipientID uuid.UUID
	Title       string
	Message     string
	CreatedBy   uuid.UUID
}
