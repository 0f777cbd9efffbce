package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tx is the narrow data-access surface the engine needs inside one settlement
// transaction. Every mutation is guarded: it must refuse to push a counter
// below zero instead of blindly writing a stale read back.
type Tx interface {
	// Claim journal.
	HasClaim(studentID uuid.UUID, meal MealType, day time.Time) (bool, error)
	HasAnyClaim(studentID uuid.UUID, day time.Time) (bool, error)
	AppendClaim(c NewClaim) (uuid.UUID, error)
	ClaimByID(claimID, studentID uuid.UUID) (*Claim, error)
	SetClaimReceipt(claimID uuid.UUID, received bool, at time.Time) error

	// Funding.
	LatestActiveSubscription(studentID uuid.UUID, meal MealType) (*Subscription, error)
	SpendSubscriptionDay(subscriptionID uuid.UUID) error
	Balance(studentID uuid.UUID) (decimal.Decimal, error)
	ChargeBalance(studentID uuid.UUID, amount decimal.Decimal) error
	MinAvailablePrice(meal MealType) (decimal.Decimal, error)

	// Recipes and stock.
	Dish(id uuid.UUID) (*Dish, error)
	RecipeIngredients(dishID uuid.UUID) ([]RequiredIngredient, error)
	IngredientByName(name string) (*RequiredIngredient, error)
	TakeStock(productID uuid.UUID, qty decimal.Decimal) error

	// Collaborators.
	UserFullName(id uuid.UUID) (string, error)
	Notify(n Notice) error
}

// Store runs a function inside a single transaction. If fn returns an error
// every write made through the Tx is rolled back.
type Store interface {
	InTx(fn func(Tx) error) error
}
