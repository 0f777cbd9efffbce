package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// selectFunding decides whether an active subscription or the cash balance pays
// for this claim.
//
// A "both" subscription is modeled as one combined meal-day, not unlimited
// meals: once any meal was claimed earlier the same day, the subscription is
// not eligible for the second one and funding falls through to cash.
func selectFunding(tx Tx, studentID uuid.UUID, meal MealType, dish *Dish, claimedEarlierToday bool) (Funding, error) {
	sub, err := tx.LatestActiveSubscription(studentID, meal)
	if err != nil {
		return Funding{}, err
	}

	if sub != nil && !(sub.MealType == MealBoth && claimedEarlierToday) {
		id := sub.ID
		return Funding{Kind: FundingSubscription, SubscriptionID: &id}, nil
	}

	amount, err := cashAmount(tx, meal, dish)
	if err != nil {
		return Funding{}, err
	}

	balance, err := tx.Balance(studentID)
	if err != nil {
		return Funding{}, err
	}
	if balance.LessThan(amount) {
		return Funding{}, &InsufficientFundsError{Required: amount, Balance: balance}
	}

	return Funding{Kind: FundingCash, Amount: amount}, nil
}

// cashAmount is the dish's own price when a dish was chosen, otherwise the
// cheapest available item in the meal category.
func cashAmount(tx Tx, meal MealType, dish *Dish) (decimal.Decimal, error) {
	if dish != nil {
		return dish.Price, nil
	}
	return tx.MinAvailablePrice(meal)
}
