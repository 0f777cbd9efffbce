package settlement

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMorning = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixedEngine(store *MemStore, at time.Time) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return at }
	return e
}

func TestIssueRejectsUnknownMealType(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("100"))
	staff := store.AddUser("Anna Cook", dec("0"))

	_, err := e.Issue(Request{StudentID: student, MealType: "dinner", IssuerID: staff})
	require.ErrorIs(t, err, ErrInvalidMealType)
	assert.Equal(t, 0, store.ClaimCount())
}

func TestSecondClaimSameDayRejected(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)

	_, err = e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, 1, store.ClaimCount())
}

func TestSubscriptionFundingDecrementsOneDay(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	sub := store.AddSubscription(student, MealBreakfast, 5)

	res, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)
	assert.Equal(t, FundingSubscription, res.Funding.Kind)
	require.NotNil(t, res.Funding.SubscriptionID)
	assert.Equal(t, sub, *res.Funding.SubscriptionID)

	days, status := store.SubscriptionState(sub)
	assert.Equal(t, 4, days)
	assert.Equal(t, "active", status)
	assert.True(t, store.UserBalance(student).Equal(dec("500")), "balance must stay untouched on the subscription path")
}

func TestSubscriptionExpiresWhenLastDayIsSpent(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("0"))
	staff := store.AddUser("Anna Cook", dec("0"))
	sub := store.AddSubscription(student, MealLunch, 1)

	_, err := e.Issue(Request{StudentID: student, MealType: "lunch", IssuerID: staff})
	require.NoError(t, err)

	days, status := store.SubscriptionState(sub)
	assert.Equal(t, 0, days)
	assert.Equal(t, "expired", status)
}

func TestMostRecentSubscriptionWins(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("0"))
	staff := store.AddUser("Anna Cook", dec("0"))
	older := store.AddSubscription(student, MealBreakfast, 3)
	newer := store.AddSubscription(student, MealBreakfast, 7)

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)

	days, _ := store.SubscriptionState(newer)
	assert.Equal(t, 6, days)
	days, _ = store.SubscriptionState(older)
	assert.Equal(t, 3, days)
}

func TestCashFundingChargesDishPrice(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Omelette", MealBreakfast, dec("90"), true)

	res, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &dish, IssuerID: staff})
	require.NoError(t, err)
	assert.Equal(t, FundingCash, res.Funding.Kind)
	assert.True(t, res.Funding.Amount.Equal(dec("90")))
	assert.True(t, store.UserBalance(student).Equal(dec("410")))
}

func TestCashFundingUsesCheapestAvailableItemWithoutDish(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	store.AddDish("Oatmeal", MealBreakfast, dec("80"), true)
	store.AddDish("Omelette", MealBreakfast, dec("120"), true)
	store.AddDish("Cheap but unavailable", MealBreakfast, dec("10"), false)

	res, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)
	assert.True(t, res.Funding.Amount.Equal(dec("80")))
	assert.True(t, store.UserBalance(student).Equal(dec("420")))
}

func TestInsufficientFundsReportsAmountAndBalance(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("50"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Omelette", MealBreakfast, dec("90"), true)

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &dish, IssuerID: staff})

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.True(t, fundsErr.Required.Equal(dec("90")))
	assert.True(t, fundsErr.Balance.Equal(dec("50")))
	assert.Equal(t, 0, store.ClaimCount())
	assert.True(t, store.UserBalance(student).Equal(dec("50")))
}

func TestBothSubscriptionCoversOneMealDay(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	sub := store.AddSubscription(student, MealBoth, 10)
	lunch := store.AddDish("Borscht", MealLunch, dec("120"), true)

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)

	res, err := e.Issue(Request{StudentID: student, MealType: "lunch", MenuItemID: &lunch, IssuerID: staff})
	require.NoError(t, err)

	// The subscription buys one combined meal-day; the second meal of the same
	// day falls through to cash.
	days, _ := store.SubscriptionState(sub)
	assert.Equal(t, 9, days)
	assert.Equal(t, FundingCash, res.Funding.Kind)
	assert.True(t, res.Funding.Amount.Equal(dec("120")))
	assert.True(t, store.UserBalance(student).Equal(dec("380")))
}

func TestShortageListsOnlyShortIngredients(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Omelette", MealBreakfast, dec("90"), true)
	eggs := store.AddProduct("Eggs", "pcs", dec("1"))
	flour := store.AddProduct("Flour", "kg", dec("0.2"))
	store.AddRecipeLine(dish, eggs, dec("2"))
	store.AddRecipeLine(dish, flour, dec("0.1"))

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &dish, IssuerID: staff})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, "Eggs", stockErr.Shortages[0].Name)
	assert.Equal(t, "pcs", stockErr.Shortages[0].Unit)
	assert.True(t, stockErr.Shortages[0].Available.Equal(dec("1")))
	assert.True(t, stockErr.Shortages[0].Needed.Equal(dec("2")))

	// A shortage abort must leave no observable effect.
	assert.Equal(t, 0, store.ClaimCount())
	assert.True(t, store.ProductQuantity(eggs).Equal(dec("1")))
	assert.True(t, store.ProductQuantity(flour).Equal(dec("0.2")))
	assert.True(t, store.UserBalance(student).Equal(dec("500")))
}

func TestStockDecrementsAreExact(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Omelette", MealBreakfast, dec("90"), true)
	eggs := store.AddProduct("Eggs", "pcs", dec("100"))
	milk := store.AddProduct("Milk", "l", dec("30"))
	store.AddRecipeLine(dish, eggs, dec("2"))
	store.AddRecipeLine(dish, milk, dec("0.1"))

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &dish, IssuerID: staff})
	require.NoError(t, err)

	assert.True(t, store.ProductQuantity(eggs).Equal(dec("98")), "eggs: got %s", store.ProductQuantity(eggs))
	assert.True(t, store.ProductQuantity(milk).Equal(dec("29.9")), "milk: got %s", store.ProductQuantity(milk))
}

func TestRecipeLineReplacedNotAccumulated(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Omelette", MealBreakfast, dec("90"), true)
	eggs := store.AddProduct("Eggs", "pcs", dec("100"))
	store.AddRecipeLine(dish, eggs, dec("3"))
	store.AddRecipeLine(dish, eggs, dec("2"))

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &dish, IssuerID: staff})
	require.NoError(t, err)
	assert.True(t, store.ProductQuantity(eggs).Equal(dec("98")))
}

func TestFallbackConsumptionUsedWhenDishHasNoRecipe(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Porridge", MealBreakfast, dec("80"), true)
	eggs := store.AddProduct("Eggs", "pcs", dec("10"))
	milk := store.AddProduct("Milk", "l", dec("5"))
	flour := store.AddProduct("Flour", "kg", dec("3"))

	_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &dish, IssuerID: staff})
	require.NoError(t, err)

	assert.True(t, store.ProductQuantity(eggs).Equal(dec("9")))
	assert.True(t, store.ProductQuantity(milk).Equal(dec("4.8")))
	assert.True(t, store.ProductQuantity(flour).Equal(dec("2.9")))
}

func TestFallbackConsumptionUsedWithoutDish(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	milk := store.AddProduct("Milk", "l", dec("5"))
	flour := store.AddProduct("Flour", "kg", dec("3"))

	_, err := e.Issue(Request{StudentID: student, MealType: "lunch", IssuerID: staff})
	require.NoError(t, err)

	assert.True(t, store.ProductQuantity(milk).Equal(dec("4.9")))
	assert.True(t, store.ProductQuantity(flour).Equal(dec("2.8")))
}

func TestSettlesWithNoIngredientsWhenNothingResolves(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))

	// No dishes, no stocked products: legacy behavior is to settle anyway.
	res, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)
	assert.Empty(t, res.Ingredients)
	assert.Equal(t, 1, store.ClaimCount())
}

func TestInvalidDishVariants(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	unavailable := store.AddDish("Omelette", MealBreakfast, dec("90"), false)
	lunchDish := store.AddDish("Borscht", MealLunch, dec("120"), true)
	unknown := uuid.New()

	for name, dishID := range map[string]uuid.UUID{
		"unknown dish":        unknown,
		"unavailable dish":    unavailable,
		"wrong meal category": lunchDish,
	} {
		id := dishID
		_, err := e.Issue(Request{StudentID: student, MealType: "breakfast", MenuItemID: &id, IssuerID: staff})
		assert.ErrorIs(t, err, ErrInvalidDish, name)
	}
	assert.Equal(t, 0, store.ClaimCount())
}

func TestSelfIssueMarksReceiptAutomatically(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))

	res, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: student})
	require.NoError(t, err)

	received := store.ClaimReceipt(res.ClaimID)
	require.NotNil(t, received)
	assert.True(t, *received)
}

func TestNotificationNamesMealDishAndIssuer(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	staff := store.AddUser("Anna Cook", dec("0"))
	dish := store.AddDish("Borscht", MealLunch, dec("120"), true)

	_, err := e.Issue(Request{StudentID: student, MealType: "lunch", MenuItemID: &dish, IssuerID: staff})
	require.NoError(t, err)

	notices := store.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, student, notices[0].RecipientID)
	assert.Contains(t, notices[0].Message, "Lunch")
	assert.Contains(t, notices[0].Message, "Borscht")
	assert.Contains(t, notices[0].Message, "Anna Cook")
}

func TestConfirmFlow(t *testing.T) {
	store := NewMemStore()
	e := newFixedEngine(store, testMorning)
	student := store.AddUser("Ivan Petrov", dec("500"))
	other := store.AddUser("Maria Sidorova", dec("0"))
	staff := store.AddUser("Anna Cook", dec("0"))

	res, err := e.Issue(Request{StudentID: student, MealType: "breakfast", IssuerID: staff})
	require.NoError(t, err)

	// Wrong owner is indistinguishable from a missing claim.
	require.ErrorIs(t, e.Confirm(res.ClaimID, other, true), ErrNotFound)
	require.ErrorIs(t, e.Confirm(uuid.New(), student, true), ErrNotFound)

	require.NoError(t, e.Confirm(res.ClaimID, student, true))
	require.ErrorIs(t, e.Confirm(res.ClaimID, student, true), ErrAlreadyConfirmed)

	// Flipping to the opposite value overwrites; re-asserting it does not.
	require.NoError(t, e.Confirm(res.ClaimID, student, false))
	received := store.ClaimReceipt(res.ClaimID)
	require.NotNil(t, received)
	assert.False(t, *received)
	require.ErrorIs(t, e.Confirm(res.ClaimID, student, false), ErrAlreadyConfirmed)
}

func TestStorageFaultSurfacesAsDataError(t *testing.T) {
	e := NewEngine(failingStore{})
	e.now = func() time.Time { return testMorning }

	_, err := e.Issue(Request{StudentID: uuid.New(), MealType: "breakfast", IssuerID: uuid.New()})

	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.False(t, IsBusinessError(err))
}

type failingStore struct{}

func (failingStore) InTx(func(Tx) error) error { return errors.New("connection reset") }
