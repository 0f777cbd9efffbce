package settlement

import (
	"github.com/shopspring/decimal"
)

type fallbackLine struct {
	Name     string
	Quantity decimal.Decimal
}

// mealConsumption is the legacy per-meal-type consumption table. It is used
// when a claim names no dish, or the chosen dish has no recipe lines recorded.
var mealConsumption = map[MealType][]fallbackLine{
	MealBreakfast: {
		{Name: "Eggs", Quantity: decimal.NewFromInt(1)},
		{Name: "Milk", Quantity: decimal.RequireFromString("0.2")},
		{Name: "Flour", Quantity: decimal.RequireFromString("0.1")},
	},
	MealLunch: {
		{Name: "Milk", Quantity: decimal.RequireFromString("0.1")},
		{Name: "Flour", Quantity: decimal.RequireFromString("0.2")},
	},
}

// resolveDish loads and validates the chosen dish, when one was chosen.
func resolveDish(tx Tx, req Request, meal MealType) (*Dish, error) {
	if req.MenuItemID == nil {
		return nil, nil
	}
	dish, err := tx.Dish(*req.MenuItemID)
	if err != nil {
		return nil, err
	}
	if dish == nil || !dish.Available || dish.Category != meal {
		return nil, ErrInvalidDish
	}
	return dish, nil
}

// resolveIngredients returns the ordered ingredient list a claim will consume.
// Two-tier lookup: dish-specific recipe first, then the static meal-type table.
// An empty result is legal; the settlement then proceeds without touching stock.
func resolveIngredients(tx Tx, dish *Dish, meal MealType) ([]RequiredIngredient, error) {
	if dish != nil {
		required, err := tx.RecipeIngredients(dish.ID)
		if err != nil {
			return nil, err
		}
		if len(required) > 0 {
			return required, nil
		}
	}

	var required []RequiredIngredient
	for _, line := range mealConsumption[meal] {
		ing, err := tx.IngredientByName(line.Name)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			// Product was never stocked; the legacy table tolerates that.
			continue
		}
		ing.Needed = line.Quantity
		required = append(required, *ing)
	}
	return required, nil
}
