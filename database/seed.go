package database

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/models"
)

type seedDish struct {
	Name        string
	Category    string
	Price       string
	Description string
	Allergens   string
	Recipe      map[string]string
}

var defaultDishes = []seedDish{
	{"Oatmeal", "breakfast", "80", "With honey and nuts", "nuts, gluten",
		map[string]string{"Oat Flakes": "0.08", "Milk": "0.25", "Honey": "0.01"}},
	{"Omelette", "breakfast", "90", "With tomatoes and cheese", "eggs, milk",
		map[string]string{"Eggs": "2", "Milk": "0.1", "Cheese": "0.03", "Tomatoes": "0.05"}},
	{"Cheese Pancakes", "breakfast", "110", "Served with sour cream", "milk, eggs, gluten",
		map[string]string{"Cottage Cheese": "0.15", "Eggs": "1", "Flour": "0.05", "Sour Cream": "0.03"}},
	{"Rice Porridge", "breakfast", "80", "Cooked with milk", "milk",
		map[string]string{"Rice": "0.08", "Milk": "0.25", "Sugar": "0.01"}},
	{"Borscht", "lunch", "120", "With sour cream", "milk",
		map[string]string{"Beets": "0.06", "Cabbage": "0.05", "Potatoes": "0.08", "Beef": "0.05", "Sour Cream": "0.03"}},
	{"Cutlet with Mashed Potatoes", "lunch", "150", "Minced-meat cutlet, potato mash", "gluten",
		map[string]string{"Minced Meat": "0.12", "Flour": "0.02", "Eggs": "1", "Potatoes": "0.2", "Milk": "0.05"}},
	{"Chicken Soup", "lunch", "110", "With noodles", "gluten",
		map[string]string{"Chicken Fillet": "0.07", "Noodles": "0.05", "Carrots": "0.03", "Onions": "0.02"}},
	{"Vegetable Salad", "lunch", "70", "Fresh vegetables and herbs", "",
		map[string]string{"Tomatoes": "0.1", "Cucumbers": "0.1", "Vegetable Oil": "0.01"}},
}

// name, unit, quantity, min quantity
var defaultProducts = [][4]string{
	{"Flour", "kg", "50", "20"},
	{"Milk", "l", "30", "15"},
	{"Eggs", "pcs", "100", "50"},
	{"Oat Flakes", "kg", "25", "5"},
	{"Honey", "kg", "10", "2"},
	{"Sugar", "kg", "50", "15"},
	{"Cottage Cheese", "kg", "25", "8"},
	{"Sour Cream", "kg", "15", "5"},
	{"Cheese", "kg", "20", "5"},
	{"Tomatoes", "kg", "30", "10"},
	{"Cucumbers", "kg", "30", "10"},
	{"Vegetable Oil", "l", "20", "5"},
	{"Beets", "kg", "40", "10"},
	{"Cabbage", "kg", "50", "15"},
	{"Potatoes", "kg", "120", "40"},
	{"Carrots", "kg", "40", "10"},
	{"Onions", "kg", "40", "10"},
	{"Chicken Fillet", "kg", "50", "15"},
	{"Beef", "kg", "35", "10"},
	{"Minced Meat", "kg", "30", "10"},
	{"Rice", "kg", "60", "20"},
	{"Noodles", "kg", "20", "5"},
}

// SeedCanteen loads the default menu, stock and pricing on an empty database.
// It is a no-op once any menu item exists.
func SeedCanteen() {
	var count int64
	if err := DB.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check menu items: %v", err)
		return
	}
	if count > 0 {
		return
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		products := make(map[string]models.Product, len(defaultProducts))
		for _, p := range defaultProducts {
			product := models.Product{
				Name:        p[0],
				Unit:        p[1],
				Quantity:    decimal.RequireFromString(p[2]),
				MinQuantity: decimal.RequireFromString(p[3]),
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			products[product.Name] = product
		}

		for _, d := range defaultDishes {
			desc := d.Description
			allergens := d.Allergens
			item := models.MenuItem{
				Name:        d.Name,
				Category:    d.Category,
				Price:       decimal.RequireFromString(d.Price),
				Description: &desc,
				Allergens:   &allergens,
				Available:   true,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			for productName, qty := range d.Recipe {
				product, ok := products[productName]
				if !ok {
					continue
				}
				line := models.RecipeLine{
					MenuItemID: item.ID,
					ProductID:  product.ID,
					Quantity:   decimal.RequireFromString(qty),
				}
				if err := tx.Create(&line).Error; err != nil {
					return err
				}
			}

			if err := seedSchedule(tx, item); err != nil {
				return err
			}
		}

		// Default subscription day prices follow the cheapest available dish of
		// each category; they stay editable through the admin pricing endpoint.
		for key, value := range map[string]string{
			"subscription_price_breakfast": "70",
			"subscription_price_lunch":     "70",
			"subscription_price_both":      "140",
		} {
			if err := tx.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("🔥 Failed to seed canteen data: %v", err)
		return
	}

	log.Println("✅ Canteen defaults seeded successfully")
}

// seedSchedule publishes the dish on every matching weekday for the next two
// weeks so a fresh install has a non-empty menu calendar.
func seedSchedule(tx *gorm.DB, item models.MenuItem) error {
	today := time.Now()
	for offset := 0; offset < 14; offset++ {
		day := today.AddDate(0, 0, offset)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		entry := models.MenuSchedule{
			MenuDate:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			MealType:   item.Category,
			MenuItemID: item.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}
