package settlement

// verifyStock checks every required line against current stock and collects
// the complete shortage list before failing, so the caller can present one
// message naming every short ingredient.
func verifyStock(required []RequiredIngredient) error {
	var shortages []Shortage
	for _, r := range required {
		if r.Available.LessThan(r.Needed) {
			shortages = append(shortages, Shortage{
				Name:      r.Name,
				Unit:      r.Unit,
				Available: r.Available,
				Needed:    r.Needed,
			})
		}
	}
	if len(shortages) > 0 {
		return &InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// consumeStock decrements every required line. The store's TakeStock is a
// guarded decrement, so a concurrent claim racing for the same units makes the
// whole transaction fail and roll back instead of driving stock negative.
func consumeStock(tx Tx, required []RequiredIngredient) error {
	for _, r := range required {
		if !r.Needed.IsPositive() {
			continue
		}
		if err := tx.TakeStock(r.ProductID, r.Needed); err != nil {
			return err
		}
	}
	return nil
}
