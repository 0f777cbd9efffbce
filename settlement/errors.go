package settlement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMealType  = errors.New("invalid meal type")
	ErrInvalidDish      = errors.New("dish not found, unavailable or in the wrong category")
	ErrAlreadyClaimed   = errors.New("this meal has already been issued today")
	ErrNotFound         = errors.New("record not found")
	ErrForbidden        = errors.New("operation not allowed")
	ErrAlreadyConfirmed = errors.New("this claim is already marked with the same value")
)

// InsufficientFundsError reports both the required amount and the balance the
// student actually has, so the caller can show a complete message.
type InsufficientFundsError struct {
	Required decimal.Decimal
	Balance  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %s required, balance is %s", e.Required, e.Balance)
}

// InsufficientStockError lists every short ingredient, not just the first one.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (have %s %s, need %s %s)", s.Name, s.Available, s.Unit, s.Needed, s.Unit))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

// DataError marks a storage-layer failure. The settlement has been rolled back
// and the request is safe to retry; it is not an invalid-request error.
type DataError struct {
	Err error
}

func (e *DataError) Error() string { return "settlement aborted by a storage error: " + e.Err.Error() }

func (e *DataError) Unwrap() error { return e.Err }

// IsBusinessError reports whether err belongs to the settlement error taxonomy
// rather than being a storage fault.
func IsBusinessError(err error) bool {
	var fundsErr *InsufficientFundsError
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrInvalidMealType),
		errors.Is(err, ErrInvalidDish),
		errors.Is(err, ErrAlreadyClaimed),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAlreadyConfirmed),
		errors.As(err, &fundsErr),
		errors.As(err, &stockErr):
		return true
	}
	return false
}
