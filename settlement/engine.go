package settlement

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine is the meal-claim settlement orchestrator. One call to Issue runs the
// whole sequence — gate check, funding selection, stock verification, commit —
// inside a single storage transaction, so a failure at any step leaves no
// observable effect.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Issue settles one meal claim. It returns a typed business error
// (ErrAlreadyClaimed, ErrInvalidDish, *InsufficientFundsError,
// *InsufficientStockError, ...) on a clean abort, or *DataError when the
// storage layer failed and the request is safe to retry.
func (e *Engine) Issue(req Request) (*Result, error) {
	meal, err := ParseMealType(req.MealType)
	if err != nil {
		return nil, err
	}

	var res Result
	err = e.store.InTx(func(tx Tx) error {
		now := e.now()
		day := dateOnly(now)

		if err := gateCheck(tx, req.StudentID, meal, day); err != nil {
			return err
		}

		claimedEarlierToday, err := tx.HasAnyClaim(req.StudentID, day)
		if err != nil {
			return err
		}

		dish, err := resolveDish(tx, req, meal)
		if err != nil {
			return err
		}

		funding, err := selectFunding(tx, req.StudentID, meal, dish, claimedEarlierToday)
		if err != nil {
			return err
		}

		required, err := resolveIngredients(tx, dish, meal)
		if err != nil {
			return err
		}
		if err := verifyStock(required); err != nil {
			return err
		}

		// Commit phase. Everything below rolls back together on error.
		switch funding.Kind {
		case FundingSubscription:
			if err := tx.SpendSubscriptionDay(*funding.SubscriptionID); err != nil {
				return err
			}
		case FundingCash:
			if funding.Amount.IsPositive() {
				if err := tx.ChargeBalance(req.StudentID, funding.Amount); err != nil {
					return err
				}
			}
		}

		if err := consumeStock(tx, required); err != nil {
			return err
		}

		claimID, err := appendClaim(tx, req, meal, day, now)
		if err != nil {
			return err
		}

		if err := e.notifyStudent(tx, req, meal, dish); err != nil {
			return err
		}

		res = Result{ClaimID: claimID, Funding: funding, Ingredients: required}
		return nil
	})
	if err != nil {
		if IsBusinessError(err) {
			return nil, err
		}
		return nil, &DataError{Err: err}
	}
	return &res, nil
}

// Confirm records the student's own yes/no receipt mark on a claim. The same
// value may not be asserted twice, but unset → either value and a later flip
// to the opposite value are both allowed.
func (e *Engine) Confirm(claimID, studentID uuid.UUID, received bool) error {
	err := e.store.InTx(func(tx Tx) error {
		claim, err := tx.ClaimByID(claimID, studentID)
		if err != nil {
			return err
		}
		if claim == nil {
			return ErrNotFound
		}
		if claim.Received != nil && *claim.Received == received {
			return ErrAlreadyConfirmed
		}
		return tx.SetClaimReceipt(claimID, received, e.now())
	})
	if err != nil {
		if IsBusinessError(err) {
			return err
		}
		return &DataError{Err: err}
	}
	return nil
}

func (e *Engine) notifyStudent(tx Tx, req Request, meal MealType, dish *Dish) error {
	label := "Breakfast"
	if meal == MealLunch {
		label = "Lunch"
	}

	parts := []string{"Meal issued: " + label + "."}
	if dish != nil {
		parts = append(parts, "Dish: "+dish.Name+".")
	}
	if req.IssuerID != req.StudentID {
		issuerName, err := tx.UserFullName(req.IssuerID)
		if err != nil {
			return err
		}
		if issuerName != "" {
			parts = append(parts, "Issued by "+issuerName+".")
		}
	}

	return tx.Notify(Notice{
		RecipientID: req.StudentID,
		Title:       "Meal",
		Message:     strings.Join(parts, " "),
		CreatedBy:   req.IssuerID,
	})
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
