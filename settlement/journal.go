package settlement

import (
	"time"

	"github.com/google/uuid"
)

// gateCheck rejects a second claim for the same (student, meal, day) before any
// funds or stock are touched. The storage layer's unique index remains the
// ultimate arbiter; this is the fast-fail path.
func gateCheck(tx Tx, studentID uuid.UUID, meal MealType, day time.Time) error {
	exists, err := tx.HasClaim(studentID, meal, day)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyClaimed
	}
	return nil
}

// appendClaim writes the journal row. When the issuer is the student, the
// receipt confirmation is set automatically (self-service edge case).
func appendClaim(tx Tx, req Request, meal MealType, day, now time.Time) (uuid.UUID, error) {
	var received *bool
	if req.IssuerID == req.StudentID {
		yes := true
		received = &yes
	}

	return tx.AppendClaim(NewClaim{
		StudentID:       req.StudentID,
		MealType:        meal,
		Day:             day,
		MenuItemID:      req.MenuItemID,
		IssuerID:        req.IssuerID,
		ClaimedAt:       now,
		StudentReceived: received,
	})
}
