package settlement

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memUser struct {
	ID       uuid.UUID
	FullName string
	Balance  decimal.Decimal
}

type memSubscription struct {
	ID            uuid.UUID
	StudentID     uuid.UUID
	MealType      MealType
	DaysRemaining int
	Status        string
}

type memProduct struct {
	ID       uuid.UUID
	Name     string
	Unit     string
	Quantity decimal.Decimal
}

type memRecipeLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

type memClaim struct {
	ID         uuid.UUID
	StudentID  uuid.UUID
	MealType   MealType
	Day        time.Time
	MenuItemID *uuid.UUID
	IssuerID   uuid.UUID
	ClaimedAt  time.Time
	Received   *bool
	MarkedAt   *time.Time
}

// MemStore is an in-memory Store used by the engine tests. InTx snapshots the
// whole state before running fn and restores it when fn fails, so aborted
// settlements are observable-effect-free here too.
type MemStore struct {
	mu sync.Mutex

	users        map[uuid.UUID]*memUser
	subs         []*memSubscription
	dishes       map[uuid.UUID]*Dish
	recipes      map[uuid.UUID][]memRecipeLine
	products     map[uuid.UUID]*memProduct
	productOrder []uuid.UUID
	claims       []*memClaim
	notices      []Notice
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[uuid.UUID]*memUser),
		dishes:   make(map[uuid.UUID]*Dish),
		recipes:  make(map[uuid.UUID][]memRecipeLine),
		products: make(map[uuid.UUID]*memProduct),
	}
}

func (s *MemStore) InTx(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	users        map[uuid.UUID]*memUser
	subs         []*memSubscription
	recipes      map[uuid.UUID][]memRecipeLine
	products     map[uuid.UUID]*memProduct
	productOrder []uuid.UUID
	claims       []*memClaim
	notices      []Notice
}

func (s *MemStore) snapshot() memSnapshot {
	snap := memSnapshot{
		users:        make(map[uuid.UUID]*memUser, len(s.users)),
		products:     make(map[uuid.UUID]*memProduct, len(s.products)),
		recipes:      make(map[uuid.UUID][]memRecipeLine, len(s.recipes)),
		productOrder: append([]uuid.UUID(nil), s.productOrder...),
		notices:      append([]Notice(nil), s.notices...),
	}
	for id, u := range s.users {
		copied := *u
		snap.users[id] = &copied
	}
	for _, sub := range s.subs {
		copied := *sub
		snap.subs = append(snap.subs, &copied)
	}
	for id, p := range s.products {
		copied := *p
		snap.products[id] = &copied
	}
	for id, lines := range s.recipes {
		snap.recipes[id] = append([]memRecipeLine(nil), lines...)
	}
	for _, c := range s.claims {
		copied := *c
		snap.claims = append(snap.claims, &copied)
	}
	return snap
}

func (s *MemStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.subs = snap.subs
	s.recipes = snap.recipes
	s.products = snap.products
	s.productOrder = snap.productOrder
	s.claims = snap.claims
	s.notices = snap.notices
}

// Fixture builders.

func (s *MemStore) AddUser(fullName string, balance decimal.Decimal) uuid.UUID {
	id := uuid.New()
	s.users[id] = &memUser{ID: id, FullName: fullName, Balance: balance}
	return id
}

// AddSubscription appends a subscription; a later call is the more recently
// created one and wins selection ties.
func (s *MemStore) AddSubscription(studentID uuid.UUID, meal MealType, days int) uuid.UUID {
	id := uuid.New()
	s.subs = append(s.subs, &memSubscription{
		ID: id, StudentID: studentID, MealType: meal, DaysRemaining: days, Status: "active",
	})
	return id
}

func (s *MemStore) AddDish(name string, category MealType, price decimal.Decimal, available bool) uuid.UUID {
	id := uuid.New()
	s.dishes[id] = &Dish{ID: id, Name: name, Category: category, Price: price, Available: available}
	return id
}

func (s *MemStore) AddProduct(name, unit string, quantity decimal.Decimal) uuid.UUID {
	id := uuid.New()
	s.products[id] = &memProduct{ID: id, Name: name, Unit: unit, Quantity: quantity}
	s.productOrder = append(s.productOrder, id)
	return id
}

// AddRecipeLine records the quantity of one product for one dish; writing the
// same (dish, product) pair again replaces the quantity.
func (s *MemStore) AddRecipeLine(dishID, productID uuid.UUID, quantity decimal.Decimal) {
	lines := s.recipes[dishID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			return
		}
	}
	s.recipes[dishID] = append(lines, memRecipeLine{ProductID: productID, Quantity: quantity})
}

// Fixture accessors.

func (s *MemStore) ProductQuantity(id uuid.UUID) decimal.Decimal {
	return s.products[id].Quantity
}

func (s *MemStore) UserBalance(id uuid.UUID) decimal.Decimal {
	return s.users[id].Balance
}

func (s *MemStore) SubscriptionState(id uuid.UUID) (days int, status string) {
	for _, sub := range s.subs {
		if sub.ID == id {
			return sub.DaysRemaining, sub.Status
		}
	}
	return 0, ""
}

func (s *MemStore) ClaimCount() int { return len(s.claims) }

func (s *MemStore) ClaimReceipt(id uuid.UUID) *bool {
	for _, c := range s.claims {
		if c.ID == id {
			return c.Received
		}
	}
	return nil
}

func (s *MemStore) Notices() []Notice { return s.notices }

type memTx struct {
	s *MemStore
}

func (t *memTx) HasClaim(studentID uuid.UUID, meal MealType, day time.Time) (bool, error) {
	for _, c := range t.s.claims {
		if c.StudentID == studentID && c.MealType == meal && c.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) HasAnyClaim(studentID uuid.UUID, day time.Time) (bool, error) {
	for _, c := range t.s.claims {
		if c.StudentID == studentID && c.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) AppendClaim(c NewClaim) (uuid.UUID, error) {
	if exists, _ := t.HasClaim(c.StudentID, c.MealType, c.Day); exists {
		return uuid.Nil, ErrAlreadyClaimed
	}
	claim := &memClaim{
		ID:         uuid.New(),
		StudentID:  c.StudentID,
		MealType:   c.MealType,
		Day:        c.Day,
		MenuItemID: c.MenuItemID,
		IssuerID:   c.IssuerID,
		ClaimedAt:  c.ClaimedAt,
		Received:   c.StudentReceived,
	}
	if c.StudentReceived != nil {
		at := c.ClaimedAt
		claim.MarkedAt = &at
	}
	t.s.claims = append(t.s.claims, claim)
	return claim.ID, nil
}

func (t *memTx) ClaimByID(claimID, studentID uuid.UUID) (*Claim, error) {
	for _, c := range t.s.claims {
		if c.ID == claimID && c.StudentID == studentID {
			return &Claim{ID: c.ID, StudentID: c.StudentID, MealType: c.MealType, Received: c.Received}, nil
		}
	}
	return nil, nil
}

func (t *memTx) SetClaimReceipt(claimID uuid.UUID, received bool, at time.Time) error {
	for _, c := range t.s.claims {
		if c.ID == claimID {
			v := received
			c.Received = &v
			c.MarkedAt = &at
			return nil
		}
	}
	return fmt.Errorf("claim %s not found", claimID)
}

func (t *memTx) LatestActiveSubscription(studentID uuid.UUID, meal MealType) (*Subscription, error) {
	for i := len(t.s.subs) - 1; i >= 0; i-- {
		sub := t.s.subs[i]
		if sub.StudentID != studentID || sub.Status != "active" || sub.DaysRemaining <= 0 {
			continue
		}
		if sub.MealType != meal && sub.MealType != MealBoth {
			continue
		}
		return &Subscription{ID: sub.ID, MealType: sub.MealType, DaysRemaining: sub.DaysRemaining}, nil
	}
	return nil, nil
}

func (t *memTx) SpendSubscriptionDay(subscriptionID uuid.UUID) error {
	for _, sub := range t.s.subs {
		if sub.ID != subscriptionID {
			continue
		}
		if sub.DaysRemaining <= 0 {
			return fmt.Errorf("subscription %s has no remaining days", subscriptionID)
		}
		sub.DaysRemaining--
		if sub.DaysRemaining == 0 {
			sub.Status = "expired"
		}
		return nil
	}
	return fmt.Errorf("subscription %s not found", subscriptionID)
}

func (t *memTx) Balance(studentID uuid.UUID) (decimal.Decimal, error) {
	user, ok := t.s.users[studentID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	return user.Balance, nil
}

func (t *memTx) ChargeBalance(studentID uuid.UUID, amount decimal.Decimal) error {
	user, ok := t.s.users[studentID]
	if !ok {
		return ErrNotFound
	}
	if user.Balance.LessThan(amount) {
		return &InsufficientFundsError{Required: amount, Balance: user.Balance}
	}
	user.Balance = user.Balance.Sub(amount)
	return nil
}

func (t *memTx) MinAvailablePrice(meal MealType) (decimal.Decimal, error) {
	var min decimal.Decimal
	found := false
	for _, d := range t.s.dishes {
		if !d.Available || d.Category != meal {
			continue
		}
		if !found || d.Price.LessThan(min) {
			min = d.Price
			found = true
		}
	}
	if !found {
		return decimal.Zero, nil
	}
	return min, nil
}

func (t *memTx) Dish(id uuid.UUID) (*Dish, error) {
	d, ok := t.s.dishes[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (t *memTx) RecipeIngredients(dishID uuid.UUID) ([]RequiredIngredient, error) {
	var required []RequiredIngredient
	for _, line := range t.s.recipes[dishID] {
		p := t.s.products[line.ProductID]
		required = append(required, RequiredIngredient{
			ProductID: p.ID,
			Name:      p.Name,
			Unit:      p.Unit,
			Needed:    line.Quantity,
			Available: p.Quantity,
		})
	}
	sort.Slice(required, func(i, j int) bool { return required[i].Name < required[j].Name })
	return required, nil
}

func (t *memTx) IngredientByName(name string) (*RequiredIngredient, error) {
	for _, id := range t.s.productOrder {
		p := t.s.products[id]
		if p.Name == name {
			return &RequiredIngredient{
				ProductID: p.ID,
				Name:      p.Name,
				Unit:      p.Unit,
				Available: p.Quantity,
			}, nil
		}
	}
	return nil, nil
}

func (t *memTx) TakeStock(productID uuid.UUID, qty decimal.Decimal) error {
	p, ok := t.s.products[productID]
	if !ok {
		return fmt.Errorf("product %s not found", productID)
	}
	if p.Quantity.LessThan(qty) {
		return fmt.Errorf("stock for product %s changed concurrently", productID)
	}
	p.Quantity = p.Quantity.Sub(qty)
	return nil
}

func (t *memTx) UserFullName(id uuid.UUID) (string, error) {
	if user, ok := t.s.users[id]; ok {
		return user.FullName, nil
	}
	return "", nil
}

func (t *memTx) Notify(n Notice) error {
	t.s.notices = append(t.s.notices, n)
	return nil
}
