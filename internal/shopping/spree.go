package shopping

import (
	"time"

	"github.com/google/uuid"
)

// SpreeItem is a frozen copy of a picked list item.
type SpreeItem struct {
	ID       uuid.UUID
	Name     string
	Quantity int
}

// Spree records a dated shopping trip. Its items never change after
// creation; the settling expense lives on the account and the spree only
// keeps its id.
type Spree struct {
	id                uuid.UUID
	householdID       uuid.UUID
	accountID         uuid.UUID
	roommateUserID    uuid.UUID
	date              time.Time
	items             []SpreeItem
	shoppingExpenseID uuid.UUID
	createdAt         time.Time
}

func (s *Spree) ID() uuid.UUID                { return s.id }
func (s *Spree) HouseholdID() uuid.UUID       { return s.householdID }
func (s *Spree) AccountID() uuid.UUID         { return s.accountID }
func (s *Spree) RoommateUserID() uuid.UUID    { return s.roommateUserID }
func (s *Spree) Date() time.Time              { return s.date }
func (s *Spree) ShoppingExpenseID() uuid.UUID { return s.shoppingExpenseID }
func (s *Spree) CreatedAt() time.Time         { return s.createdAt }

// Items returns a copy of the frozen items.
func (s *Spree) Items() []SpreeItem {
	out := make([]SpreeItem, len(s.items))
	copy(out, s.items)
	return out
}

// IsSettled reports whether an expense is linked.
func (s *Spree) IsSettled() bool {
	return s.shoppingExpenseID != uuid.Nil
}

// RemoveRoommate detaches the shopper. The spree is kept.
func (s *Spree) RemoveRoommate() {
	s.roommateUserID = uuid.Nil
}
