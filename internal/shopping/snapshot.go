package shopping

import (
	"fmt"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

type ItemSnapshot struct {
	ID        uuid.UUID
	Name      string
	Quantity  int
	Picked    bool
	Position  int64
	CreatedAt time.Time
}

type ListSnapshot struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Name        string
	CreatedAt   time.Time
	Items       []ItemSnapshot
}

type SpreeSnapshot struct {
	ID                uuid.UUID
	HouseholdID       uuid.UUID
	AccountID         uuid.UUID
	RoommateUserID    uuid.UUID
	Date              time.Time
	ShoppingExpenseID uuid.UUID
	CreatedAt         time.Time
	Items             []SpreeItem
}

func (l *List) Snapshot() ListSnapshot {
	s := ListSnapshot{
		ID:          l.id,
		HouseholdID: l.householdID,
		Name:        l.name,
		CreatedAt:   l.createdAt,
	}
	for _, it := range l.Items() {
		s.Items = append(s.Items, ItemSnapshot{
			ID:        it.id,
			Name:      it.name,
			Quantity:  it.quantity,
			Picked:    it.picked,
			Position:  it.position,
			CreatedAt: it.createdAt,
		})
	}
	return s
}

// RestoreList rebuilds a List loaded from storage.
func RestoreList(s ListSnapshot) (*List, error) {
	l := &List{
		id:          s.ID,
		householdID: s.HouseholdID,
		name:        s.Name,
		items:       make(map[uuid.UUID]*Item, len(s.Items)),
		createdAt:   s.CreatedAt,
	}
	for _, is := range s.Items {
		if _, dup := l.items[is.ID]; dup {
			return nil, aggregate.Fail(ErrCorruptList, "restore shopping list", fmt.Sprintf("duplicate item %s", is.ID))
		}
		if is.Quantity <= 0 {
			return nil, aggregate.Fail(ErrCorruptList, "restore shopping list", fmt.Sprintf("item %s has quantity %d", is.ID, is.Quantity))
		}
		l.items[is.ID] = &Item{
			id:        is.ID,
			name:      is.Name,
			quantity:  is.Quantity,
			picked:    is.Picked,
			position:  is.Position,
			createdAt: is.CreatedAt,
		}
		if is.Position > l.nextPos {
			l.nextPos = is.Position
		}
	}
	return l, nil
}

func (s *Spree) Snapshot() SpreeSnapshot {
	return SpreeSnapshot{
		ID:                s.id,
		HouseholdID:       s.householdID,
		AccountID:         s.accountID,
		RoommateUserID:    s.roommateUserID,
		Date:              s.date,
		ShoppingExpenseID: s.shoppingExpenseID,
		CreatedAt:         s.createdAt,
		Items:             s.Items(),
	}
}

// RestoreSpree rebuilds a Spree loaded from storage.
func RestoreSpree(s SpreeSnapshot) *Spree {
	items := make([]SpreeItem, len(s.Items))
	copy(items, s.Items)
	return &Spree{
		id:                s.ID,
		householdID:       s.HouseholdID,
		accountID:         s.AccountID,
		roommateUserID:    s.RoommateUserID,
		date:              s.Date,
		items:             items,
		shoppingExpenseID: s.ShoppingExpenseID,
		createdAt:         s.CreatedAt,
	}
}
