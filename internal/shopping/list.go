// Package shopping holds shopping lists and the sprees that settle picked
// items against a household account.
package shopping

import (
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

var (
	ErrInvalidList   = aggregate.New(aggregate.KindInvalidArgument, "invalid shopping list")
	ErrInvalidItem   = aggregate.New(aggregate.KindInvalidArgument, "invalid shopping list item")
	ErrItemNotFound  = aggregate.New(aggregate.KindNotFound, "item not found")
	ErrAlreadyPicked = aggregate.New(aggregate.KindIllegalState, "item is already picked")
	ErrNotPicked     = aggregate.New(aggregate.KindIllegalState, "item is not picked")
	ErrCorruptList   = aggregate.New(aggregate.KindIllegalState, "stored shopping list violates its invariants")
)

// Item is one line on a shopping list.
type Item struct {
	id        uuid.UUID
	name      string
	quantity  int
	picked    bool
	position  int64
	createdAt time.Time
}

func (i *Item) ID() uuid.UUID        { return i.id }
func (i *Item) Name() string         { return i.name }
func (i *Item) Quantity() int        { return i.quantity }
func (i *Item) Picked() bool         { return i.picked }
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// Pick marks the item as in the basket.
func (i *Item) Pick() error {
	if i.picked {
		return aggregate.Fail(ErrAlreadyPicked, "pick item", i.name)
	}
	i.picked = true
	return nil
}

// Unpick puts the item back on the open list.
func (i *Item) Unpick() error {
	if !i.picked {
		return aggregate.Fail(ErrNotPicked, "unpick item", i.name)
	}
	i.picked = false
	return nil
}

// List is a household's shopping list. It owns its items.
type List struct {
	id          uuid.UUID
	householdID uuid.UUID
	name        string
	items       map[uuid.UUID]*Item
	nextPos     int64
	createdAt   time.Time
}

// NewList creates an empty list for a household.
func NewList(householdID uuid.UUID, name string) (*List, error) {
	const op = "new shopping list"
	if householdID == uuid.Nil {
		return nil, aggregate.Fail(ErrInvalidList, op, "household is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregate.Fail(ErrInvalidList, op, "name is required")
	}
	return &List{
		id:          uuid.New(),
		householdID: householdID,
		name:        name,
		items:       make(map[uuid.UUID]*Item),
		createdAt:   time.Now().UTC(),
	}, nil
}

func (l *List) ID() uuid.UUID          { return l.id }
func (l *List) HouseholdID() uuid.UUID { return l.householdID }
func (l *List) Name() string           { return l.name }
func (l *List) CreatedAt() time.Time   { return l.createdAt }
func (l *List) Len() int               { return len(l.items) }

func (l *List) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return aggregate.Fail(ErrInvalidList, "rename shopping list", "name is required")
	}
	l.name = name
	return nil
}

// AddItem appends an unpicked item.
func (l *List) AddItem(name string, quantity int) (*Item, error) {
	const op = "add item"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregate.Fail(ErrInvalidItem, op, "name is required")
	}
	if quantity <= 0 {
		return nil, aggregate.Fail(ErrInvalidItem, op, "quantity must be positive")
	}
	l.nextPos++
	it := &Item{
		id:        uuid.New(),
		name:      name,
		quantity:  quantity,
		position:  l.nextPos,
		createdAt: time.Now().UTC(),
	}
	l.items[it.id] = it
	return it, nil
}

// RemoveItem drops an item from the list.
func (l *List) RemoveItem(id uuid.UUID) (*Item, error) {
	it, ok := l.items[id]
	if !ok {
		return nil, aggregate.Fail(ErrItemNotFound, "remove item", id.String())
	}
	delete(l.items, id)
	return it, nil
}

func (l *List) Item(id uuid.UUID) (*Item, bool) {
	it, ok := l.items[id]
	return it, ok
}

func (l *List) PickItem(id uuid.UUID) error {
	it, ok := l.items[id]
	if !ok {
		return aggregate.Fail(ErrItemNotFound, "pick item", id.String())
	}
	return it.Pick()
}

func (l *List) UnpickItem(id uuid.UUID) error {
	it, ok := l.items[id]
	if !ok {
		return aggregate.Fail(ErrItemNotFound, "unpick item", id.String())
	}
	return it.Unpick()
}

// Items returns every item in insertion order.
func (l *List) Items() []*Item {
	out := make([]*Item, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].position < out[j].position })
	return out
}

// PickedItems returns the picked items in insertion order.
func (l *List) PickedItems() []*Item {
	var out []*Item
	for _, it := range l.Items() {
		if it.picked {
			out = append(out, it)
		}
	}
	return out
}
