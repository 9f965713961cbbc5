package app

import (
	"context"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/shopping"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

func (a *App) CreateShoppingList(ctx context.Context, householdID uuid.UUID, name string) (*shopping.List, error) {
	const op = "create shopping list"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var l *shopping.List
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		if l, err = shopping.NewList(h.ID(), name); err != nil {
			return err
		}
		if err := s.Lists.Save(ctx, l); err != nil {
			return err
		}
		o.broadcast("shopping_list", "created", h.ID(), l.ID(), map[string]any{"name": l.Name()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (a *App) RenameShoppingList(ctx context.Context, householdID, listID uuid.UUID, name string) error {
	return a.editList(ctx, "rename shopping list", "renamed", householdID, listID, func(l *shopping.List) (uuid.UUID, error) {
		return l.ID(), l.Rename(name)
	})
}

func (a *App) DeleteShoppingList(ctx context.Context, householdID, listID uuid.UUID) error {
	const op = "delete shopping list"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		l, err := loadList(ctx, s, op, h, listID)
		if err != nil {
			return err
		}
		if err := s.Lists.Delete(ctx, l.ID()); err != nil {
			return err
		}
		o.broadcast("shopping_list", "deleted", h.ID(), l.ID(), nil)
		return nil
	})
}

func (a *App) AddListItem(ctx context.Context, householdID, listID uuid.UUID, name string, quantity int) (*shopping.Item, error) {
	var it *shopping.Item
	err := a.editList(ctx, "add list item", "item_added", householdID, listID, func(l *shopping.List) (uuid.UUID, error) {
		var err error
		if it, err = l.AddItem(name, quantity); err != nil {
			return uuid.Nil, err
		}
		return it.ID(), nil
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (a *App) RemoveListItem(ctx context.Context, householdID, listID, itemID uuid.UUID) error {
	return a.editList(ctx, "remove list item", "item_removed", householdID, listID, func(l *shopping.List) (uuid.UUID, error) {
		_, err := l.RemoveItem(itemID)
		return itemID, err
	})
}

func (a *App) PickItem(ctx context.Context, householdID, listID, itemID uuid.UUID) error {
	return a.editList(ctx, "pick item", "item_picked", householdID, listID, func(l *shopping.List) (uuid.UUID, error) {
		return itemID, l.PickItem(itemID)
	})
}

func (a *App) UnpickItem(ctx context.Context, householdID, listID, itemID uuid.UUID) error {
	return a.editList(ctx, "unpick item", "item_unpicked", householdID, listID, func(l *shopping.List) (uuid.UUID, error) {
		return itemID, l.UnpickItem(itemID)
	})
}

// editList loads a list of the caller's household, applies edit and saves.
// edit returns the id the notification is about.
func (a *App) editList(ctx context.Context, op, action string, householdID, listID uuid.UUID, edit func(*shopping.List) (uuid.UUID, error)) error {
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		l, err := loadList(ctx, s, op, h, listID)
		if err != nil {
			return err
		}
		id, err := edit(l)
		if err != nil {
			return err
		}
		if err := s.Lists.Save(ctx, l); err != nil {
			return err
		}
		o.broadcast("shopping_list", action, h.ID(), id, map[string]any{"list_id": l.ID()})
		return nil
	})
}

// SpreeInput describes a shopping trip paid by the caller.
type SpreeInput struct {
	ListID      uuid.UUID
	AccountID   uuid.UUID
	Date        time.Time
	Amount      int64
	Description string
	Recipient   string
}

// CreateShoppingSpree moves the picked items of a list into a spree settled
// by a shopping expense on the account.
func (a *App) CreateShoppingSpree(ctx context.Context, householdID uuid.UUID, in SpreeInput) (*shopping.Spree, *ledger.Transaction, error) {
	const op = "create shopping spree"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	var (
		spree   *shopping.Spree
		expense *ledger.Transaction
	)
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		l, err := s.Lists.Get(ctx, in.ListID)
		if err != nil {
			return err
		}
		if l == nil {
			return notFound(op, "shopping list", in.ListID)
		}
		acc, err := s.Accounts.Get(ctx, in.AccountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return notFound(op, "account", in.AccountID)
		}
		spree, expense, err = a.shopping.Create(shopping.CreateSpreeParams{
			Household:      h,
			List:           l,
			Account:        acc,
			RoommateUserID: actor,
			Date:           in.Date,
			Amount:         in.Amount,
			Description:    in.Description,
			Recipient:      in.Recipient,
		})
		if err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		if err := s.Sprees.Save(ctx, spree); err != nil {
			return err
		}
		if err := s.Lists.Save(ctx, l); err != nil {
			return err
		}
		extra := balanceExtra(acc)
		extra["list_id"] = l.ID()
		extra["transaction_id"] = expense.ID()
		extra["items"] = len(spree.Items())
		o.broadcast("shopping_spree", "created", h.ID(), spree.ID(), extra)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	a.logger.InfoContext(ctx, "shopping spree created",
		"household_id", householdID, "spree_id", spree.ID(), "transaction_id", expense.ID(), "items", len(spree.Items()))
	return spree, expense, nil
}

// DeleteShoppingSpree removes the spree and the expense that settled it.
func (a *App) DeleteShoppingSpree(ctx context.Context, householdID, spreeID uuid.UUID) error {
	const op = "delete shopping spree"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	var res shopping.DeleteResult
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		spree, err := s.Sprees.Get(ctx, spreeID)
		if err != nil {
			return err
		}
		if spree == nil {
			return notFound(op, "shopping spree", spreeID)
		}
		if spree.HouseholdID() != h.ID() {
			return aggregate.Fail(household.ErrCrossHouseholdReference, op, "shopping spree "+spreeID.String())
		}
		acc, err := loadAccount(ctx, s, op, h, spree.AccountID())
		if err != nil {
			return err
		}
		if res, err = a.shopping.Delete(spree, acc); err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		if err := s.Sprees.Delete(ctx, spree.ID()); err != nil {
			return err
		}
		o.broadcast("shopping_spree", "deleted", h.ID(), spree.ID(), balanceExtra(acc))
		return nil
	})
	if err != nil {
		return err
	}
	if res.Orphaned {
		a.logger.WarnContext(ctx, "shopping spree pointed at a missing expense", "spree_id", spreeID)
	}
	a.logger.InfoContext(ctx, "shopping spree deleted", "household_id", householdID, "spree_id", spreeID)
	return nil
}
