package app

import (
	"context"
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/money"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

// balanceExtra is the notification payload for a changed account.
func balanceExtra(acc *ledger.Account) map[string]any {
	return map[string]any{
		"account_id": acc.ID(),
		"name":       acc.Name(),
		"balance":    acc.Balance().Format(true),
	}
}

// CreateAccount opens an account in the household. An empty currency code
// means the configured default.
func (a *App) CreateAccount(ctx context.Context, householdID uuid.UUID, name, currencyCode string, openingBalance int64) (*ledger.Account, error) {
	const op = "create account"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	cur := a.currency
	if strings.TrimSpace(currencyCode) != "" {
		if cur, err = money.CurrencyFor(currencyCode); err != nil {
			return nil, err
		}
	}
	var acc *ledger.Account
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		if acc, err = ledger.NewAccount(h.ID(), name, cur, openingBalance); err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		o.broadcast("account", "created", h.ID(), acc.ID(), balanceExtra(acc))
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "account created", "household_id", householdID, "account_id", acc.ID(), "currency", cur.Code())
	return acc, nil
}

func (a *App) RenameAccount(ctx context.Context, householdID, accountID uuid.UUID, name string) error {
	const op = "rename account"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		acc, err := loadAccount(ctx, s, op, h, accountID)
		if err != nil {
			return err
		}
		if err := acc.ChangeName(name); err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		o.broadcast("account", "renamed", h.ID(), acc.ID(), balanceExtra(acc))
		return nil
	})
}

// DeleteAccount removes the account, its transactions and the sprees it
// settled.
func (a *App) DeleteAccount(ctx context.Context, householdID, accountID uuid.UUID) error {
	const op = "delete account"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		acc, err := loadAccount(ctx, s, op, h, accountID)
		if err != nil {
			return err
		}
		sprees, err := s.Sprees.ListByAccount(ctx, acc.ID())
		if err != nil {
			return err
		}
		for _, sp := range sprees {
			if err := s.Sprees.Delete(ctx, sp.ID()); err != nil {
				return err
			}
			o.broadcast("shopping_spree", "deleted", h.ID(), sp.ID(), nil)
		}
		if err := s.Accounts.Delete(ctx, acc.ID()); err != nil {
			return err
		}
		o.broadcast("account", "deleted", h.ID(), acc.ID(), nil)
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "account deleted", "household_id", householdID, "account_id", accountID)
	return nil
}

// BookInput describes an income or expense booked by the caller.
type BookInput struct {
	Kind        ledger.Kind
	Amount      int64
	Description string
	Date        time.Time
	Party       string
}

// BookTransaction books an income or expense on behalf of the caller.
func (a *App) BookTransaction(ctx context.Context, householdID, accountID uuid.UUID, in BookInput) (*ledger.Transaction, error) {
	const op = "book transaction"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var t *ledger.Transaction
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		acc, err := s.Accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return notFound(op, "account", accountID)
		}
		t, err = a.ledger.Book(h, acc, ledger.BookParams{
			Kind:           in.Kind,
			Amount:         in.Amount,
			Description:    in.Description,
			Date:           in.Date,
			Party:          in.Party,
			RoommateUserID: actor,
		})
		if err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		o.broadcast("transaction", "created", h.ID(), t.ID(), balanceExtra(acc))
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "transaction booked",
		"household_id", householdID, "account_id", accountID, "transaction_id", t.ID(), "kind", t.Kind())
	return t, nil
}

func (a *App) UpdateTransaction(ctx context.Context, householdID, accountID, transactionID uuid.UUID, p ledger.UpdateParams) (*ledger.Transaction, error) {
	const op = "update transaction"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var t *ledger.Transaction
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		acc, err := loadAccount(ctx, s, op, h, accountID)
		if err != nil {
			return err
		}
		if t, err = a.ledger.Update(acc, transactionID, p); err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		o.broadcast("transaction", "updated", h.ID(), t.ID(), balanceExtra(acc))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTransaction removes a transaction. A shopping expense that settles a
// spree is refused; delete the spree instead.
func (a *App) DeleteTransaction(ctx context.Context, householdID, accountID, transactionID uuid.UUID) error {
	const op = "delete transaction"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		acc, err := loadAccount(ctx, s, op, h, accountID)
		if err != nil {
			return err
		}
		if _, err := a.ledger.Delete(acc, transactionID); err != nil {
			return err
		}
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return err
		}
		o.broadcast("transaction", "deleted", h.ID(), transactionID, balanceExtra(acc))
		return nil
	})
}
