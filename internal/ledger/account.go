package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/money"
	"github.com/google/uuid"
)

// Account holds a running balance in one currency and owns the transactions
// booked against it.
//
// Invariant: balance == opening + sum of SignedAmount over transactions.
type Account struct {
	id           uuid.UUID
	householdID  uuid.UUID
	name         string
	opening      money.Money
	balance      money.Money
	transactions map[uuid.UUID]*Transaction
	createdAt    time.Time
}

// NewAccount opens an account for a household with an opening balance in
// the smallest unit of currency.
func NewAccount(householdID uuid.UUID, name string, currency money.Currency, openingBalance int64) (*Account, error) {
	const op = "new account"
	if householdID == uuid.Nil {
		return nil, aggregate.Fail(ErrInvalidAccount, op, "household is required")
	}
	if currency.IsZero() {
		return nil, aggregate.Fail(ErrInvalidAccount, op, "currency is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregate.Fail(ErrInvalidAccountName, op, "")
	}
	opening := money.New(openingBalance, currency)
	return &Account{
		id:           uuid.New(),
		householdID:  householdID,
		name:         name,
		opening:      opening,
		balance:      opening,
		transactions: make(map[uuid.UUID]*Transaction),
		createdAt:    time.Now().UTC(),
	}, nil
}

func (a *Account) ID() uuid.UUID               { return a.id }
func (a *Account) HouseholdID() uuid.UUID      { return a.householdID }
func (a *Account) Name() string                { return a.name }
func (a *Account) Balance() money.Money        { return a.balance }
func (a *Account) OpeningBalance() money.Money { return a.opening }
func (a *Account) Currency() money.Currency    { return a.balance.Currency() }
func (a *Account) CreatedAt() time.Time        { return a.createdAt }
func (a *Account) Len() int                    { return len(a.transactions) }

// ChangeName renames the account.
func (a *Account) ChangeName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return aggregate.Fail(ErrInvalidAccountName, "change account name", "")
	}
	a.name = name
	return nil
}

// Transaction looks up a booked transaction.
func (a *Account) Transaction(id uuid.UUID) (*Transaction, bool) {
	t, ok := a.transactions[id]
	return t, ok
}

// Transactions returns the booked transactions ordered by date, then by
// booking time.
func (a *Account) Transactions() []*Transaction {
	out := make([]*Transaction, 0, len(a.transactions))
	for _, t := range a.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i], out[j]
		if !ti.date.Equal(tj.date) {
			return ti.date.Before(tj.date)
		}
		if !ti.createdAt.Equal(tj.createdAt) {
			return ti.createdAt.Before(tj.createdAt)
		}
		return ti.id.String() < tj.id.String()
	})
	return out
}

// AddTransaction books t and moves the balance by its signed amount. It is
// the only way the balance increases or decreases.
func (a *Account) AddTransaction(t *Transaction) error {
	const op = "add transaction"
	if t == nil {
		return aggregate.Fail(ErrNullTransaction, op, "")
	}
	if _, ok := a.transactions[t.id]; ok {
		return aggregate.Fail(ErrTransactionAlreadyPresent, op, t.id.String())
	}
	if t.accountID != a.id {
		return aggregate.Fail(ErrForeignAccount, op, t.id.String())
	}
	balance, err := a.balance.Add(t.SignedAmount())
	if err != nil {
		return err
	}
	a.transactions[t.id] = t
	a.balance = balance
	return nil
}

// RemoveTransaction un-books a transaction and applies the inverse delta.
func (a *Account) RemoveTransaction(id uuid.UUID) (*Transaction, error) {
	const op = "remove transaction"
	t, ok := a.transactions[id]
	if !ok {
		return nil, aggregate.Fail(ErrTransactionNotFound, op, id.String())
	}
	balance, err := a.balance.Sub(t.SignedAmount())
	if err != nil {
		return nil, err
	}
	delete(a.transactions, id)
	a.balance = balance
	return t, nil
}

// ChangeTransactionAmount replaces the amount of a booked transaction and
// re-folds the balance.
func (a *Account) ChangeTransactionAmount(id uuid.UUID, amount int64) error {
	const op = "set amount"
	t, ok := a.transactions[id]
	if !ok {
		return aggregate.Fail(ErrTransactionNotFound, op, id.String())
	}
	if err := checkAmount(op, amount); err != nil {
		return err
	}
	updated := *t
	updated.amount = money.New(amount, a.Currency())

	balance, err := a.balance.Sub(t.SignedAmount())
	if err != nil {
		return err
	}
	if balance, err = balance.Add(updated.SignedAmount()); err != nil {
		return err
	}
	t.amount = updated.amount
	a.balance = balance
	return nil
}

// CreateIncome builds an income against a and books it.
func (a *Account) CreateIncome(amount int64, description string, date time.Time, source string, roommateID uuid.UUID) (*Transaction, error) {
	t, err := NewIncome(a, amount, description, date, source, roommateID)
	if err != nil {
		return nil, err
	}
	if err := a.AddTransaction(t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateExpense builds an expense against a and books it.
func (a *Account) CreateExpense(amount int64, description string, date time.Time, recipient string, roommateID uuid.UUID) (*Transaction, error) {
	t, err := NewExpense(a, amount, description, date, recipient, roommateID)
	if err != nil {
		return nil, err
	}
	if err := a.AddTransaction(t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddShoppingExpense builds a shopping expense against a and books it.
func (a *Account) AddShoppingExpense(amount int64, description string, date time.Time, recipient string, roommateID uuid.UUID) (*Transaction, error) {
	t, err := NewShoppingExpense(a, amount, description, date, recipient, roommateID)
	if err != nil {
		return nil, err
	}
	if err := a.AddTransaction(t); err != nil {
		return nil, err
	}
	return t, nil
}

// VerifyBalance recomputes the fold over the booked transactions and fails
// with ErrBalanceDrift if it differs from the running balance.
func (a *Account) VerifyBalance() error {
	sum := a.opening
	for _, t := range a.transactions {
		var err error
		if sum, err = sum.Add(t.SignedAmount()); err != nil {
			return err
		}
	}
	if sum != a.balance {
		return aggregate.Fail(ErrBalanceDrift, "verify balance",
			fmt.Sprintf("running %d, folded %d", a.balance.Amount(), sum.Amount()))
	}
	return nil
}
