package ledger

import (
	"fmt"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/money"
	"github.com/google/uuid"
)

var ErrCorruptAccount = aggregate.New(aggregate.KindIllegalState, "stored account violates its invariants")

// TransactionSnapshot is the persisted form of a Transaction. Amount is the
// unsigned magnitude.
type TransactionSnapshot struct {
	ID              uuid.UUID
	Kind            Kind
	Amount          int64
	Description     string
	Date            time.Time
	Source          string
	Recipient       string
	RoommateID      uuid.UUID
	ShoppingSpreeID uuid.UUID
	CreatedAt       time.Time
}

// AccountSnapshot is the persisted form of an Account.
type AccountSnapshot struct {
	ID             uuid.UUID
	HouseholdID    uuid.UUID
	Name           string
	CurrencyCode   string
	CurrencyScale  int
	OpeningBalance int64
	Balance        int64
	CreatedAt      time.Time
	Transactions   []TransactionSnapshot
}

func (t *Transaction) Snapshot() TransactionSnapshot {
	return TransactionSnapshot{
		ID:              t.id,
		Kind:            t.kind,
		Amount:          t.amount.Amount(),
		Description:     t.description,
		Date:            t.date,
		Source:          t.source,
		Recipient:       t.recipient,
		RoommateID:      t.roommateID,
		ShoppingSpreeID: t.shoppingSpreeID,
		CreatedAt:       t.createdAt,
	}
}

func (a *Account) Snapshot() AccountSnapshot {
	txs := a.Transactions()
	s := AccountSnapshot{
		ID:             a.id,
		HouseholdID:    a.householdID,
		Name:           a.name,
		CurrencyCode:   a.Currency().Code(),
		CurrencyScale:  a.Currency().Scale(),
		OpeningBalance: a.opening.Amount(),
		Balance:        a.balance.Amount(),
		CreatedAt:      a.createdAt,
		Transactions:   make([]TransactionSnapshot, 0, len(txs)),
	}
	for _, t := range txs {
		s.Transactions = append(s.Transactions, t.Snapshot())
	}
	return s
}

// RestoreAccount rebuilds an Account loaded from storage. The stored balance
// must equal the fold over the stored transactions.
func RestoreAccount(s AccountSnapshot) (*Account, error) {
	const op = "restore account"
	cur, err := money.NewCurrency(s.CurrencyCode, s.CurrencyScale)
	if err != nil {
		return nil, err
	}
	a := &Account{
		id:           s.ID,
		householdID:  s.HouseholdID,
		name:         s.Name,
		opening:      money.New(s.OpeningBalance, cur),
		balance:      money.New(s.OpeningBalance, cur),
		transactions: make(map[uuid.UUID]*Transaction, len(s.Transactions)),
		createdAt:    s.CreatedAt,
	}
	for _, ts := range s.Transactions {
		if !ts.Kind.valid() {
			return nil, aggregate.Fail(ErrCorruptAccount, op, fmt.Sprintf("transaction %s has kind %q", ts.ID, ts.Kind))
		}
		if ts.Amount <= 0 {
			return nil, aggregate.Fail(ErrCorruptAccount, op, fmt.Sprintf("transaction %s has amount %d", ts.ID, ts.Amount))
		}
		if ts.ShoppingSpreeID != uuid.Nil && ts.Kind != KindShoppingExpense {
			return nil, aggregate.Fail(ErrCorruptAccount, op, fmt.Sprintf("%s transaction %s is linked to a spree", ts.Kind, ts.ID))
		}
		t := &Transaction{
			id:              ts.ID,
			kind:            ts.Kind,
			accountID:       a.id,
			amount:          money.New(ts.Amount, cur),
			description:     ts.Description,
			date:            ts.Date,
			source:          ts.Source,
			recipient:       ts.Recipient,
			roommateID:      ts.RoommateID,
			shoppingSpreeID: ts.ShoppingSpreeID,
			createdAt:       ts.CreatedAt,
		}
		if err := a.AddTransaction(t); err != nil {
			return nil, aggregate.Fail(ErrCorruptAccount, op, err.Error())
		}
	}
	if a.balance.Amount() != s.Balance {
		return nil, aggregate.Fail(ErrCorruptAccount, op,
			fmt.Sprintf("stored balance %d, folded %d", s.Balance, a.balance.Amount()))
	}
	return a, nil
}
