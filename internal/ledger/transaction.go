// Package ledger implements household accounts and the transactions booked
// against them. An account's balance only ever moves by adding or removing
// transactions.
package ledger

import (
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/money"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransaction        = aggregate.New(aggregate.KindInvalidArgument, "invalid transaction")
	ErrNullTransaction           = aggregate.New(aggregate.KindInvalidArgument, "transaction is nil")
	ErrInvalidLink               = aggregate.New(aggregate.KindInvalidArgument, "invalid shopping spree link")
	ErrInvalidAccount            = aggregate.New(aggregate.KindInvalidArgument, "invalid account")
	ErrInvalidAccountName        = aggregate.New(aggregate.KindInvalidArgument, "account name is required")
	ErrTransactionNotFound       = aggregate.New(aggregate.KindNotFound, "transaction not found")
	ErrForeignAccount            = aggregate.New(aggregate.KindForeignReference, "transaction belongs to another account")
	ErrTransactionAlreadyPresent = aggregate.New(aggregate.KindIllegalState, "transaction already booked on this account")
	ErrWrongKind                 = aggregate.New(aggregate.KindIllegalState, "operation does not apply to this transaction kind")
	ErrSettlesShoppingSpree      = aggregate.New(aggregate.KindIllegalState, "transaction settles a shopping spree; delete the spree instead")
	ErrBalanceDrift              = aggregate.New(aggregate.KindIllegalState, "balance does not match booked transactions")
)

// Kind discriminates the transaction variants.
type Kind string

const (
	KindIncome          Kind = "income"
	KindExpense         Kind = "expense"
	KindShoppingExpense Kind = "shopping_expense"
)

func (k Kind) valid() bool {
	switch k {
	case KindIncome, KindExpense, KindShoppingExpense:
		return true
	}
	return false
}

// IsExpense reports whether k belongs to the expense family.
func (k Kind) IsExpense() bool {
	return k == KindExpense || k == KindShoppingExpense
}

// Transaction is a ledger entry. Source is set for income, Recipient for the
// expense family, ShoppingSpreeID only for shopping expenses.
type Transaction struct {
	id              uuid.UUID
	kind            Kind
	accountID       uuid.UUID
	amount          money.Money
	description     string
	date            time.Time
	source          string
	recipient       string
	roommateID      uuid.UUID
	shoppingSpreeID uuid.UUID
	createdAt       time.Time
}

// NewIncome builds an income against account. The amount is a magnitude in
// the account currency's smallest unit. roommateID may be uuid.Nil.
func NewIncome(account *Account, amount int64, description string, date time.Time, source string, roommateID uuid.UUID) (*Transaction, error) {
	return newTransaction(KindIncome, account, amount, description, date, source, roommateID)
}

// NewExpense builds an expense against account.
func NewExpense(account *Account, amount int64, description string, date time.Time, recipient string, roommateID uuid.UUID) (*Transaction, error) {
	return newTransaction(KindExpense, account, amount, description, date, recipient, roommateID)
}

// NewShoppingExpense builds the expense variant that settles a shopping spree.
func NewShoppingExpense(account *Account, amount int64, description string, date time.Time, recipient string, roommateID uuid.UUID) (*Transaction, error) {
	return newTransaction(KindShoppingExpense, account, amount, description, date, recipient, roommateID)
}

func newTransaction(kind Kind, account *Account, amount int64, description string, date time.Time, party string, roommateID uuid.UUID) (*Transaction, error) {
	const op = "new transaction"
	if account == nil {
		return nil, aggregate.Fail(ErrInvalidTransaction, op, "account is required")
	}
	description, err := checkDescription(op, description)
	if err != nil {
		return nil, err
	}
	if err := checkAmount(op, amount); err != nil {
		return nil, err
	}
	if err := checkDate(op, date); err != nil {
		return nil, err
	}
	party, err = checkParty(op, kind, party)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		id:          uuid.New(),
		kind:        kind,
		accountID:   account.id,
		amount:      money.New(amount, account.Currency()),
		description: description,
		date:        date,
		roommateID:  roommateID,
		createdAt:   time.Now().UTC(),
	}
	if kind == KindIncome {
		t.source = party
	} else {
		t.recipient = party
	}
	return t, nil
}

func checkAmount(op string, amount int64) error {
	if amount <= 0 {
		return aggregate.Fail(ErrInvalidTransaction, op, "amount must be positive")
	}
	return nil
}

func checkDescription(op, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", aggregate.Fail(ErrInvalidTransaction, op, "description is required")
	}
	return description, nil
}

func checkDate(op string, date time.Time) error {
	if date.IsZero() {
		return aggregate.Fail(ErrInvalidTransaction, op, "date is required")
	}
	return nil
}

func checkParty(op string, kind Kind, party string) (string, error) {
	party = strings.TrimSpace(party)
	if party == "" {
		if kind == KindIncome {
			return "", aggregate.Fail(ErrInvalidTransaction, op, "source is required")
		}
		return "", aggregate.Fail(ErrInvalidTransaction, op, "recipient is required")
	}
	return party, nil
}

func (t *Transaction) ID() uuid.UUID              { return t.id }
func (t *Transaction) Kind() Kind                 { return t.kind }
func (t *Transaction) AccountID() uuid.UUID       { return t.accountID }
func (t *Transaction) Amount() money.Money        { return t.amount }
func (t *Transaction) Description() string        { return t.description }
func (t *Transaction) Date() time.Time            { return t.date }
func (t *Transaction) Source() string             { return t.source }
func (t *Transaction) Recipient() string          { return t.recipient }
func (t *Transaction) RoommateID() uuid.UUID      { return t.roommateID }
func (t *Transaction) ShoppingSpreeID() uuid.UUID { return t.shoppingSpreeID }
func (t *Transaction) CreatedAt() time.Time       { return t.createdAt }

// SignedAmount is the amount folded into the account balance: positive for
// income, negative for the expense family.
func (t *Transaction) SignedAmount() money.Money {
	if t.kind == KindIncome {
		return t.amount
	}
	return t.amount.Negate()
}

// HasRoommate reports whether a household member is attached.
func (t *Transaction) HasRoommate() bool {
	return t.roommateID != uuid.Nil
}

// IsLinked reports whether a shopping expense is bound to a spree.
func (t *Transaction) IsLinked() bool {
	return t.shoppingSpreeID != uuid.Nil
}

// SetDescription replaces the description.
func (t *Transaction) SetDescription(description string) error {
	description, err := checkDescription("set description", description)
	if err != nil {
		return err
	}
	t.description = description
	return nil
}

// SetDate replaces the booking date.
func (t *Transaction) SetDate(date time.Time) error {
	if err := checkDate("set date", date); err != nil {
		return err
	}
	t.date = date
	return nil
}

// SetRecipient applies to the expense family only.
func (t *Transaction) SetRecipient(recipient string) error {
	const op = "set recipient"
	if !t.kind.IsExpense() {
		return aggregate.Fail(ErrWrongKind, op, string(t.kind))
	}
	recipient, err := checkParty(op, t.kind, recipient)
	if err != nil {
		return err
	}
	t.recipient = recipient
	return nil
}

// SetSource applies to income only.
func (t *Transaction) SetSource(source string) error {
	const op = "set source"
	if t.kind != KindIncome {
		return aggregate.Fail(ErrWrongKind, op, string(t.kind))
	}
	source, err := checkParty(op, t.kind, source)
	if err != nil {
		return err
	}
	t.source = source
	return nil
}

// LinkShoppingSpree binds a shopping expense to the spree it settles.
func (t *Transaction) LinkShoppingSpree(spreeID uuid.UUID) error {
	const op = "link shopping spree"
	if spreeID == uuid.Nil {
		return aggregate.Fail(ErrInvalidLink, op, "spree is required")
	}
	if t.kind != KindShoppingExpense {
		return aggregate.Fail(ErrWrongKind, op, string(t.kind))
	}
	t.shoppingSpreeID = spreeID
	return nil
}

// UnlinkShoppingSpree clears the spree link.
func (t *Transaction) UnlinkShoppingSpree() {
	t.shoppingSpreeID = uuid.Nil
}

// RemoveRoommate detaches the household member who booked the transaction.
// The transaction itself is kept.
func (t *Transaction) RemoveRoommate() {
	t.roommateID = uuid.Nil
}
