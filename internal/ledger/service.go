package ledger

import (
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/household"
	"github.com/google/uuid"
)

// Service books and edits transactions on behalf of household members.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// BookParams describes a new income or expense. Party is the source for an
// income and the recipient for an expense.
type BookParams struct {
	Kind           Kind
	Amount         int64
	Description    string
	Date           time.Time
	Party          string
	RoommateUserID uuid.UUID
}

// Book creates a transaction on account and adds it. The account and the
// booking roommate must both belong to h. Shopping expenses are only booked
// through a shopping spree.
func (s *Service) Book(h *household.Household, account *Account, p BookParams) (*Transaction, error) {
	const op = "book transaction"
	if h == nil {
		return nil, aggregate.Fail(household.ErrMissingHousehold, op, "")
	}
	if account == nil {
		return nil, aggregate.Fail(ErrInvalidTransaction, op, "account is required")
	}
	if account.HouseholdID() != h.ID() {
		return nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "account "+account.ID().String())
	}
	if p.RoommateUserID != uuid.Nil && !h.HasRoommate(p.RoommateUserID) {
		return nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "roommate "+p.RoommateUserID.String())
	}

	switch p.Kind {
	case KindIncome:
		return account.CreateIncome(p.Amount, p.Description, p.Date, p.Party, p.RoommateUserID)
	case KindExpense:
		return account.CreateExpense(p.Amount, p.Description, p.Date, p.Party, p.RoommateUserID)
	case KindShoppingExpense:
		return nil, aggregate.Fail(ErrWrongKind, op, "shopping expenses are created with a shopping spree")
	default:
		return nil, aggregate.Fail(ErrInvalidTransaction, op, "unknown kind "+string(p.Kind))
	}
}

// UpdateParams carries the fields to change; nil fields are left alone.
type UpdateParams struct {
	Amount      *int64
	Description *string
	Date        *time.Time
	Party       *string
}

// Update edits a booked transaction. Every field is validated before any
// is applied, so a rejected update leaves the transaction untouched.
func (s *Service) Update(account *Account, id uuid.UUID, p UpdateParams) (*Transaction, error) {
	const op = "update transaction"
	t, ok := account.Transaction(id)
	if !ok {
		return nil, aggregate.Fail(ErrTransactionNotFound, op, id.String())
	}

	if p.Amount != nil {
		if err := checkAmount(op, *p.Amount); err != nil {
			return nil, err
		}
	}
	if p.Description != nil {
		if _, err := checkDescription(op, *p.Description); err != nil {
			return nil, err
		}
	}
	if p.Date != nil {
		if err := checkDate(op, *p.Date); err != nil {
			return nil, err
		}
	}
	if p.Party != nil {
		if _, err := checkParty(op, t.kind, *p.Party); err != nil {
			return nil, err
		}
	}

	prev := *t
	if err := applyUpdate(account, t, p); err != nil {
		*t = prev
		return nil, err
	}
	return t, nil
}

// applyUpdate sets the text fields first and the amount last, so a failing
// amount change leaves the balance as it was.
func applyUpdate(account *Account, t *Transaction, p UpdateParams) error {
	if p.Description != nil {
		if err := t.SetDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := t.SetDate(*p.Date); err != nil {
			return err
		}
	}
	if p.Party != nil {
		set := t.SetRecipient
		if t.kind == KindIncome {
			set = t.SetSource
		}
		if err := set(*p.Party); err != nil {
			return err
		}
	}
	if p.Amount != nil {
		return account.ChangeTransactionAmount(t.id, *p.Amount)
	}
	return nil
}

// Delete removes a transaction from account. A shopping expense that still
// settles a spree is deleted together with the spree instead.
func (s *Service) Delete(account *Account, id uuid.UUID) (*Transaction, error) {
	const op = "delete transaction"
	t, ok := account.Transaction(id)
	if !ok {
		return nil, aggregate.Fail(ErrTransactionNotFound, op, id.String())
	}
	if t.kind == KindShoppingExpense && t.IsLinked() {
		return nil, aggregate.Fail(ErrSettlesShoppingSpree, op, t.shoppingSpreeID.String())
	}
	return account.RemoveTransaction(id)
}

// DetachRoommate severs userID from every transaction in accounts and
// returns how many transactions were touched. The transactions are kept.
func (s *Service) DetachRoommate(accounts []*Account, userID uuid.UUID) int {
	if userID == uuid.Nil {
		return 0
	}
	n := 0
	for _, a := range accounts {
		for _, t := range a.transactions {
			if t.roommateID == userID {
				t.RemoveRoommate()
				n++
			}
		}
	}
	return n
}
