package shopping

import (
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/google/uuid"
)

var (
	ErrInvalidSpree  = aggregate.New(aggregate.KindInvalidArgument, "invalid shopping spree")
	ErrNothingPicked = aggregate.New(aggregate.KindIllegalState, "no picked items on the list")
)

const defaultSpreeDescription = "Shopping spree"

// Service turns picked list items into sprees settled by a shopping
// expense.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// CreateSpreeParams names everything a spree touches. Amount is the total
// paid in the account currency's smallest unit.
type CreateSpreeParams struct {
	Household      *household.Household
	List           *List
	Account        *ledger.Account
	RoommateUserID uuid.UUID
	Date           time.Time
	Amount         int64
	Description    string
	Recipient      string
}

// Create moves every picked item off the list into a new spree, books the
// settling shopping expense on the account and links the two. Nothing is
// mutated unless every check passes.
func (s *Service) Create(p CreateSpreeParams) (*Spree, *ledger.Transaction, error) {
	const op = "create shopping spree"
	switch {
	case p.Household == nil:
		return nil, nil, aggregate.Fail(household.ErrMissingHousehold, op, "")
	case p.List == nil:
		return nil, nil, aggregate.Fail(ErrInvalidSpree, op, "list is required")
	case p.Account == nil:
		return nil, nil, aggregate.Fail(ErrInvalidSpree, op, "account is required")
	case p.RoommateUserID == uuid.Nil:
		return nil, nil, aggregate.Fail(ErrInvalidSpree, op, "roommate is required")
	}
	hid := p.Household.ID()
	if p.List.HouseholdID() != hid {
		return nil, nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "list "+p.List.ID().String())
	}
	if p.Account.HouseholdID() != hid {
		return nil, nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "account "+p.Account.ID().String())
	}
	if !p.Household.HasRoommate(p.RoommateUserID) {
		return nil, nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "roommate "+p.RoommateUserID.String())
	}

	picked := p.List.PickedItems()
	if len(picked) == 0 {
		return nil, nil, aggregate.Fail(ErrNothingPicked, op, p.List.Name())
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = defaultSpreeDescription
	}
	expense, err := ledger.NewShoppingExpense(p.Account, p.Amount, description, p.Date, p.Recipient, p.RoommateUserID)
	if err != nil {
		return nil, nil, err
	}

	spree := &Spree{
		id:             uuid.New(),
		householdID:    hid,
		accountID:      p.Account.ID(),
		roommateUserID: p.RoommateUserID,
		date:           p.Date,
		items:          make([]SpreeItem, 0, len(picked)),
		createdAt:      time.Now().UTC(),
	}
	for _, it := range picked {
		spree.items = append(spree.items, SpreeItem{ID: uuid.New(), Name: it.name, Quantity: it.quantity})
	}

	if err := expense.LinkShoppingSpree(spree.id); err != nil {
		return nil, nil, err
	}
	if err := p.Account.AddTransaction(expense); err != nil {
		return nil, nil, err
	}
	spree.shoppingExpenseID = expense.ID()
	for _, it := range picked {
		delete(p.List.items, it.id)
	}
	return spree, expense, nil
}

// DeleteResult reports what deleting a spree did to the account.
type DeleteResult struct {
	Expense *ledger.Transaction
	// Orphaned is set when the spree pointed at an expense the account no
	// longer holds.
	Orphaned bool
}

// Delete removes the settling expense from the account so the balance
// re-folds, and clears the link. The caller then deletes the spree record.
func (s *Service) Delete(spree *Spree, account *ledger.Account) (DeleteResult, error) {
	const op = "delete shopping spree"
	if spree == nil {
		return DeleteResult{}, aggregate.Fail(ErrInvalidSpree, op, "spree is required")
	}
	if account == nil || account.ID() != spree.accountID {
		return DeleteResult{}, aggregate.Fail(ledger.ErrForeignAccount, op, "spree "+spree.id.String())
	}
	if !spree.IsSettled() {
		return DeleteResult{}, nil
	}

	var res DeleteResult
	t, ok := account.Transaction(spree.shoppingExpenseID)
	if ok && t.ShoppingSpreeID() == spree.id {
		removed, err := account.RemoveTransaction(t.ID())
		if err != nil {
			return DeleteResult{}, err
		}
		removed.UnlinkShoppingSpree()
		res.Expense = removed
	} else {
		res.Orphaned = true
	}
	spree.shoppingExpenseID = uuid.Nil
	return res, nil
}

// DetachRoommate clears userID from every spree it shopped and returns the
// number touched.
func DetachRoommate(sprees []*Spree, userID uuid.UUID) int {
	if userID == uuid.Nil {
		return 0
	}
	n := 0
	for _, s := range sprees {
		if s.roommateUserID == userID {
			s.RemoveRoommate()
			n++
		}
	}
	return n
}
