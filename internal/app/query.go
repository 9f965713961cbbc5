package app

import (
	"context"
	"time"

	"github.com/dukerupert/householder/internal/chore"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/shopping"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

// Read views run on the pool outside a transaction. Every household view
// requires the caller to be a roommate.

func (a *App) Me(ctx context.Context) (*household.User, error) {
	const op = "get me"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	return loadUser(ctx, a.db.Read(), op, actor)
}

func (a *App) Households(ctx context.Context) ([]store.HouseholdSummary, error) {
	actor, err := a.actor(ctx, "list households")
	if err != nil {
		return nil, err
	}
	return a.db.Read().Households.ListForUser(ctx, actor)
}

// Memberships lists the household ids of userID. It feeds websocket
// subscriptions.
func (a *App) Memberships(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	u, err := a.db.Read().Users.Get(ctx, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return u.HouseholdIDs(), nil
}

// HouseholdView is a household with the users behind its roommates and
// invitations.
type HouseholdView struct {
	Household *household.Household
	Users     map[uuid.UUID]*household.User
}

func (a *App) Household(ctx context.Context, householdID uuid.UUID) (HouseholdView, error) {
	const op = "get household"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return HouseholdView{}, err
	}
	s := a.db.Read()
	h, err := memberOf(ctx, s, op, householdID, actor)
	if err != nil {
		return HouseholdView{}, err
	}
	var ids []uuid.UUID
	for _, r := range h.Roommates() {
		ids = append(ids, r.UserID())
	}
	for _, inv := range h.Invitations() {
		ids = append(ids, inv.UserID())
	}
	users, err := s.Users.GetMany(ctx, ids)
	if err != nil {
		return HouseholdView{}, err
	}
	return HouseholdView{Household: h, Users: users}, nil
}

func (a *App) Accounts(ctx context.Context, householdID uuid.UUID) ([]*ledger.Account, error) {
	const op = "list accounts"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	s := a.db.Read()
	if _, err := memberOf(ctx, s, op, householdID, actor); err != nil {
		return nil, err
	}
	return s.Accounts.ListByHousehold(ctx, householdID)
}

func (a *App) Account(ctx context.Context, householdID, accountID uuid.UUID) (*ledger.Account, error) {
	const op = "get account"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	s := a.db.Read()
	h, err := memberOf(ctx, s, op, householdID, actor)
	if err != nil {
		return nil, err
	}
	return loadAccount(ctx, s, op, h, accountID)
}

func (a *App) ShoppingLists(ctx context.Context, householdID uuid.UUID) ([]*shopping.List, error) {
	const op = "list shopping lists"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	s := a.db.Read()
	if _, err := memberOf(ctx, s, op, householdID, actor); err != nil {
		return nil, err
	}
	return s.Lists.ListByHousehold(ctx, householdID)
}

func (a *App) ShoppingList(ctx context.Context, householdID, listID uuid.UUID) (*shopping.List, error) {
	const op = "get shopping list"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	s := a.db.Read()
	h, err := memberOf(ctx, s, op, householdID, actor)
	if err != nil {
		return nil, err
	}
	return loadList(ctx, s, op, h, listID)
}

func (a *App) ShoppingSprees(ctx context.Context, householdID uuid.UUID) ([]*shopping.Spree, error) {
	const op = "list shopping sprees"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	s := a.db.Read()
	if _, err := memberOf(ctx, s, op, householdID, actor); err != nil {
		return nil, err
	}
	return s.Sprees.ListByHousehold(ctx, householdID)
}

func (a *App) Tasks(ctx context.Context, householdID uuid.UUID) ([]*chore.Task, error) {
	const op = "list tasks"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	s := a.db.Read()
	if _, err := memberOf(ctx, s, op, householdID, actor); err != nil {
		return nil, err
	}
	return s.Tasks.ListByHousehold(ctx, householdID)
}

// Now is the clock the app completes tasks with.
func (a *App) Now() time.Time {
	return a.now()
}

// CleanupSessions deletes expired sessions and returns how many went.
func (a *App) CleanupSessions(ctx context.Context) (int64, error) {
	var n int64
	err := a.run(ctx, "cleanup sessions", func(s *store.Stores, o *outbox) error {
		var err error
		n, err = s.Sessions.DeleteExpired(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.logger.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n, nil
}
