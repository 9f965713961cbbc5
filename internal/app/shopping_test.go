package app

import (
	"context"
	"testing"

	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/shopping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSpree fills a fresh list with one picked item and shops it on
// accountID.
func createSpree(t *testing.T, env *testEnv, ctx context.Context, householdID, accountID uuid.UUID) *shopping.Spree {
	t.Helper()
	l, err := env.app.CreateShoppingList(ctx, householdID, "Weekly")
	require.NoError(t, err)
	it, err := env.app.AddListItem(ctx, householdID, l.ID(), "Oat milk", 2)
	require.NoError(t, err)
	require.NoError(t, env.app.PickItem(ctx, householdID, l.ID(), it.ID()))
	spree, _, err := env.app.CreateShoppingSpree(ctx, householdID, SpreeInput{
		ListID: l.ID(), AccountID: accountID, Date: day, Amount: 450, Recipient: "Corner shop",
	})
	require.NoError(t, err)
	return spree
}

// seedShopping gives a household an account, a list and a settled spree.
func seedShopping(t *testing.T, env *testEnv, ctx context.Context, householdID uuid.UUID) {
	t.Helper()
	acc, err := env.app.CreateAccount(ctx, householdID, "Groceries", "", 10000)
	require.NoError(t, err)
	createSpree(t, env, ctx, householdID, acc.ID())
}

func assertHouseholdGone(t *testing.T, env *testEnv, householdID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	s := env.db.Read()

	h, err := s.Households.Get(ctx, householdID)
	require.NoError(t, err)
	assert.Nil(t, h)
	accounts, err := s.Accounts.ListByHousehold(ctx, householdID)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	lists, err := s.Lists.ListByHousehold(ctx, householdID)
	require.NoError(t, err)
	assert.Empty(t, lists)
	sprees, err := s.Sprees.ListByHousehold(ctx, householdID)
	require.NoError(t, err)
	assert.Empty(t, sprees)
	tasks, err := s.Tasks.ListByHousehold(ctx, householdID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestShoppingListEditing(t *testing.T) {
	env := newTestEnv(t)
	ctx, _ := env.register(t, "alice")
	h, err := env.app.CreateHousehold(ctx, "Flat 4B")
	require.NoError(t, err)

	l, err := env.app.CreateShoppingList(ctx, h.ID(), "Weekly")
	require.NoError(t, err)
	bread, err := env.app.AddListItem(ctx, h.ID(), l.ID(), "Bread", 1)
	require.NoError(t, err)
	eggs, err := env.app.AddListItem(ctx, h.ID(), l.ID(), "Eggs", 12)
	require.NoError(t, err)

	require.NoError(t, env.app.PickItem(ctx, h.ID(), l.ID(), bread.ID()))
	assertKind(t, env.app.PickItem(ctx, h.ID(), l.ID(), bread.ID()), shopping.ErrAlreadyPicked)
	require.NoError(t, env.app.UnpickItem(ctx, h.ID(), l.ID(), bread.ID()))
	assertKind(t, env.app.UnpickItem(ctx, h.ID(), l.ID(), bread.ID()), shopping.ErrNotPicked)

	require.NoError(t, env.app.RemoveListItem(ctx, h.ID(), l.ID(), eggs.ID()))
	assertKind(t, env.app.RemoveListItem(ctx, h.ID(), l.ID(), eggs.ID()), shopping.ErrItemNotFound)
	require.NoError(t, env.app.RenameShoppingList(ctx, h.ID(), l.ID(), "Saturday"))

	got, err := env.app.ShoppingList(ctx, h.ID(), l.ID())
	require.NoError(t, err)
	assert.Equal(t, "Saturday", got.Name())
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Bread", got.Items()[0].Name())
	assert.Contains(t, env.pub.types(), "shopping_list_item_picked")

	require.NoError(t, env.app.DeleteShoppingList(ctx, h.ID(), l.ID()))
	lists, err := env.app.ShoppingLists(ctx, h.ID())
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestShoppingSpreeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx, alice := env.register(t, "alice")
	h, err := env.app.CreateHousehold(ctx, "Flat 4B")
	require.NoError(t, err)
	acc, err := env.app.CreateAccount(ctx, h.ID(), "Groceries", "", 10000)
	require.NoError(t, err)
	l, err := env.app.CreateShoppingList(ctx, h.ID(), "Weekly")
	require.NoError(t, err)
	milk, err := env.app.AddListItem(ctx, h.ID(), l.ID(), "Milk", 2)
	require.NoError(t, err)
	_, err = env.app.AddListItem(ctx, h.ID(), l.ID(), "Coffee", 1)
	require.NoError(t, err)

	in := SpreeInput{ListID: l.ID(), AccountID: acc.ID(), Date: day, Amount: 380, Recipient: "Corner shop"}
	_, _, err = env.app.CreateShoppingSpree(ctx, h.ID(), in)
	assertKind(t, err, shopping.ErrNothingPicked)

	require.NoError(t, env.app.PickItem(ctx, h.ID(), l.ID(), milk.ID()))
	spree, expense, err := env.app.CreateShoppingSpree(ctx, h.ID(), in)
	require.NoError(t, err)
	assert.Equal(t, alice.ID(), spree.RoommateUserID())
	assert.Equal(t, expense.ID(), spree.ShoppingExpenseID())
	assert.Equal(t, spree.ID(), expense.ShoppingSpreeID())
	assert.Equal(t, "Shopping spree", expense.Description())
	require.Len(t, spree.Items(), 1)
	assert.Equal(t, "Milk", spree.Items()[0].Name)

	list, err := env.app.ShoppingList(ctx, h.ID(), l.ID())
	require.NoError(t, err)
	require.Equal(t, 1, list.Len(), "picked items leave the list")
	assert.Equal(t, "Coffee", list.Items()[0].Name())

	got, err := env.app.Account(ctx, h.ID(), acc.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(9620), got.Balance().Amount())

	err = env.app.DeleteTransaction(ctx, h.ID(), acc.ID(), expense.ID())
	assertKind(t, err, ledger.ErrSettlesShoppingSpree)

	sprees, err := env.app.ShoppingSprees(ctx, h.ID())
	require.NoError(t, err)
	require.Len(t, sprees, 1)
	assert.True(t, sprees[0].IsSettled())

	require.NoError(t, env.app.DeleteShoppingSpree(ctx, h.ID(), spree.ID()))
	got, err = env.app.Account(ctx, h.ID(), acc.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.Balance().Amount(), "the balance re-folds without the expense")
	assert.Zero(t, got.Len())

	assertKind(t, env.app.DeleteShoppingSpree(ctx, h.ID(), spree.ID()), ErrNotFound)
}

func TestShoppingSpreeAcrossHouseholds(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	bobCtx, _ := env.register(t, "bob")
	mine, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	theirs, err := env.app.CreateHousehold(bobCtx, "Flat 2A")
	require.NoError(t, err)
	foreign, err := env.app.CreateAccount(bobCtx, theirs.ID(), "Bills", "", 0)
	require.NoError(t, err)

	l, err := env.app.CreateShoppingList(aliceCtx, mine.ID(), "Weekly")
	require.NoError(t, err)
	it, err := env.app.AddListItem(aliceCtx, mine.ID(), l.ID(), "Milk", 1)
	require.NoError(t, err)
	require.NoError(t, env.app.PickItem(aliceCtx, mine.ID(), l.ID(), it.ID()))

	_, _, err = env.app.CreateShoppingSpree(aliceCtx, mine.ID(), SpreeInput{
		ListID: l.ID(), AccountID: foreign.ID(), Date: day, Amount: 100, Recipient: "Shop",
	})
	assertKind(t, err, household.ErrCrossHouseholdReference)

	list, err := env.app.ShoppingList(aliceCtx, mine.ID(), l.ID())
	require.NoError(t, err)
	assert.Len(t, list.PickedItems(), 1, "a rejected spree leaves the list alone")

	_, err = env.app.AddListItem(bobCtx, theirs.ID(), l.ID(), "Beer", 6)
	assertKind(t, err, household.ErrCrossHouseholdReference)
}
