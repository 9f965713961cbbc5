package app

import (
	"context"
	"testing"

	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteAndAccept(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	assert.True(t, env.pub.subscribed(alice.ID(), h.ID()))

	_, err = env.app.InviteUser(aliceCtx, h.ID(), "BOB@example.com")
	require.NoError(t, err)

	var invitation *mail
	for i := range env.mailer.sent {
		if env.mailer.sent[i].kind == "invitation" {
			invitation = &env.mailer.sent[i]
		}
	}
	require.NotNil(t, invitation)
	assert.Equal(t, "bob@example.com", invitation.to)
	assert.Equal(t, "Flat 4B", invitation.household)
	assert.Equal(t, "alice", invitation.from)

	require.NotEmpty(t, env.pub.notified)
	assert.Equal(t, bob.ID(), env.pub.notified[0].to)
	assert.Equal(t, "invitation_created", env.pub.notified[0].msg.Type)

	_, err = env.app.InviteUser(aliceCtx, h.ID(), "bob@example.com")
	assertKind(t, err, household.ErrAlreadyInvited)

	r, err := env.app.AcceptInvitation(bobCtx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, household.RoleUser, r.Role())
	assert.True(t, env.pub.subscribed(bob.ID(), h.ID()))
	assert.Contains(t, env.pub.types(), "roommate_joined")

	view, err := env.app.Household(bobCtx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, view.Household.Len())
	assert.Equal(t, "bob", view.Users[bob.ID()].Name())

	summaries, err := env.app.Households(bobCtx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, household.RoleUser, summaries[0].Role)
	assert.Equal(t, 2, summaries[0].Members)
}

func TestInviteUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)

	_, err = env.app.InviteUser(aliceCtx, h.ID(), "ghost@example.com")
	assertKind(t, err, ErrNotFound)
}

func TestAdminOnlyCommands(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	_, carol := env.register(t, "carol")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)

	_, err = env.app.InviteUser(bobCtx, h.ID(), carol.Email())
	assertKind(t, err, ErrAdminOnly)
	assertKind(t, env.app.RemoveRoommate(bobCtx, h.ID(), alice.ID()), ErrAdminOnly)
	assertKind(t, env.app.TransferAdmin(bobCtx, h.ID(), bob.ID()), ErrAdminOnly)
	assertKind(t, env.app.DeleteHousehold(bobCtx, h.ID()), ErrAdminOnly)

	// Renaming is open to every roommate.
	require.NoError(t, env.app.RenameHousehold(bobCtx, h.ID(), "Flat 5C"))
}

func TestOutsiderCannotSeeHousehold(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	malloryCtx, _ := env.register(t, "mallory")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)

	_, err = env.app.Household(malloryCtx, h.ID())
	assertKind(t, err, ErrNotRoommate)
	_, err = env.app.Accounts(malloryCtx, h.ID())
	assertKind(t, err, ErrNotRoommate)
}

func TestDeclineAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)

	_, err = env.app.InviteUser(aliceCtx, h.ID(), bob.Email())
	require.NoError(t, err)
	require.NoError(t, env.app.DeclineInvitation(bobCtx, h.ID()))
	assertKind(t, env.app.DeclineInvitation(bobCtx, h.ID()), household.ErrInvitationNotFound)

	_, err = env.app.InviteUser(aliceCtx, h.ID(), bob.Email())
	require.NoError(t, err)
	require.NoError(t, env.app.RevokeInvitation(aliceCtx, h.ID(), bob.ID()))
	_, err = env.app.AcceptInvitation(bobCtx, h.ID())
	assertKind(t, err, household.ErrInvitationNotFound)

	me, err := env.app.Me(bobCtx)
	require.NoError(t, err)
	assert.Empty(t, me.InvitationIDs())
}

func TestTransferAdmin(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)

	require.NoError(t, env.app.TransferAdmin(aliceCtx, h.ID(), bob.ID()))

	view, err := env.app.Household(aliceCtx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), view.Household.Admin().UserID())
	r, ok := view.Household.Roommate(alice.ID())
	require.True(t, ok)
	assert.Equal(t, household.RoleUser, r.Role())
}

func TestRemoveRoommateDetachesRecords(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)

	acc, err := env.app.CreateAccount(aliceCtx, h.ID(), "Rent", "", 0)
	require.NoError(t, err)
	tx, err := env.app.BookTransaction(bobCtx, h.ID(), acc.ID(), BookInput{
		Kind: ledger.KindIncome, Amount: 50000, Description: "Rent share", Date: day, Party: "Bob",
	})
	require.NoError(t, err)
	task, err := env.app.CreateTask(aliceCtx, h.ID(), TaskInput{Title: "Bins", AssigneeID: bob.ID()})
	require.NoError(t, err)

	require.NoError(t, env.app.RemoveRoommate(aliceCtx, h.ID(), bob.ID()))
	assert.False(t, env.pub.subscribed(bob.ID(), h.ID()))

	got, err := env.app.Account(aliceCtx, h.ID(), acc.ID())
	require.NoError(t, err)
	kept, ok := got.Transaction(tx.ID())
	require.True(t, ok, "the transaction survives")
	assert.False(t, kept.HasRoommate())
	assert.Equal(t, int64(50000), got.Balance().Amount())

	tasks, err := env.app.Tasks(aliceCtx, h.ID())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID(), tasks[0].ID())
	assert.Equal(t, uuid.Nil, tasks[0].AssigneeUserID())

	_, err = env.app.Household(bobCtx, h.ID())
	assertKind(t, err, ErrNotRoommate)
}

func TestAdminRemovingItselfHandsOver(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)

	require.NoError(t, env.app.RemoveRoommate(aliceCtx, h.ID(), alice.ID()))
	assert.Contains(t, env.pub.types(), "household_admin_transferred")
	assert.False(t, env.pub.subscribed(alice.ID(), h.ID()))

	view, err := env.app.Household(bobCtx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, view.Household.Len())
	assert.Equal(t, bob.ID(), view.Household.Admin().UserID())
	assertKind(t, env.app.RemoveRoommate(bobCtx, h.ID(), bob.ID()), household.ErrLastRoommate)
}

func TestLeaveHousehold(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)

	res, err := env.app.LeaveHousehold(aliceCtx, h.ID())
	require.NoError(t, err)
	assert.False(t, res.MustDissolve)
	assert.Equal(t, bob.ID(), res.NewAdmin)
	assert.False(t, env.pub.subscribed(alice.ID(), h.ID()))

	view, err := env.app.Household(bobCtx, h.ID())
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), view.Household.Admin().UserID())
	assert.Equal(t, 1, view.Household.Len())
}

func TestLastRoommateLeavingDeletesEverything(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	_, carol := env.register(t, "carol")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	seedShopping(t, env, aliceCtx, h.ID())
	_, err = env.app.CreateTask(aliceCtx, h.ID(), TaskInput{Title: "Bins"})
	require.NoError(t, err)
	_, err = env.app.InviteUser(aliceCtx, h.ID(), carol.Email())
	require.NoError(t, err)

	res, err := env.app.LeaveHousehold(aliceCtx, h.ID())
	require.NoError(t, err)
	assert.True(t, res.MustDissolve)
	assertHouseholdGone(t, env, h.ID())

	// The pending invitation went with the household.
	ctx := context.Background()
	got, err := env.db.Read().Users.Get(ctx, carol.ID())
	require.NoError(t, err)
	assert.Empty(t, got.InvitationIDs())
	assert.Contains(t, env.pub.types(), "household_deleted")
}

func TestDeleteHousehold(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)
	seedShopping(t, env, aliceCtx, h.ID())

	require.NoError(t, env.app.DeleteHousehold(aliceCtx, h.ID()))
	assertHouseholdGone(t, env, h.ID())
	assert.False(t, env.pub.subscribed(alice.ID(), h.ID()))
	assert.False(t, env.pub.subscribed(bob.ID(), h.ID()))

	me, err := env.app.Me(bobCtx)
	require.NoError(t, err)
	assert.Empty(t, me.HouseholdIDs())
}

func TestDeleteUserRipple(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, alice := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	shared, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, shared.ID(), bob)
	solo, err := env.app.CreateHousehold(aliceCtx, "Cabin")
	require.NoError(t, err)
	invitedTo, err := env.app.CreateHousehold(bobCtx, "Bob's place")
	require.NoError(t, err)
	_, err = env.app.InviteUser(bobCtx, invitedTo.ID(), alice.Email())
	require.NoError(t, err)

	acc, err := env.app.CreateAccount(bobCtx, shared.ID(), "Groceries", "EUR", 10000)
	require.NoError(t, err)
	tx, err := env.app.BookTransaction(aliceCtx, shared.ID(), acc.ID(), BookInput{
		Kind: ledger.KindExpense, Amount: 2500, Description: "Pizza", Date: day, Party: "Luigi's",
	})
	require.NoError(t, err)
	spree := createSpree(t, env, aliceCtx, shared.ID(), acc.ID())
	task, err := env.app.CreateTask(bobCtx, shared.ID(), TaskInput{Title: "Dishes", AssigneeID: alice.ID()})
	require.NoError(t, err)
	require.NoError(t, env.app.CompleteTask(aliceCtx, shared.ID(), task.ID()))

	rep, err := env.app.DeleteUser(context.Background(), alice.ID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{solo.ID()}, rep.Dissolved)
	assert.Equal(t, []uuid.UUID{shared.ID()}, rep.RemovedFrom)
	assert.Equal(t, []uuid.UUID{invitedTo.ID()}, rep.Uninvited)
	require.Len(t, rep.AdminTransfers, 1)
	assert.Equal(t, bob.ID(), rep.AdminTransfers[0].To)
	assert.Equal(t, 2, rep.DetachedTransactions, "the expense and the spree's shopping expense")
	assert.Equal(t, 1, rep.DetachedSprees)
	assert.Equal(t, 1, rep.DetachedTasks)

	assertHouseholdGone(t, env, solo.ID())

	view, err := env.app.Household(bobCtx, shared.ID())
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), view.Household.Admin().UserID())
	assert.Equal(t, 1, view.Household.Len())

	got, err := env.app.Account(bobCtx, shared.ID(), acc.ID())
	require.NoError(t, err)
	kept, ok := got.Transaction(tx.ID())
	require.True(t, ok)
	assert.False(t, kept.HasRoommate())

	sprees, err := env.app.ShoppingSprees(bobCtx, shared.ID())
	require.NoError(t, err)
	require.Len(t, sprees, 1)
	assert.Equal(t, spree.ID(), sprees[0].ID())
	assert.Equal(t, uuid.Nil, sprees[0].RoommateUserID())

	u, err := env.db.Read().Users.Get(context.Background(), alice.ID())
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = env.app.DeleteUser(context.Background(), alice.ID())
	assertKind(t, err, ErrNotFound)
}
