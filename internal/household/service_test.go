package household

import (
	"testing"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferAdminRights(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice, bob)
	a, _ := h.Roommate(alice.ID())
	b, _ := h.Roommate(bob.ID())

	require.NoError(t, NewService().TransferAdminRights(a, b))
	assert.Equal(t, RoleUser, a.Role())
	assert.Equal(t, RoleAdmin, b.Role())
	assert.Equal(t, bob.ID(), h.Admin().UserID())
}

func TestTransferAdminRightsNotAdmin(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice, bob)
	a, _ := h.Roommate(alice.ID())
	b, _ := h.Roommate(bob.ID())

	err := NewService().TransferAdminRights(b, a)
	assertKind(t, err, ErrNotAdmin)
	assert.Equal(t, RoleAdmin, a.Role())
	assert.Equal(t, RoleUser, b.Role())
}

func TestTransferAdminRightsAcrossHouseholds(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h1 := newTestHousehold(t, alice)
	h2 := newTestHousehold(t, bob)
	a, _ := h1.Roommate(alice.ID())
	b, _ := h2.Roommate(bob.ID())

	err := NewService().TransferAdminRights(a, b)
	assertKind(t, err, ErrCrossHouseholdTransfer)
	assert.Equal(t, aggregate.KindForeignReference, aggregate.KindOf(err))
	assert.Equal(t, RoleAdmin, a.Role())
	assert.Equal(t, RoleAdmin, b.Role())
}

func TestTransferAdminUnknownRoommate(t *testing.T) {
	alice := newTestUser(t, "alice")
	h := newTestHousehold(t, alice)

	err := NewService().TransferAdmin(h, alice.ID(), uuid.New())
	assertKind(t, err, ErrRoommateNotFound)
	assert.Equal(t, alice.ID(), h.Admin().UserID())
}

func TestConvertInvitationToRoommate(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice)
	_, err := h.Invite(bob)
	require.NoError(t, err)

	r, err := NewService().ConvertInvitationToRoommate(h, bob)
	require.NoError(t, err)

	_, invited := h.Invitation(bob.ID())
	assert.False(t, invited)
	assert.False(t, bob.IsInvitedTo(h.ID()))
	assert.True(t, h.HasRoommate(bob.ID()))
	assert.True(t, bob.IsMemberOf(h.ID()))
	assert.Equal(t, RoleUser, r.Role())
}

func TestConvertInvitationWithoutInvitation(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice)

	_, err := NewService().ConvertInvitationToRoommate(h, bob)
	assertKind(t, err, ErrInvitationNotFound)
	assert.False(t, h.HasRoommate(bob.ID()))
	assert.False(t, bob.IsMemberOf(h.ID()))
}

func TestConvertInvitationDisabledUserLeavesBothSides(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice)
	_, err := h.Invite(bob)
	require.NoError(t, err)
	require.NoError(t, bob.Disable())

	_, err = NewService().ConvertInvitationToRoommate(h, bob)
	assertKind(t, err, ErrUserDisabled)

	// Nothing moved: still invited on both sides, member on neither.
	_, invited := h.Invitation(bob.ID())
	assert.True(t, invited)
	assert.True(t, bob.IsInvitedTo(h.ID()))
	assert.False(t, h.HasRoommate(bob.ID()))
	assert.False(t, bob.IsMemberOf(h.ID()))
}

func TestDeclineAndRevokeInvitation(t *testing.T) {
	alice, bob, carol := newTestUser(t, "alice"), newTestUser(t, "bob"), newTestUser(t, "carol")
	h := newTestHousehold(t, alice)
	svc := NewService()
	_, err := h.Invite(bob)
	require.NoError(t, err)
	_, err = h.Invite(carol)
	require.NoError(t, err)

	require.NoError(t, svc.DeclineInvitation(h, bob))
	require.NoError(t, svc.RevokeInvitation(h, carol))
	assert.Empty(t, h.Invitations())
	assert.False(t, bob.IsInvitedTo(h.ID()))
	assert.False(t, carol.IsInvitedTo(h.ID()))

	assertKind(t, svc.DeclineInvitation(h, bob), ErrInvitationNotFound)
}

func TestRemoveMemberReportsSuccessor(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice, bob)

	next, err := NewService().RemoveMember(h, alice)
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), next)
	assert.False(t, alice.IsMemberOf(h.ID()))
	assert.Equal(t, bob.ID(), h.Admin().UserID())

	_, err = NewService().RemoveMember(h, bob)
	assertKind(t, err, ErrLastRoommate)
	assert.True(t, bob.IsMemberOf(h.ID()))
}

func TestLeaveAsMember(t *testing.T) {
	alice, bob := newTestUser(t, "alice"), newTestUser(t, "bob")
	h := newTestHousehold(t, alice, bob)

	res, err := NewService().Leave(h, bob)
	require.NoError(t, err)
	assert.False(t, res.MustDissolve)
	assert.Equal(t, uuid.Nil, res.NewAdmin)
	assert.False(t, h.HasRoommate(bob.ID()))
	assert.False(t, bob.IsMemberOf(h.ID()))
}

func TestLeaveAsAdminHandsOverToEarliestJoined(t *testing.T) {
	alice, bob, carol := newTestUser(t, "alice"), newTestUser(t, "bob"), newTestUser(t, "carol")
	h := newTestHousehold(t, alice, bob, carol)

	res, err := NewService().Leave(h, alice)
	require.NoError(t, err)
	assert.Equal(t, bob.ID(), res.NewAdmin)
	assert.Equal(t, bob.ID(), h.Admin().UserID())
	assert.Equal(t, 2, h.Len())
}

func TestLeaveAsLastMember(t *testing.T) {
	alice := newTestUser(t, "alice")
	h := newTestHousehold(t, alice)

	res, err := NewService().Leave(h, alice)
	require.NoError(t, err)
	assert.True(t, res.MustDissolve)
	assert.Equal(t, 1, h.Len())
}

func TestDissolveStripsInvitationsAndMemberships(t *testing.T) {
	alice, bob, carol := newTestUser(t, "alice"), newTestUser(t, "bob"), newTestUser(t, "carol")
	h := newTestHousehold(t, alice, bob)
	_, err := h.Invite(carol)
	require.NoError(t, err)
	svc := NewService()

	err = svc.Dissolve(h, map[uuid.UUID]*User{alice.ID(): alice, bob.ID(): bob})
	assertKind(t, err, ErrMissingUser)
	assert.True(t, carol.IsInvitedTo(h.ID()))
	assert.Equal(t, 2, h.Len())

	users := map[uuid.UUID]*User{alice.ID(): alice, bob.ID(): bob, carol.ID(): carol}
	require.NoError(t, svc.Dissolve(h, users))
	assert.Equal(t, StateDeletable, h.State())
	for _, u := range users {
		assert.False(t, u.IsInvitedTo(h.ID()))
		assert.False(t, u.IsMemberOf(h.ID()))
	}
	_, err = h.Invite(newTestUser(t, "dave"))
	assertKind(t, err, ErrDissolved)
}

func TestOffboardUser(t *testing.T) {
	alice, bob, carol := newTestUser(t, "alice"), newTestUser(t, "bob"), newTestUser(t, "carol")
	shared := newTestHousehold(t, alice, bob, carol) // alice is admin
	solo := newTestHousehold(t, alice)
	invitedTo := newTestHousehold(t, bob)
	_, err := invitedTo.Invite(alice)
	require.NoError(t, err)

	households := map[uuid.UUID]*Household{
		shared.ID():    shared,
		solo.ID():      solo,
		invitedTo.ID(): invitedTo,
	}
	res, err := NewService().OffboardUser(alice, households)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{shared.ID()}, res.RemovedFrom)
	assert.Equal(t, []uuid.UUID{solo.ID()}, res.ToDissolve)
	assert.Equal(t, []uuid.UUID{invitedTo.ID()}, res.Uninvited)
	require.Len(t, res.AdminTransfers, 1)
	assert.Equal(t, bob.ID(), res.AdminTransfers[0].To)

	assert.False(t, shared.HasRoommate(alice.ID()))
	assert.NotNil(t, shared.Admin())
	assert.True(t, shared.Admin().IsAdmin())
	_, invited := invitedTo.Invitation(alice.ID())
	assert.False(t, invited)
	assert.Empty(t, alice.InvitationIDs())
	assert.Equal(t, []uuid.UUID{solo.ID()}, alice.HouseholdIDs())
}

func TestOffboardUserMissingHousehold(t *testing.T) {
	alice := newTestUser(t, "alice")
	newTestHousehold(t, alice)

	_, err := NewService().OffboardUser(alice, map[uuid.UUID]*Household{})
	assertKind(t, err, ErrMissingHousehold)
	assert.Len(t, alice.HouseholdIDs(), 1)
}
