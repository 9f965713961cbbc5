package app

import (
	"context"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

// CreateHousehold founds a household with the caller as its admin.
func (a *App) CreateHousehold(ctx context.Context, name string) (*household.Household, error) {
	const op = "create household"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var h *household.Household
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		u, err := loadUser(ctx, s, op, actor)
		if err != nil {
			return err
		}
		if h, err = household.New(name, u); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.subscribe(actor, h.ID())
		o.broadcast("household", "created", h.ID(), h.ID(), map[string]any{"name": h.Name()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "household created", "household_id", h.ID(), "admin_id", actor)
	return h, nil
}

func (a *App) RenameHousehold(ctx context.Context, householdID uuid.UUID, name string) error {
	const op = "rename household"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		if err := h.Rename(name); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.broadcast("household", "renamed", h.ID(), h.ID(), map[string]any{"name": h.Name()})
		return nil
	})
}

// DeleteHousehold runs the full deletion cascade. Admin only.
func (a *App) DeleteHousehold(ctx context.Context, householdID uuid.UUID) error {
	const op = "delete household"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := adminOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		return a.deleteHousehold(ctx, s, o, h)
	})
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "household deleted", "household_id", householdID)
	return nil
}

// deleteHousehold dissolves h and removes everything it owns, in foreign
// key order: sprees, accounts with their transactions, lists, tasks, then
// the household row with its roommates and invitations. known supplies
// already loaded users that must be used instead of fresh copies.
func (a *App) deleteHousehold(ctx context.Context, s *store.Stores, o *outbox, h *household.Household, known ...*household.User) error {
	var ids []uuid.UUID
	for _, r := range h.Roommates() {
		ids = append(ids, r.UserID())
	}
	for _, inv := range h.Invitations() {
		ids = append(ids, inv.UserID())
	}
	users, err := s.Users.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, u := range known {
		users[u.ID()] = u
	}
	invited := h.Invitations()
	members := h.Roommates()
	if err := a.households.Dissolve(h, users); err != nil {
		return err
	}

	hid := h.ID()
	sprees, err := s.Sprees.ListByHousehold(ctx, hid)
	if err != nil {
		return err
	}
	for _, sp := range sprees {
		if err := s.Sprees.Delete(ctx, sp.ID()); err != nil {
			return err
		}
	}
	accounts, err := s.Accounts.ListByHousehold(ctx, hid)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		if err := s.Accounts.Delete(ctx, acc.ID()); err != nil {
			return err
		}
	}
	lists, err := s.Lists.ListByHousehold(ctx, hid)
	if err != nil {
		return err
	}
	for _, l := range lists {
		if err := s.Lists.Delete(ctx, l.ID()); err != nil {
			return err
		}
	}
	if _, err := s.Tasks.DeleteByHousehold(ctx, hid); err != nil {
		return err
	}
	if err := s.Households.Delete(ctx, hid); err != nil {
		return err
	}

	o.broadcast("household", "deleted", hid, hid, nil)
	for _, r := range members {
		o.unsubscribe(r.UserID(), hid)
	}
	for _, inv := range invited {
		o.notify(inv.UserID(), "invitation", "deleted", hid, inv.UserID(), nil)
	}
	return nil
}

// InviteUser invites the user registered under email. Admin only. The
// invitee is notified and mailed after the commit.
func (a *App) InviteUser(ctx context.Context, householdID uuid.UUID, email string) (*household.Invitation, error) {
	const op = "invite user"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var (
		inv     *household.Invitation
		invitee *household.User
		h       *household.Household
		inviter *household.User
	)
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		var err error
		if h, err = adminOf(ctx, s, op, householdID, actor); err != nil {
			return err
		}
		if inviter, err = loadUser(ctx, s, op, actor); err != nil {
			return err
		}
		invitee, err = s.Users.GetByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return err
		}
		if invitee == nil {
			return aggregate.Fail(ErrNotFound, op, "no user registered as "+email)
		}
		if inv, err = h.Invite(invitee); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.broadcast("invitation", "created", h.ID(), invitee.ID(), map[string]any{"name": invitee.Name()})
		o.notify(invitee.ID(), "invitation", "created", h.ID(), invitee.ID(),
			map[string]any{"household": h.Name(), "invited_by": inviter.Name()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "user invited", "household_id", householdID, "user_id", invitee.ID())

	if a.mailer != nil && a.mailer.Configured() {
		if err := a.mailer.SendInvitation(ctx, invitee.Email(), h.Name(), inviter.Name()); err != nil {
			a.logger.WarnContext(ctx, "send invitation email", "household_id", householdID, "user_id", invitee.ID(), "error", err)
		}
	}
	return inv, nil
}

// AcceptInvitation turns the caller's invitation into a membership.
func (a *App) AcceptInvitation(ctx context.Context, householdID uuid.UUID) (*household.Roommate, error) {
	const op = "accept invitation"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var r *household.Roommate
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := loadHousehold(ctx, s, op, householdID)
		if err != nil {
			return err
		}
		u, err := loadUser(ctx, s, op, actor)
		if err != nil {
			return err
		}
		if r, err = a.households.ConvertInvitationToRoommate(h, u); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.subscribe(actor, h.ID())
		o.broadcast("roommate", "joined", h.ID(), actor, map[string]any{"name": u.Name()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "invitation accepted", "household_id", householdID, "user_id", actor)
	return r, nil
}

func (a *App) DeclineInvitation(ctx context.Context, householdID uuid.UUID) error {
	const op = "decline invitation"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := loadHousehold(ctx, s, op, householdID)
		if err != nil {
			return err
		}
		u, err := loadUser(ctx, s, op, actor)
		if err != nil {
			return err
		}
		if err := a.households.DeclineInvitation(h, u); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.broadcast("invitation", "declined", h.ID(), actor, nil)
		return nil
	})
}

// RevokeInvitation withdraws the invitation of userID. Admin only.
func (a *App) RevokeInvitation(ctx context.Context, householdID, userID uuid.UUID) error {
	const op = "revoke invitation"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := adminOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		u, err := loadUser(ctx, s, op, userID)
		if err != nil {
			return err
		}
		if err := a.households.RevokeInvitation(h, u); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.broadcast("invitation", "deleted", h.ID(), userID, nil)
		o.notify(userID, "invitation", "deleted", h.ID(), userID, nil)
		return nil
	})
}

// RemoveRoommate removes a member. Admin only; when the admin removes itself
// the successor takes over. The household's records keep their entries but
// lose the link to the removed user.
func (a *App) RemoveRoommate(ctx context.Context, householdID, userID uuid.UUID) error {
	const op = "remove roommate"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := adminOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		u, err := loadUser(ctx, s, op, userID)
		if err != nil {
			return err
		}
		newAdmin, err := a.households.RemoveMember(h, u)
		if err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		if err := a.detachInHousehold(ctx, s, h.ID(), userID); err != nil {
			return err
		}
		o.broadcast("roommate", "removed", h.ID(), userID, nil)
		if newAdmin != uuid.Nil {
			o.broadcast("household", "admin_transferred", h.ID(), h.ID(),
				map[string]any{"from": userID, "to": newAdmin})
		}
		o.unsubscribe(userID, h.ID())
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "roommate removed", "household_id", householdID, "user_id", userID)
	return nil
}

// LeaveHousehold removes the caller. The last roommate leaving deletes the
// household; an admin leaving hands over to the successor.
func (a *App) LeaveHousehold(ctx context.Context, householdID uuid.UUID) (household.LeaveResult, error) {
	const op = "leave household"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return household.LeaveResult{}, err
	}
	var res household.LeaveResult
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		u, err := loadUser(ctx, s, op, actor)
		if err != nil {
			return err
		}
		if res, err = a.households.Leave(h, u); err != nil {
			return err
		}
		if res.MustDissolve {
			return a.deleteHousehold(ctx, s, o, h, u)
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		if err := a.detachInHousehold(ctx, s, h.ID(), actor); err != nil {
			return err
		}
		o.broadcast("roommate", "left", h.ID(), actor, nil)
		if res.NewAdmin != uuid.Nil {
			o.broadcast("household", "admin_transferred", h.ID(), h.ID(),
				map[string]any{"from": actor, "to": res.NewAdmin})
		}
		o.unsubscribe(actor, h.ID())
		return nil
	})
	if err != nil {
		return household.LeaveResult{}, err
	}
	a.logger.InfoContext(ctx, "left household", "household_id", householdID, "user_id", actor,
		"dissolved", res.MustDissolve, "new_admin", res.NewAdmin)
	return res, nil
}

// TransferAdmin hands the caller's admin rights to another roommate.
func (a *App) TransferAdmin(ctx context.Context, householdID, toUserID uuid.UUID) error {
	const op = "transfer admin"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := adminOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		if err := a.households.TransferAdmin(h, actor, toUserID); err != nil {
			return err
		}
		if err := s.Households.Save(ctx, h); err != nil {
			return err
		}
		o.broadcast("household", "admin_transferred", h.ID(), h.ID(),
			map[string]any{"from": actor, "to": toUserID})
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "admin transferred", "household_id", householdID, "from", actor, "to", toUserID)
	return nil
}

// detachInHousehold severs userID from the transactions, sprees and tasks
// of one household.
func (a *App) detachInHousehold(ctx context.Context, s *store.Stores, householdID, userID uuid.UUID) error {
	accounts, err := s.Accounts.ListByHousehold(ctx, householdID)
	if err != nil {
		return err
	}
	sprees, err := s.Sprees.ListByHousehold(ctx, householdID)
	if err != nil {
		return err
	}
	tasks, err := s.Tasks.ListByHousehold(ctx, householdID)
	if err != nil {
		return err
	}
	_, _, _, err = a.detach(ctx, s, userID, accounts, sprees, tasks)
	return err
}
