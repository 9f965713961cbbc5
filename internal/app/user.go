package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/auth"
	"github.com/dukerupert/householder/internal/chore"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/shopping"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

// RegisterUser creates an enabled user and sends a welcome mail.
func (a *App) RegisterUser(ctx context.Context, email, name, password string) (*household.User, error) {
	const op = "register user"
	hash, err := a.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, aggregate.Fail(household.ErrInvalidUser, op, err.Error())
	}
	if err != nil {
		return nil, err
	}
	u, err := household.NewUser(email, name, hash)
	if err != nil {
		return nil, err
	}

	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		existing, err := s.Users.GetByEmail(ctx, u.Email())
		if err != nil {
			return err
		}
		if existing != nil {
			return aggregate.Fail(ErrEmailTaken, op, u.Email())
		}
		return s.Users.Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "user registered", "user_id", u.ID())

	if a.mailer != nil && a.mailer.Configured() {
		if err := a.mailer.SendWelcome(ctx, u.Email(), u.Name()); err != nil {
			a.logger.WarnContext(ctx, "send welcome email", "user_id", u.ID(), "error", err)
		}
	}
	return u, nil
}

// Login checks the password and opens a session.
func (a *App) Login(ctx context.Context, email, password string) (*store.Session, *household.User, error) {
	const op = "login"
	u, err := a.db.Read().Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.Enabled() {
		a.logger.WarnContext(ctx, "login rejected", "reason", "unknown or disabled user")
		return nil, nil, aggregate.Fail(ErrInvalidCredentials, op, "")
	}
	if err := a.hasher.Compare(u.PasswordHash(), password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			a.logger.WarnContext(ctx, "login rejected", "user_id", u.ID(), "reason", "password mismatch")
			return nil, nil, aggregate.Fail(ErrInvalidCredentials, op, "")
		}
		return nil, nil, err
	}

	var sess *store.Session
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		var err error
		sess, err = s.Sessions.Create(ctx, u.ID(), a.sessionTTL)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	a.logger.InfoContext(ctx, "user logged in", "user_id", u.ID())
	return sess, u, nil
}

// Logout ends the caller's session.
func (a *App) Logout(ctx context.Context) error {
	const op = "logout"
	token := auth.Token(ctx)
	if token == "" {
		return aggregate.Fail(ErrUnauthenticated, op, "")
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		return s.Sessions.Delete(ctx, token)
	})
}

// DisableUser blocks userID from signing in and ends its sessions.
// Memberships are kept.
func (a *App) DisableUser(ctx context.Context, userID uuid.UUID) error {
	const op = "disable user"
	err := a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		u, err := loadUser(ctx, s, op, userID)
		if err != nil {
			return err
		}
		if err := u.Disable(); err != nil {
			return err
		}
		if err := s.Users.Save(ctx, u); err != nil {
			return err
		}
		return s.Sessions.DeleteByUserID(ctx, userID)
	})
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "user disabled", "user_id", userID)
	return nil
}

func (a *App) EnableUser(ctx context.Context, userID uuid.UUID) error {
	const op = "enable user"
	err := a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		u, err := loadUser(ctx, s, op, userID)
		if err != nil {
			return err
		}
		if err := u.Enable(); err != nil {
			return err
		}
		return s.Users.Save(ctx, u)
	})
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "user enabled", "user_id", userID)
	return nil
}

// UserByEmail looks a user up for operator commands.
func (a *App) UserByEmail(ctx context.Context, email string) (*household.User, error) {
	u, err := a.db.Read().Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, aggregate.Fail(ErrNotFound, "user by email", email)
	}
	return u, nil
}

// DeletionReport summarizes the ripple of deleting a user.
type DeletionReport struct {
	household.OffboardResult
	Dissolved            []uuid.UUID
	DetachedTransactions int
	DetachedSprees       int
	DetachedTasks        int
}

// DeleteUser removes userID everywhere. Households it was the last roommate
// of are deleted; admin rights of populated households move to the
// successor; transactions, sprees and tasks it touched are kept but lose
// the link to it.
func (a *App) DeleteUser(ctx context.Context, userID uuid.UUID) (DeletionReport, error) {
	const op = "delete user"
	var rep DeletionReport
	err := a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		rep = DeletionReport{}
		u, err := loadUser(ctx, s, op, userID)
		if err != nil {
			return err
		}
		ids := append(u.HouseholdIDs(), u.InvitationIDs()...)
		households, err := s.Households.GetMany(ctx, ids)
		if err != nil {
			return err
		}
		res, err := a.households.OffboardUser(u, households)
		if err != nil {
			return err
		}
		rep.OffboardResult = res

		for _, hid := range res.ToDissolve {
			if err := a.deleteHousehold(ctx, s, o, households[hid], u); err != nil {
				return err
			}
			rep.Dissolved = append(rep.Dissolved, hid)
		}
		for _, hid := range res.Uninvited {
			if err := s.Households.Save(ctx, households[hid]); err != nil {
				return err
			}
			o.broadcast("invitation", "deleted", hid, userID, nil)
		}
		for _, hid := range res.RemovedFrom {
			if err := s.Households.Save(ctx, households[hid]); err != nil {
				return err
			}
			o.broadcast("roommate", "removed", hid, userID, nil)
		}
		for _, t := range res.AdminTransfers {
			o.broadcast("household", "admin_transferred", t.HouseholdID, t.HouseholdID,
				map[string]any{"from": t.From, "to": t.To})
		}

		rep.DetachedTransactions, rep.DetachedSprees, rep.DetachedTasks, err = a.detachEverywhere(ctx, s, userID)
		if err != nil {
			return err
		}
		if err := s.Sessions.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return s.Users.Delete(ctx, userID)
	})
	if err != nil {
		return DeletionReport{}, err
	}
	a.logger.InfoContext(ctx, "user deleted",
		"user_id", userID,
		"households_left", len(rep.RemovedFrom),
		"households_dissolved", len(rep.Dissolved),
		"transactions_detached", rep.DetachedTransactions,
	)
	return rep, nil
}

// detachEverywhere severs userID from every transaction, spree and task that
// references it.
func (a *App) detachEverywhere(ctx context.Context, s *store.Stores, userID uuid.UUID) (int, int, int, error) {
	accounts, err := s.Accounts.ListReferencingUser(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	sprees, err := s.Sprees.ListReferencingUser(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	tasks, err := s.Tasks.ListReferencingUser(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}
	return a.detach(ctx, s, userID, accounts, sprees, tasks)
}

func (a *App) detach(ctx context.Context, s *store.Stores, userID uuid.UUID,
	accounts []*ledger.Account, sprees []*shopping.Spree, tasks []*chore.Task) (int, int, int, error) {
	nt := a.ledger.DetachRoommate(accounts, userID)
	for _, acc := range accounts {
		if err := s.Accounts.Save(ctx, acc); err != nil {
			return 0, 0, 0, err
		}
	}
	ns := shopping.DetachRoommate(sprees, userID)
	for _, sp := range sprees {
		if err := s.Sprees.Save(ctx, sp); err != nil {
			return 0, 0, 0, err
		}
	}
	nk := chore.DetachRoommate(tasks, userID)
	for _, t := range tasks {
		if err := s.Tasks.Save(ctx, t); err != nil {
			return 0, 0, 0, err
		}
	}
	return nt, ns, nk, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
