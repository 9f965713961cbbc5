package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/householder/internal/database"
	"github.com/dukerupert/householder/internal/household"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

// seedHousehold saves a founder and a household with the given extra
// roommates.
func seedHousehold(t *testing.T, db *DB, founder string, others ...string) (*household.Household, []*household.User) {
	t.Helper()
	ctx := context.Background()
	users := []*household.User{newUser(t, founder)}
	for _, name := range others {
		users = append(users, newUser(t, name))
	}
	h, err := household.New("Flat 4B", users[0])
	if err != nil {
		t.Fatalf("new household: %v", err)
	}
	svc := household.NewService()
	for _, u := range users[1:] {
		if _, err := h.Invite(u); err != nil {
			t.Fatalf("invite: %v", err)
		}
		if _, err := svc.ConvertInvitationToRoommate(h, u); err != nil {
			t.Fatalf("convert invitation: %v", err)
		}
	}
	err = db.InTx(ctx, func(s *Stores) error {
		for _, u := range users {
			if err := s.Users.Save(ctx, u); err != nil {
				return err
			}
		}
		return s.Households.Save(ctx, h)
	})
	if err != nil {
		t.Fatalf("seed household: %v", err)
	}
	return h, users
}

func newUser(t *testing.T, name string) *household.User {
	t.Helper()
	u, err := household.NewUser(name+"@example.com", name, "hash")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	return u
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := newUser(t, "alice")
	boom := errors.New("boom")

	err := db.InTx(ctx, func(s *Stores) error {
		if err := s.Users.Save(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	got, err := db.Read().Users.Get(ctx, u.ID())
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != nil {
		t.Error("expected user to be rolled back")
	}
}
