package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUserSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	us := db.Read().Users

	u := newUser(t, "alice")
	if err := us.Save(ctx, u); err != nil {
		t.Fatalf("save user: %v", err)
	}

	got, err := us.Get(ctx, u.ID())
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email() != "alice@example.com" {
		t.Errorf("email = %q, want %q", got.Email(), "alice@example.com")
	}
	if !got.Enabled() {
		t.Error("expected enabled user")
	}
	if !got.CreatedAt().Equal(u.CreatedAt()) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt(), u.CreatedAt())
	}
}

func TestUserSaveUpdates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	us := db.Read().Users

	u := newUser(t, "alice")
	if err := us.Save(ctx, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if err := u.Rename("Alice B."); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := u.Disable(); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := us.Save(ctx, u); err != nil {
		t.Fatalf("save user again: %v", err)
	}

	got, err := us.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.Name() != "Alice B." {
		t.Errorf("name = %q, want %q", got.Name(), "Alice B.")
	}
	if got.Enabled() {
		t.Error("expected disabled user")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	us := db.Read().Users

	if err := us.Save(ctx, newUser(t, "alice")); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if err := us.Save(ctx, newUser(t, "alice")); err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}
}

func TestUserGetNotFound(t *testing.T) {
	db := setupTestDB(t)

	u, err := db.Read().Users.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserLoadsMembershipsAndInvitations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob")

	carol := newUser(t, "carol")
	if _, err := h.Invite(carol); err != nil {
		t.Fatalf("invite: %v", err)
	}
	err := db.InTx(ctx, func(s *Stores) error {
		if err := s.Users.Save(ctx, carol); err != nil {
			return err
		}
		return s.Households.Save(ctx, h)
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	bob, err := db.Read().Users.Get(ctx, users[1].ID())
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if !bob.IsMemberOf(h.ID()) {
		t.Error("expected bob to be a member")
	}

	gotCarol, err := db.Read().Users.Get(ctx, carol.ID())
	if err != nil {
		t.Fatalf("get carol: %v", err)
	}
	if !gotCarol.IsInvitedTo(h.ID()) {
		t.Error("expected carol to be invited")
	}
	if gotCarol.IsMemberOf(h.ID()) {
		t.Error("carol should not be a member yet")
	}
}
