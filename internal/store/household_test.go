package store

import (
	"context"
	"testing"

	"github.com/dukerupert/householder/internal/household"
	"github.com/google/uuid"
)

func TestHouseholdSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob", "carol")

	got, err := db.Read().Households.Get(ctx, h.ID())
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if got.Name() != "Flat 4B" {
		t.Errorf("name = %q, want %q", got.Name(), "Flat 4B")
	}
	if got.Len() != 3 {
		t.Fatalf("roommates = %d, want 3", got.Len())
	}
	if got.Admin().UserID() != users[0].ID() {
		t.Errorf("admin = %s, want %s", got.Admin().UserID(), users[0].ID())
	}
	for i, r := range got.Roommates() {
		if r.UserID() != users[i].ID() {
			t.Errorf("roommate %d = %s, want %s", i, r.UserID(), users[i].ID())
		}
	}
}

func TestHouseholdGetNotFound(t *testing.T) {
	db := setupTestDB(t)

	h, err := db.Read().Households.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if h != nil {
		t.Error("expected nil for nonexistent household")
	}
}

func TestHouseholdSaveRewritesMembers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob")

	svc := household.NewService()
	if err := svc.TransferAdmin(h, users[0].ID(), users[1].ID()); err != nil {
		t.Fatalf("transfer admin: %v", err)
	}
	if _, err := svc.RemoveMember(h, users[0]); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if err := db.Read().Households.Save(ctx, h); err != nil {
		t.Fatalf("save household: %v", err)
	}

	got, err := db.Read().Households.Get(ctx, h.ID())
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("roommates = %d, want 1", got.Len())
	}
	if got.Admin().UserID() != users[1].ID() {
		t.Errorf("admin = %s, want %s", got.Admin().UserID(), users[1].ID())
	}
}

func TestHouseholdListForUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, users := seedHousehold(t, db, "alice", "bob")

	list, err := db.Read().Households.ListForUser(ctx, users[1].ID())
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("households = %d, want 1", len(list))
	}
	if list[0].Role != household.RoleUser {
		t.Errorf("role = %q, want %q", list[0].Role, household.RoleUser)
	}
	if list[0].Members != 2 {
		t.Errorf("members = %d, want 2", list[0].Members)
	}
}

func TestHouseholdDeleteCascadesMembers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob")

	if err := db.Read().Households.Delete(ctx, h.ID()); err != nil {
		t.Fatalf("delete household: %v", err)
	}
	u, err := db.Read().Users.Get(ctx, users[1].ID())
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.IsMemberOf(h.ID()) {
		t.Error("membership should be gone with the household")
	}
}
