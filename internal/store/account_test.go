package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/money"
	"github.com/google/uuid"
)

func TestAccountSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice")

	a, err := ledger.NewAccount(h.ID(), "Groceries", money.MustCurrency("BHD", 3), 10000)
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := a.CreateIncome(1500, "Refund", day, "Shop", users[0].ID()); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if _, err := a.CreateExpense(700, "Milk", day.AddDate(0, 0, 1), "Dairy", uuid.Nil); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if err := db.Read().Accounts.Save(ctx, a); err != nil {
		t.Fatalf("save account: %v", err)
	}

	got, err := db.Read().Accounts.Get(ctx, a.ID())
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Balance() != a.Balance() {
		t.Errorf("balance = %v, want %v", got.Balance(), a.Balance())
	}
	if got.Balance().Format(false) != "BHD 10.800" {
		t.Errorf("formatted = %q, want %q", got.Balance().Format(false), "BHD 10.800")
	}
	txs := got.Transactions()
	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2", len(txs))
	}
	if txs[0].RoommateID() != users[0].ID() {
		t.Errorf("roommate = %s, want %s", txs[0].RoommateID(), users[0].ID())
	}
	if txs[1].HasRoommate() {
		t.Error("expected expense without roommate")
	}
	if !txs[1].Date().Equal(day.AddDate(0, 0, 1)) {
		t.Errorf("date = %v, want %v", txs[1].Date(), day.AddDate(0, 0, 1))
	}
}

func TestAccountSaveRewritesTransactions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, _ := seedHousehold(t, db, "alice")
	as := db.Read().Accounts

	a, err := ledger.NewAccount(h.ID(), "Bills", money.MustCurrency("USD", 2), 0)
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	tx, err := a.CreateExpense(2500, "Power", time.Now().UTC(), "Utility", uuid.Nil)
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if err := as.Save(ctx, a); err != nil {
		t.Fatalf("save account: %v", err)
	}
	if _, err := a.RemoveTransaction(tx.ID()); err != nil {
		t.Fatalf("remove transaction: %v", err)
	}
	if err := as.Save(ctx, a); err != nil {
		t.Fatalf("save account again: %v", err)
	}

	got, err := as.Get(ctx, a.ID())
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("transactions = %d, want 0", got.Len())
	}
	if !got.Balance().IsZero() {
		t.Errorf("balance = %v, want 0", got.Balance())
	}
}

func TestAccountGetRejectsDrift(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, _ := seedHousehold(t, db, "alice")

	a, err := ledger.NewAccount(h.ID(), "Bills", money.MustCurrency("USD", 2), 0)
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if err := db.Read().Accounts.Save(ctx, a); err != nil {
		t.Fatalf("save account: %v", err)
	}
	if _, err := db.db.ExecContext(ctx, `UPDATE accounts SET balance = 42 WHERE id = ?`, a.ID()); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if _, err := db.Read().Accounts.Get(ctx, a.ID()); err == nil {
		t.Fatal("expected error for drifted balance")
	}
}

func TestAccountListReferencingUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob")
	as := db.Read().Accounts

	usd := money.MustCurrency("USD", 2)
	withBob, _ := ledger.NewAccount(h.ID(), "A", usd, 0)
	without, _ := ledger.NewAccount(h.ID(), "B", usd, 0)
	if _, err := withBob.CreateExpense(100, "x", time.Now().UTC(), "y", users[1].ID()); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	for _, a := range []*ledger.Account{withBob, without} {
		if err := as.Save(ctx, a); err != nil {
			t.Fatalf("save account: %v", err)
		}
	}

	got, err := as.ListReferencingUser(ctx, users[1].ID())
	if err != nil {
		t.Fatalf("list referencing user: %v", err)
	}
	if len(got) != 1 || got[0].ID() != withBob.ID() {
		t.Errorf("accounts = %v, want only %s", got, withBob.ID())
	}

	all, err := as.ListByHousehold(ctx, h.ID())
	if err != nil {
		t.Fatalf("list by household: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("accounts = %d, want 2", len(all))
	}
}
