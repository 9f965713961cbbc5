package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/householder/internal/ledger"
	"github.com/google/uuid"
)

type AccountStore struct {
	q querier
}

func NewAccountStore(q querier) *AccountStore {
	return &AccountStore{q: q}
}

const accountCols = `id, household_id, name, currency_code, currency_scale, opening_balance, balance, created_at`
const transactionCols = `id, kind, amount, description, date, source, recipient, roommate_user_id, shopping_spree_id, created_at`

func scanAccount(sc scanner) (ledger.AccountSnapshot, error) {
	var a ledger.AccountSnapshot
	err := sc.Scan(&a.ID, &a.HouseholdID, &a.Name, &a.CurrencyCode, &a.CurrencyScale,
		&a.OpeningBalance, &a.Balance, &a.CreatedAt)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, err
}

func scanTransaction(sc scanner) (ledger.TransactionSnapshot, error) {
	var (
		t        ledger.TransactionSnapshot
		roommate uuid.NullUUID
		spree    uuid.NullUUID
	)
	err := sc.Scan(&t.ID, &t.Kind, &t.Amount, &t.Description, &t.Date, &t.Source, &t.Recipient,
		&roommate, &spree, &t.CreatedAt)
	t.RoommateID = roommate.UUID
	t.ShoppingSpreeID = spree.UUID
	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return t, err
}

// Get loads an account with all its transactions. The stored balance is
// checked against the transactions on the way in.
func (s *AccountStore) Get(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	snap, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE account_id = ? ORDER BY date ASC, created_at ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.RestoreAccount(snap)
}

// ListByHousehold loads every account of a household ordered by name.
func (s *AccountStore) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*ledger.Account, error) {
	ids, err := queryIDs(ctx, s.q, `SELECT id FROM accounts WHERE household_id = ? ORDER BY name ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return s.getAll(ctx, ids)
}

// ListReferencingUser loads the accounts holding a transaction booked by
// userID.
func (s *AccountStore) ListReferencingUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Account, error) {
	ids, err := queryIDs(ctx, s.q,
		`SELECT DISTINCT account_id FROM transactions WHERE roommate_user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts for user: %w", err)
	}
	return s.getAll(ctx, ids)
}

func (s *AccountStore) getAll(ctx context.Context, ids []uuid.UUID) ([]*ledger.Account, error) {
	out := make([]*ledger.Account, 0, len(ids))
	for _, id := range ids {
		a, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// Save upserts the account row and rewrites its transactions.
func (s *AccountStore) Save(ctx context.Context, a *ledger.Account) error {
	snap := a.Snapshot()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO accounts (`+accountCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, balance = excluded.balance`,
		snap.ID, snap.HouseholdID, snap.Name, snap.CurrencyCode, snap.CurrencyScale,
		snap.OpeningBalance, snap.Balance, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range snap.Transactions {
		if _, err := s.q.ExecContext(ctx,
			`INSERT INTO transactions (account_id, `+transactionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, t.ID, t.Kind, t.Amount, t.Description, t.Date, t.Source, t.Recipient,
			nullUUID(t.RoommateID), nullUUID(t.ShoppingSpreeID), t.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return nil
}

// Delete removes an account and its transactions. Sprees settled on the
// account must be deleted first.
func (s *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
