package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/householder/internal/shopping"
	"github.com/google/uuid"
)

type ShoppingListStore struct {
	q querier
}

func NewShoppingListStore(q querier) *ShoppingListStore {
	return &ShoppingListStore{q: q}
}

const shoppingListCols = `id, household_id, name, created_at`
const shoppingListItemCols = `id, name, quantity, picked, position, created_at`

func (s *ShoppingListStore) Get(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	var snap shopping.ListSnapshot
	row := s.q.QueryRowContext(ctx, `SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	err := row.Scan(&snap.ID, &snap.HouseholdID, &snap.Name, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	snap.CreatedAt = snap.CreatedAt.UTC()

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+shoppingListItemCols+` FROM shopping_list_items WHERE list_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it shopping.ItemSnapshot
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Picked, &it.Position, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.CreatedAt = it.CreatedAt.UTC()
		snap.Items = append(snap.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return shopping.RestoreList(snap)
}

func (s *ShoppingListStore) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*shopping.List, error) {
	ids, err := queryIDs(ctx, s.q,
		`SELECT id FROM shopping_lists WHERE household_id = ? ORDER BY created_at ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	out := make([]*shopping.List, 0, len(ids))
	for _, id := range ids {
		l, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *ShoppingListStore) Save(ctx context.Context, l *shopping.List) error {
	snap := l.Snapshot()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO shopping_lists (`+shoppingListCols+`) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		snap.ID, snap.HouseholdID, snap.Name, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save shopping list: %w", err)
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM shopping_list_items WHERE list_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for _, it := range snap.Items {
		if _, err := s.q.ExecContext(ctx,
			`INSERT INTO shopping_list_items (list_id, `+shoppingListItemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, it.ID, it.Name, it.Quantity, it.Picked, it.Position, it.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return nil
}

func (s *ShoppingListStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}

type ShoppingSpreeStore struct {
	q querier
}

func NewShoppingSpreeStore(q querier) *ShoppingSpreeStore {
	return &ShoppingSpreeStore{q: q}
}

const shoppingSpreeCols = `id, household_id, account_id, roommate_user_id, date, shopping_expense_id, created_at`

func (s *ShoppingSpreeStore) Get(ctx context.Context, id uuid.UUID) (*shopping.Spree, error) {
	var (
		snap     shopping.SpreeSnapshot
		roommate uuid.NullUUID
		expense  uuid.NullUUID
	)
	row := s.q.QueryRowContext(ctx, `SELECT `+shoppingSpreeCols+` FROM shopping_sprees WHERE id = ?`, id)
	err := row.Scan(&snap.ID, &snap.HouseholdID, &snap.AccountID, &roommate, &snap.Date, &expense, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping spree: %w", err)
	}
	snap.RoommateUserID = roommate.UUID
	snap.ShoppingExpenseID = expense.UUID
	snap.Date = snap.Date.UTC()
	snap.CreatedAt = snap.CreatedAt.UTC()

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, quantity FROM shopping_spree_items WHERE spree_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list spree items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it shopping.SpreeItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan spree item: %w", err)
		}
		snap.Items = append(snap.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list spree items: %w", err)
	}
	return shopping.RestoreSpree(snap), nil
}

func (s *ShoppingSpreeStore) listWhere(ctx context.Context, where string, arg any) ([]*shopping.Spree, error) {
	ids, err := queryIDs(ctx, s.q, `SELECT id FROM shopping_sprees WHERE `+where+` ORDER BY date ASC, created_at ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list shopping sprees: %w", err)
	}
	out := make([]*shopping.Spree, 0, len(ids))
	for _, id := range ids {
		sp, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if sp != nil {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *ShoppingSpreeStore) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*shopping.Spree, error) {
	return s.listWhere(ctx, `household_id = ?`, householdID)
}

func (s *ShoppingSpreeStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*shopping.Spree, error) {
	return s.listWhere(ctx, `account_id = ?`, accountID)
}

func (s *ShoppingSpreeStore) ListReferencingUser(ctx context.Context, userID uuid.UUID) ([]*shopping.Spree, error) {
	return s.listWhere(ctx, `roommate_user_id = ?`, userID)
}

// Save writes the spree row. Items are frozen at creation, so they are only
// inserted the first time.
func (s *ShoppingSpreeStore) Save(ctx context.Context, sp *shopping.Spree) error {
	snap := sp.Snapshot()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO shopping_sprees (`+shoppingSpreeCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		snap.ID, snap.HouseholdID, snap.AccountID, nullUUID(snap.RoommateUserID), snap.Date,
		nullUUID(snap.ShoppingExpenseID), snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save shopping spree: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if inserted == 0 {
		_, err := s.q.ExecContext(ctx,
			`UPDATE shopping_sprees SET roommate_user_id = ?, shopping_expense_id = ? WHERE id = ?`,
			nullUUID(snap.RoommateUserID), nullUUID(snap.ShoppingExpenseID), snap.ID,
		)
		if err != nil {
			return fmt.Errorf("update shopping spree: %w", err)
		}
		return nil
	}

	for i, it := range snap.Items {
		if _, err := s.q.ExecContext(ctx,
			`INSERT INTO shopping_spree_items (id, spree_id, name, quantity, position) VALUES (?, ?, ?, ?, ?)`,
			it.ID, snap.ID, it.Name, it.Quantity, i,
		); err != nil {
			return fmt.Errorf("insert spree item: %w", err)
		}
	}
	return nil
}

func (s *ShoppingSpreeStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM shopping_sprees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping spree: %w", err)
	}
	return nil
}
