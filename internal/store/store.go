// Package store persists the household aggregates in SQLite. Every store
// runs against a querier, so the same code serves plain reads on the pool and
// writes inside a unit of work.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface{ Scan(...any) error }

// Stores groups one store per aggregate over a shared querier.
type Stores struct {
	Users      *UserStore
	Households *HouseholdStore
	Accounts   *AccountStore
	Lists      *ShoppingListStore
	Sprees     *ShoppingSpreeStore
	Tasks      *TaskStore
	Sessions   *SessionStore
}

func newStores(q querier) *Stores {
	return &Stores{
		Users:      NewUserStore(q),
		Households: NewHouseholdStore(q),
		Accounts:   NewAccountStore(q),
		Lists:      NewShoppingListStore(q),
		Sprees:     NewShoppingSpreeStore(q),
		Tasks:      NewTaskStore(q),
		Sessions:   NewSessionStore(q),
	}
}

// DB is the unit of work over a SQLite handle.
type DB struct {
	db   *sql.DB
	read *Stores
}

func New(db *sql.DB) *DB {
	return &DB{db: db, read: newStores(db)}
}

// Read returns stores bound to the pool for queries outside a transaction.
func (d *DB) Read() *Stores {
	return d.read
}

// InTx runs fn inside one transaction. Every aggregate fn saves commits
// together or not at all.
func (d *DB) InTx(ctx context.Context, fn func(s *Stores) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func timeOrZero(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
