package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/householder/internal/household"
	"github.com/google/uuid"
)

// UserStore writes the users row only. Memberships and invitations are
// read back from the roommates and invitations tables that the household
// store owns.
type UserStore struct {
	q querier
}

func NewUserStore(q querier) *UserStore {
	return &UserStore{q: q}
}

const userCols = `id, email, name, password_hash, enabled, created_at`

func scanUser(sc scanner) (household.UserSnapshot, error) {
	var s household.UserSnapshot
	err := sc.Scan(&s.ID, &s.Email, &s.Name, &s.PasswordHash, &s.Enabled, &s.CreatedAt)
	s.CreatedAt = s.CreatedAt.UTC()
	return s, err
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*household.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	return s.load(ctx, row)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*household.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	return s.load(ctx, row)
}

func (s *UserStore) load(ctx context.Context, row *sql.Row) (*household.User, error) {
	snap, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	snap.HouseholdIDs, err = queryIDs(ctx, s.q,
		`SELECT household_id FROM roommates WHERE user_id = ?`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	snap.InvitationIDs, err = queryIDs(ctx, s.q,
		`SELECT household_id FROM invitations WHERE user_id = ?`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return household.RestoreUser(snap), nil
}

// GetMany loads the users with the given ids. Missing ids are skipped.
func (s *UserStore) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*household.User, error) {
	out := make(map[uuid.UUID]*household.User, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		u, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			out[id] = u
		}
	}
	return out, nil
}

func (s *UserStore) Save(ctx context.Context, u *household.User) error {
	snap := u.Snapshot()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email = excluded.email,
		   name = excluded.name,
		   password_hash = excluded.password_hash,
		   enabled = excluded.enabled`,
		snap.ID, snap.Email, snap.Name, snap.PasswordHash, snap.Enabled, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
