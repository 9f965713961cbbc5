package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/householder/internal/household"
	"github.com/google/uuid"
)

type HouseholdStore struct {
	q querier
}

func NewHouseholdStore(q querier) *HouseholdStore {
	return &HouseholdStore{q: q}
}

const householdCols = `id, name, next_seq, created_at`
const roommateCols = `user_id, role, seq, joined_at`
const invitationCols = `user_id, created_at`

func (s *HouseholdStore) Get(ctx context.Context, id uuid.UUID) (*household.Household, error) {
	var snap household.HouseholdSnapshot
	row := s.q.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	err := row.Scan(&snap.ID, &snap.Name, &snap.NextSeq, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	snap.CreatedAt = snap.CreatedAt.UTC()

	if snap.Roommates, err = s.roommates(ctx, id); err != nil {
		return nil, err
	}
	if snap.Invitations, err = s.invitations(ctx, id); err != nil {
		return nil, err
	}
	return household.RestoreHousehold(snap)
}

func (s *HouseholdStore) roommates(ctx context.Context, householdID uuid.UUID) ([]household.RoommateSnapshot, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+roommateCols+` FROM roommates WHERE household_id = ? ORDER BY seq ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list roommates: %w", err)
	}
	defer rows.Close()

	var out []household.RoommateSnapshot
	for rows.Next() {
		var r household.RoommateSnapshot
		if err := rows.Scan(&r.UserID, &r.Role, &r.Seq, &r.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan roommate: %w", err)
		}
		r.JoinedAt = r.JoinedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *HouseholdStore) invitations(ctx context.Context, householdID uuid.UUID) ([]household.InvitationSnapshot, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+invitationCols+` FROM invitations WHERE household_id = ? ORDER BY created_at ASC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []household.InvitationSnapshot
	for rows.Next() {
		var inv household.InvitationSnapshot
		if err := rows.Scan(&inv.UserID, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		inv.CreatedAt = inv.CreatedAt.UTC()
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetMany loads households by id. Missing ids are skipped.
func (s *HouseholdStore) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*household.Household, error) {
	out := make(map[uuid.UUID]*household.Household, len(ids))
	for _, id := range ids {
		h, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if h != nil {
			out[id] = h
		}
	}
	return out, nil
}

// Save upserts the household row and rewrites its roommates and
// invitations.
func (s *HouseholdStore) Save(ctx context.Context, h *household.Household) error {
	snap := h.Snapshot()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO households (`+householdCols+`) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, next_seq = excluded.next_seq`,
		snap.ID, snap.Name, snap.NextSeq, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save household: %w", err)
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM roommates WHERE household_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear roommates: %w", err)
	}
	for _, r := range snap.Roommates {
		if _, err := s.q.ExecContext(ctx,
			`INSERT INTO roommates (household_id, `+roommateCols+`) VALUES (?, ?, ?, ?, ?)`,
			snap.ID, r.UserID, r.Role, r.Seq, r.JoinedAt,
		); err != nil {
			return fmt.Errorf("insert roommate: %w", err)
		}
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM invitations WHERE household_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear invitations: %w", err)
	}
	for _, inv := range snap.Invitations {
		if _, err := s.q.ExecContext(ctx,
			`INSERT INTO invitations (household_id, `+invitationCols+`) VALUES (?, ?, ?)`,
			snap.ID, inv.UserID, inv.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert invitation: %w", err)
		}
	}
	return nil
}

// Delete removes the household row; roommates and invitations go with it.
// Accounts, lists, sprees and tasks must be deleted first.
func (s *HouseholdStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}

// HouseholdSummary is the read model for listing a user's households.
type HouseholdSummary struct {
	ID      uuid.UUID
	Name    string
	Role    household.Role
	Members int
}

func (s *HouseholdStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]HouseholdSummary, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT h.id, h.name, r.role,
		        (SELECT COUNT(*) FROM roommates m WHERE m.household_id = h.id)
		 FROM households h
		 JOIN roommates r ON h.id = r.household_id
		 WHERE r.user_id = ?
		 ORDER BY h.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list households for user: %w", err)
	}
	defer rows.Close()

	var out []HouseholdSummary
	for rows.Next() {
		var hs HouseholdSummary
		if err := rows.Scan(&hs.ID, &hs.Name, &hs.Role, &hs.Members); err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		out = append(out, hs)
	}
	return out, rows.Err()
}
