package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/householder/internal/chore"
	"github.com/google/uuid"
)

type TaskStore struct {
	q querier
}

func NewTaskStore(q querier) *TaskStore {
	return &TaskStore{q: q}
}

const taskCols = `id, household_id, title, description, assignee_user_id, points, repeat_rule, due_date, done, completed_at, last_completed_by, created_at`

func scanTask(sc scanner) (*chore.Task, error) {
	var (
		snap          chore.Snapshot
		assignee      uuid.NullUUID
		lastCompleter uuid.NullUUID
		due           sql.NullTime
		completed     sql.NullTime
	)
	err := sc.Scan(&snap.ID, &snap.HouseholdID, &snap.Title, &snap.Description, &assignee, &snap.Points,
		&snap.Repeat, &due, &snap.Done, &completed, &lastCompleter, &snap.CreatedAt)
	if err != nil {
		return nil, err
	}
	snap.AssigneeUserID = assignee.UUID
	snap.LastCompletedBy = lastCompleter.UUID
	snap.DueDate = timeOrZero(due)
	snap.CompletedAt = timeOrZero(completed)
	snap.CreatedAt = snap.CreatedAt.UTC()
	return chore.Restore(snap)
}

func (s *TaskStore) Get(ctx context.Context, id uuid.UUID) (*chore.Task, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) list(ctx context.Context, query string, args ...any) ([]*chore.Task, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*chore.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*chore.Task, error) {
	return s.list(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY done ASC, due_date IS NULL, due_date ASC, created_at ASC`,
		householdID)
}

// ListReferencingUser returns tasks assigned to or last completed by userID.
func (s *TaskStore) ListReferencingUser(ctx context.Context, userID uuid.UUID) ([]*chore.Task, error) {
	return s.list(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE assignee_user_id = ? OR last_completed_by = ?`,
		userID, userID)
}

func (s *TaskStore) Save(ctx context.Context, t *chore.Task) error {
	snap := t.Snapshot()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   assignee_user_id = excluded.assignee_user_id,
		   points = excluded.points,
		   repeat_rule = excluded.repeat_rule,
		   due_date = excluded.due_date,
		   done = excluded.done,
		   completed_at = excluded.completed_at,
		   last_completed_by = excluded.last_completed_by`,
		snap.ID, snap.HouseholdID, snap.Title, snap.Description, nullUUID(snap.AssigneeUserID), snap.Points,
		snap.Repeat, nullTime(snap.DueDate), snap.Done, nullTime(snap.CompletedAt), nullUUID(snap.LastCompletedBy),
		snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteByHousehold removes every task of a household and returns how many
// were deleted.
func (s *TaskStore) DeleteByHousehold(ctx context.Context, householdID uuid.UUID) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE household_id = ?`, householdID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	return res.RowsAffected()
}
