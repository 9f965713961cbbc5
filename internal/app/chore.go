package app

import (
	"context"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/chore"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

// TaskInput describes a new chore. Repeat is a rule such as
// "FREQ=WEEKLY;INTERVAL=2" and needs a due date.
type TaskInput struct {
	Title       string
	Description string
	Points      int
	DueDate     time.Time
	Repeat      string
	AssigneeID  uuid.UUID
}

func taskExtra(t *chore.Task) map[string]any {
	return map[string]any{
		"title":    t.Title(),
		"assignee": t.AssigneeUserID(),
		"done":     t.Done(),
		"due_date": t.DueDate(),
	}
}

func (a *App) CreateTask(ctx context.Context, householdID uuid.UUID, in TaskInput) (*chore.Task, error) {
	const op = "create task"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return nil, err
	}
	var t *chore.Task
	err = a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		if t, err = chore.New(h.ID(), in.Title, in.Description, in.Points); err != nil {
			return err
		}
		if err := t.SetSchedule(in.DueDate, in.Repeat); err != nil {
			return err
		}
		if in.AssigneeID != uuid.Nil {
			if err := t.Assign(h, in.AssigneeID); err != nil {
				return err
			}
		}
		if err := s.Tasks.Save(ctx, t); err != nil {
			return err
		}
		o.broadcast("task", "created", h.ID(), t.ID(), taskExtra(t))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AssignTask hands the task to userID; uuid.Nil unassigns it.
func (a *App) AssignTask(ctx context.Context, householdID, taskID, userID uuid.UUID) error {
	return a.editTask(ctx, "assign task", "assigned", householdID, taskID, func(h *household.Household, t *chore.Task, actor uuid.UUID) error {
		return t.Assign(h, userID)
	})
}

// CompleteTask marks the task done by the caller. Repeating tasks move to
// their next due date instead.
func (a *App) CompleteTask(ctx context.Context, householdID, taskID uuid.UUID) error {
	return a.editTask(ctx, "complete task", "completed", householdID, taskID, func(h *household.Household, t *chore.Task, actor uuid.UUID) error {
		return t.Complete(actor, a.now())
	})
}

func (a *App) ReopenTask(ctx context.Context, householdID, taskID uuid.UUID) error {
	return a.editTask(ctx, "reopen task", "reopened", householdID, taskID, func(h *household.Household, t *chore.Task, actor uuid.UUID) error {
		return t.Reopen()
	})
}

func (a *App) DeleteTask(ctx context.Context, householdID, taskID uuid.UUID) error {
	const op = "delete task"
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		t, err := loadTask(ctx, s, op, h, taskID)
		if err != nil {
			return err
		}
		if err := s.Tasks.Delete(ctx, t.ID()); err != nil {
			return err
		}
		o.broadcast("task", "deleted", h.ID(), t.ID(), nil)
		return nil
	})
}

func (a *App) editTask(ctx context.Context, op, action string, householdID, taskID uuid.UUID, edit func(*household.Household, *chore.Task, uuid.UUID) error) error {
	actor, err := a.actor(ctx, op)
	if err != nil {
		return err
	}
	return a.run(ctx, op, func(s *store.Stores, o *outbox) error {
		h, err := memberOf(ctx, s, op, householdID, actor)
		if err != nil {
			return err
		}
		t, err := loadTask(ctx, s, op, h, taskID)
		if err != nil {
			return err
		}
		if err := edit(h, t, actor); err != nil {
			return err
		}
		if err := s.Tasks.Save(ctx, t); err != nil {
			return err
		}
		o.broadcast("task", action, h.ID(), t.ID(), taskExtra(t))
		return nil
	})
}

func loadTask(ctx context.Context, s *store.Stores, op string, h *household.Household, id uuid.UUID) (*chore.Task, error) {
	t, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound(op, "task", id)
	}
	if t.HouseholdID() != h.ID() {
		return nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "task "+id.String())
	}
	return t, nil
}
