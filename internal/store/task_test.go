package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/householder/internal/chore"
	"github.com/google/uuid"
)

func TestTaskSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob")
	ts := db.Read().Tasks

	task, err := chore.New(h.ID(), "Bins", "Tuesday night", 2)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	due := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	if err := task.SetSchedule(due, "FREQ=WEEKLY"); err != nil {
		t.Fatalf("set schedule: %v", err)
	}
	if err := task.Assign(h, users[1].ID()); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := ts.Save(ctx, task); err != nil {
		t.Fatalf("save task: %v", err)
	}

	got, err := ts.Get(ctx, task.ID())
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.AssigneeUserID() != users[1].ID() {
		t.Errorf("assignee = %s, want %s", got.AssigneeUserID(), users[1].ID())
	}
	if got.Repeat().String() != "FREQ=WEEKLY" {
		t.Errorf("repeat = %q, want %q", got.Repeat().String(), "FREQ=WEEKLY")
	}
	if !got.DueDate().Equal(due) {
		t.Errorf("due = %v, want %v", got.DueDate(), due)
	}
	if !got.CompletedAt().IsZero() {
		t.Errorf("completed_at = %v, want zero", got.CompletedAt())
	}
}

func TestTaskGetNotFound(t *testing.T) {
	db := setupTestDB(t)

	task, err := db.Read().Tasks.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task != nil {
		t.Error("expected nil for nonexistent task")
	}
}

func TestTaskListReferencingUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	h, users := seedHousehold(t, db, "alice", "bob")
	ts := db.Read().Tasks

	assigned, _ := chore.New(h.ID(), "Bins", "", 1)
	if err := assigned.Assign(h, users[1].ID()); err != nil {
		t.Fatalf("assign: %v", err)
	}
	other, _ := chore.New(h.ID(), "Dishes", "", 1)
	for _, task := range []*chore.Task{assigned, other} {
		if err := ts.Save(ctx, task); err != nil {
			t.Fatalf("save task: %v", err)
		}
	}

	got, err := ts.ListReferencingUser(ctx, users[1].ID())
	if err != nil {
		t.Fatalf("list referencing user: %v", err)
	}
	if len(got) != 1 || got[0].ID() != assigned.ID() {
		t.Errorf("tasks = %d, want only %s", len(got), assigned.ID())
	}

	n, err := ts.DeleteByHousehold(ctx, h.ID())
	if err != nil {
		t.Fatalf("delete by household: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}
