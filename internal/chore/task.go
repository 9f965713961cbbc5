// Package chore models household tasks that roommates are assigned to and
// complete.
package chore

import (
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/household"
	"github.com/google/uuid"
)

var (
	ErrInvalidTask     = aggregate.New(aggregate.KindInvalidArgument, "invalid task")
	ErrInvalidRepeat   = aggregate.New(aggregate.KindInvalidArgument, "invalid repeat rule")
	ErrForeignAssignee = aggregate.New(aggregate.KindForeignReference, "assignee is not a roommate of the task's household")
	ErrAlreadyDone     = aggregate.New(aggregate.KindIllegalState, "task is already done")
	ErrNotDone         = aggregate.New(aggregate.KindIllegalState, "task is not done")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusNotDue    Status = "not_due"
)

// Task is a household chore. A repeating task never stays done: completing
// it moves the due date to the next occurrence.
type Task struct {
	id              uuid.UUID
	householdID     uuid.UUID
	title           string
	description     string
	assigneeUserID  uuid.UUID
	points          int
	repeat          Repeat
	dueDate         time.Time
	done            bool
	completedAt     time.Time
	lastCompletedBy uuid.UUID
	createdAt       time.Time
}

func New(householdID uuid.UUID, title, description string, points int) (*Task, error) {
	const op = "new task"
	if householdID == uuid.Nil {
		return nil, aggregate.Fail(ErrInvalidTask, op, "household is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, aggregate.Fail(ErrInvalidTask, op, "title is required")
	}
	if points < 0 {
		return nil, aggregate.Fail(ErrInvalidTask, op, "points must not be negative")
	}
	return &Task{
		id:          uuid.New(),
		householdID: householdID,
		title:       title,
		description: strings.TrimSpace(description),
		points:      points,
		createdAt:   time.Now().UTC(),
	}, nil
}

func (t *Task) ID() uuid.UUID              { return t.id }
func (t *Task) HouseholdID() uuid.UUID     { return t.householdID }
func (t *Task) Title() string              { return t.title }
func (t *Task) Description() string        { return t.description }
func (t *Task) AssigneeUserID() uuid.UUID  { return t.assigneeUserID }
func (t *Task) Points() int                { return t.points }
func (t *Task) Repeat() Repeat             { return t.repeat }
func (t *Task) DueDate() time.Time         { return t.dueDate }
func (t *Task) Done() bool                 { return t.done }
func (t *Task) CompletedAt() time.Time     { return t.completedAt }
func (t *Task) LastCompletedBy() uuid.UUID { return t.lastCompletedBy }
func (t *Task) CreatedAt() time.Time       { return t.createdAt }

func (t *Task) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return aggregate.Fail(ErrInvalidTask, "rename task", "title is required")
	}
	t.title = title
	return nil
}

func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
}

func (t *Task) SetPoints(points int) error {
	if points < 0 {
		return aggregate.Fail(ErrInvalidTask, "set points", "points must not be negative")
	}
	t.points = points
	return nil
}

// SetSchedule sets the due date and repeat rule together. A repeating task
// needs a due date to count from.
func (t *Task) SetSchedule(due time.Time, rule string) error {
	const op = "set schedule"
	r, err := ParseRepeat(rule)
	if err != nil {
		return aggregate.Fail(ErrInvalidRepeat, op, err.Error())
	}
	if !r.IsZero() && due.IsZero() {
		return aggregate.Fail(ErrInvalidRepeat, op, "a repeating task needs a due date")
	}
	t.dueDate = due
	t.repeat = r
	return nil
}

// Assign hands the task to a roommate of h. uuid.Nil unassigns.
func (t *Task) Assign(h *household.Household, userID uuid.UUID) error {
	const op = "assign task"
	if h == nil {
		return aggregate.Fail(household.ErrMissingHousehold, op, "")
	}
	if h.ID() != t.householdID {
		return aggregate.Fail(household.ErrCrossHouseholdReference, op, "household "+h.ID().String())
	}
	if userID != uuid.Nil && !h.HasRoommate(userID) {
		return aggregate.Fail(ErrForeignAssignee, op, userID.String())
	}
	t.assigneeUserID = userID
	return nil
}

// Complete marks the task done by userID. A repeating task is rescheduled
// instead and stays open.
func (t *Task) Complete(userID uuid.UUID, now time.Time) error {
	if t.done {
		return aggregate.Fail(ErrAlreadyDone, "complete task", t.title)
	}
	t.completedAt = now
	t.lastCompletedBy = userID
	if !t.repeat.IsZero() {
		t.dueDate = t.repeat.Next(t.dueDate, now)
		return nil
	}
	t.done = true
	return nil
}

func (t *Task) Reopen() error {
	if !t.done {
		return aggregate.Fail(ErrNotDone, "reopen task", t.title)
	}
	t.done = false
	t.completedAt = time.Time{}
	return nil
}

// RemoveRoommate detaches userID as assignee and last completer. It never
// fails.
func (t *Task) RemoveRoommate(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	if t.assigneeUserID == userID {
		t.assigneeUserID = uuid.Nil
	}
	if t.lastCompletedBy == userID {
		t.lastCompletedBy = uuid.Nil
	}
}

// Status classifies the task relative to today.
func (t *Task) Status(today time.Time) Status {
	if t.done {
		return StatusCompleted
	}
	if t.dueDate.IsZero() {
		return StatusPending
	}
	due, today := startOfDay(t.dueDate), startOfDay(today)
	switch {
	case due.Before(today):
		return StatusOverdue
	case due.After(today):
		return StatusNotDue
	default:
		return StatusPending
	}
}

// DetachRoommate severs userID from every task and returns the number of
// tasks touched.
func DetachRoommate(tasks []*Task, userID uuid.UUID) int {
	if userID == uuid.Nil {
		return 0
	}
	n := 0
	for _, t := range tasks {
		if t.assigneeUserID == userID || t.lastCompletedBy == userID {
			t.RemoveRoommate(userID)
			n++
		}
	}
	return n
}

// Snapshot is the persisted form of a Task.
type Snapshot struct {
	ID              uuid.UUID
	HouseholdID     uuid.UUID
	Title           string
	Description     string
	AssigneeUserID  uuid.UUID
	Points          int
	Repeat          string
	DueDate         time.Time
	Done            bool
	CompletedAt     time.Time
	LastCompletedBy uuid.UUID
	CreatedAt       time.Time
}

func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:              t.id,
		HouseholdID:     t.householdID,
		Title:           t.title,
		Description:     t.description,
		AssigneeUserID:  t.assigneeUserID,
		Points:          t.points,
		Repeat:          t.repeat.String(),
		DueDate:         t.dueDate,
		Done:            t.done,
		CompletedAt:     t.completedAt,
		LastCompletedBy: t.lastCompletedBy,
		CreatedAt:       t.createdAt,
	}
}

// Restore rebuilds a Task loaded from storage.
func Restore(s Snapshot) (*Task, error) {
	r, err := ParseRepeat(s.Repeat)
	if err != nil {
		return nil, aggregate.Fail(ErrInvalidRepeat, "restore task", err.Error())
	}
	return &Task{
		id:              s.ID,
		householdID:     s.HouseholdID,
		title:           s.Title,
		description:     s.Description,
		assigneeUserID:  s.AssigneeUserID,
		points:          s.Points,
		repeat:          r,
		dueDate:         s.DueDate,
		done:            s.Done,
		completedAt:     s.CompletedAt,
		lastCompletedBy: s.LastCompletedBy,
		createdAt:       s.CreatedAt,
	}, nil
}
