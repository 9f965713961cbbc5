package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/householder/internal/app"
	"github.com/google/uuid"
)

type ChoreHandler struct {
	app    *app.App
	logger *slog.Logger
}

func NewChoreHandler(a *app.App, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{app: a, logger: logger}
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	DueDate     string `json:"due_date"`
	Repeat      string `json:"repeat"`
	AssigneeID  string `json:"assignee_id"`
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	tasks, err := h.app.Tasks(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	today := h.app.Now()
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTask(t, today))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}
	assignee, err := optionalUUID(req.AssigneeID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid assignee_id")
		return
	}
	t, err := h.app.CreateTask(r.Context(), hid, app.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		DueDate:     due,
		Repeat:      req.Repeat,
		AssigneeID:  assignee,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTask(t, h.app.Now()))
}

// Assign hands the task to a roommate; an empty assignee_id unassigns it.
func (h *ChoreHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssigneeID string `json:"assignee_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	assignee, err := optionalUUID(req.AssigneeID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid assignee_id")
		return
	}
	h.taskCommand(w, r, func(ctx context.Context, hid, tid uuid.UUID) error {
		return h.app.AssignTask(ctx, hid, tid, assignee)
	})
}

func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.taskCommand(w, r, h.app.CompleteTask)
}

func (h *ChoreHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.taskCommand(w, r, h.app.ReopenTask)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.taskCommand(w, r, h.app.DeleteTask)
}

func (h *ChoreHandler) taskCommand(w http.ResponseWriter, r *http.Request, cmd func(ctx context.Context, householdID, taskID uuid.UUID) error) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	tid, ok := pathUUID(w, r, "task_id")
	if !ok {
		return
	}
	if err := cmd(r.Context(), hid, tid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
