package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/householder/internal/app"
	"github.com/google/uuid"
)

type ShoppingHandler struct {
	app    *app.App
	logger *slog.Logger
}

func NewShoppingHandler(a *app.App, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{app: a, logger: logger}
}

func (h *ShoppingHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	lists, err := h.app.ShoppingLists(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]listDTO, 0, len(lists))
	for _, l := range lists {
		out = append(out, toList(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ShoppingHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	l, err := h.app.CreateShoppingList(r.Context(), hid, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toList(l))
}

func (h *ShoppingHandler) GetList(w http.ResponseWriter, r *http.Request) {
	hid, lid, ok := h.listIDs(w, r)
	if !ok {
		return
	}
	l, err := h.app.ShoppingList(r.Context(), hid, lid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toList(l))
}

func (h *ShoppingHandler) RenameList(w http.ResponseWriter, r *http.Request) {
	hid, lid, ok := h.listIDs(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.RenameShoppingList(r.Context(), hid, lid, req.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.GetList(w, r)
}

func (h *ShoppingHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	hid, lid, ok := h.listIDs(w, r)
	if !ok {
		return
	}
	if err := h.app.DeleteShoppingList(r.Context(), hid, lid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	hid, lid, ok := h.listIDs(w, r)
	if !ok {
		return
	}
	var req struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	it, err := h.app.AddListItem(r.Context(), hid, lid, req.Name, req.Quantity)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItem(it))
}

func (h *ShoppingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.itemCommand(w, r, h.app.RemoveListItem)
}

func (h *ShoppingHandler) PickItem(w http.ResponseWriter, r *http.Request) {
	h.itemCommand(w, r, h.app.PickItem)
}

func (h *ShoppingHandler) UnpickItem(w http.ResponseWriter, r *http.Request) {
	h.itemCommand(w, r, h.app.UnpickItem)
}

func (h *ShoppingHandler) itemCommand(w http.ResponseWriter, r *http.Request,
	cmd func(ctx context.Context, householdID, listID, itemID uuid.UUID) error) {
	hid, lid, ok := h.listIDs(w, r)
	if !ok {
		return
	}
	iid, ok := pathUUID(w, r, "item_id")
	if !ok {
		return
	}
	if err := cmd(r.Context(), hid, lid, iid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) listIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	lid, ok := pathUUID(w, r, "list_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return hid, lid, true
}

func (h *ShoppingHandler) ListSprees(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	sprees, err := h.app.ShoppingSprees(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]spreeDTO, 0, len(sprees))
	for _, s := range sprees {
		out = append(out, toSpree(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type spreeResponse struct {
	Spree   spreeDTO       `json:"spree"`
	Expense transactionDTO `json:"expense"`
}

// CreateSpree shops the picked items of a list and books the expense.
func (h *ShoppingHandler) CreateSpree(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req struct {
		ListID      uuid.UUID `json:"list_id"`
		AccountID   uuid.UUID `json:"account_id"`
		Date        string    `json:"date"`
		Amount      int64     `json:"amount"`
		Description string    `json:"description"`
		Recipient   string    `json:"recipient"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	spree, expense, err := h.app.CreateShoppingSpree(r.Context(), hid, app.SpreeInput{
		ListID:      req.ListID,
		AccountID:   req.AccountID,
		Date:        date,
		Amount:      req.Amount,
		Description: req.Description,
		Recipient:   req.Recipient,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, spreeResponse{Spree: toSpree(spree), Expense: toTransaction(expense)})
}

func (h *ShoppingHandler) DeleteSpree(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	sid, ok := pathUUID(w, r, "spree_id")
	if !ok {
		return
	}
	if err := h.app.DeleteShoppingSpree(r.Context(), hid, sid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
