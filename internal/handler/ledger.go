package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/householder/internal/app"
	"github.com/dukerupert/householder/internal/ledger"
)

type LedgerHandler struct {
	app    *app.App
	logger *slog.Logger
}

func NewLedgerHandler(a *app.App, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{app: a, logger: logger}
}

func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	accounts, err := h.app.Accounts(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]accountDTO, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toAccount(acc, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req struct {
		Name           string `json:"name"`
		Currency       string `json:"currency"`
		OpeningBalance int64  `json:"opening_balance"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	acc, err := h.app.CreateAccount(r.Context(), hid, req.Name, req.Currency, req.OpeningBalance)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccount(acc, true))
}

func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	aid, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	acc, err := h.app.Account(r.Context(), hid, aid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(acc, true))
}

func (h *LedgerHandler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	aid, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.RenameAccount(r.Context(), hid, aid, req.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.GetAccount(w, r)
}

func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	aid, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	if err := h.app.DeleteAccount(r.Context(), hid, aid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionRequest struct {
	Kind        ledger.Kind `json:"kind"`
	Amount      int64       `json:"amount"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Party       string      `json:"party"`
}

func (h *LedgerHandler) Book(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	aid, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	t, err := h.app.BookTransaction(r.Context(), hid, aid, app.BookInput{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		Party:       req.Party,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransaction(t))
}

// UpdateTransaction applies the fields present in the body; absent fields
// keep their value.
func (h *LedgerHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	aid, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	tid, ok := pathUUID(w, r, "transaction_id")
	if !ok {
		return
	}
	var req struct {
		Amount      *int64  `json:"amount"`
		Description *string `json:"description"`
		Date        *string `json:"date"`
		Party       *string `json:"party"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	p := ledger.UpdateParams{Amount: req.Amount, Description: req.Description, Party: req.Party}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		p.Date = &date
	}
	t, err := h.app.UpdateTransaction(r.Context(), hid, aid, tid, p)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransaction(t))
}

func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	aid, ok := pathUUID(w, r, "account_id")
	if !ok {
		return
	}
	tid, ok := pathUUID(w, r, "transaction_id")
	if !ok {
		return
	}
	if err := h.app.DeleteTransaction(r.Context(), hid, aid, tid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
