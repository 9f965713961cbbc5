package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/householder/internal/app"
	"github.com/google/uuid"
)

type HouseholdHandler struct {
	app    *app.App
	logger *slog.Logger
}

func NewHouseholdHandler(a *app.App, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{app: a, logger: logger}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.app.Households(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaries(summaries))
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	hh, err := h.app.CreateHousehold(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	view, err := h.app.Household(r.Context(), hh.ID())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHousehold(view.Household, view.Users))
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	view, err := h.app.Household(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toHousehold(view.Household, view.Users))
}

func (h *HouseholdHandler) Rename(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.RenameHousehold(r.Context(), hid, req.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.Get(w, r)
}

func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	if err := h.app.DeleteHousehold(r.Context(), hid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HouseholdHandler) Invite(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.app.InviteUser(r.Context(), hid, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvitation(inv, nil))
}

// Accept turns the caller's invitation into a membership.
func (h *HouseholdHandler) Accept(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	rm, err := h.app.AcceptInvitation(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, roommateDTO{UserID: rm.UserID(), Role: rm.Role(), JoinedAt: rm.JoinedAt()})
}

func (h *HouseholdHandler) Decline(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	if err := h.app.DeclineInvitation(r.Context(), hid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HouseholdHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	uid, ok := pathUUID(w, r, "user_id")
	if !ok {
		return
	}
	if err := h.app.RevokeInvitation(r.Context(), hid, uid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HouseholdHandler) RemoveRoommate(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	uid, ok := pathUUID(w, r, "user_id")
	if !ok {
		return
	}
	if err := h.app.RemoveRoommate(r.Context(), hid, uid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	res, err := h.app.LeaveHousehold(r.Context(), hid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp := struct {
		Deleted  bool       `json:"household_deleted"`
		NewAdmin *uuid.UUID `json:"new_admin_id,omitempty"`
	}{Deleted: res.MustDissolve, NewAdmin: uuidPtr(res.NewAdmin)}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HouseholdHandler) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	hid, ok := pathUUID(w, r, "household_id")
	if !ok {
		return
	}
	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.TransferAdmin(r.Context(), hid, req.UserID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.Get(w, r)
}
