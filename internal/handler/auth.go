package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/householder/internal/app"
	"github.com/dukerupert/householder/internal/auth"
)

type AuthHandler struct {
	app    *app.App
	logger *slog.Logger
}

func NewAuthHandler(a *app.App, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{app: a, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.app.RegisterUser(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUser(u))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, u, err := h.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: toUser(u)})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Logout(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Me(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

// DeleteMe removes the caller's own account with the full offboarding
// ripple.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	rep, err := h.app.DeleteUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeletionReport(rep))
}
