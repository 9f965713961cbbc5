package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/householder/internal/auth"
	"github.com/dukerupert/householder/internal/store"
)

// RequireAuth resolves the bearer session token and populates AuthContext.
// Disabled users are turned away like unknown tokens.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(r.Context(), token)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			u, err := users.Get(r.Context(), sess.UserID)
			if err != nil || u == nil || !u.Enabled() {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID: u.ID(),
				Name:   u.Name(),
				Token:  sess.Token,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// a websocket upgrade, so the token query parameter is accepted as well.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="householder"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
