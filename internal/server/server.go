package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/householder/internal/app"
	"github.com/dukerupert/householder/internal/handler"
	"github.com/dukerupert/householder/internal/middleware"
	"github.com/dukerupert/householder/internal/store"
	ws "github.com/dukerupert/householder/internal/websocket"
)

// Auth endpoints allow this many attempts per client IP and window.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Server struct {
	app         *app.App
	hub         *ws.Hub
	stores      *store.Stores
	authH       *handler.AuthHandler
	householdH  *handler.HouseholdHandler
	ledgerH     *handler.LedgerHandler
	shoppingH   *handler.ShoppingHandler
	choreH      *handler.ChoreHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the handlers around a. Reads for authentication go through
// db's pool stores.
func New(a *app.App, db *store.DB, hub *ws.Hub, logger *slog.Logger) *Server {
	return &Server{
		app:         a,
		hub:         hub,
		stores:      db.Read(),
		authH:       handler.NewAuthHandler(a, logger.With("component", "auth")),
		householdH:  handler.NewHouseholdHandler(a, logger.With("component", "household")),
		ledgerH:     handler.NewLedgerHandler(a, logger.With("component", "ledger")),
		shoppingH:   handler.NewShoppingHandler(a, logger.With("component", "shopping")),
		choreH:      handler.NewChoreHandler(a, logger.With("component", "chore")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.stores.Sessions, s.stores.Users)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, authRateLimit, authRateWindow)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.app.Memberships, s.logger.With("component", "websocket")))

	// Session and self
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("DELETE /api/me", s.authH.DeleteMe)

	// Households, roommates and invitations
	mux.HandleFunc("GET /api/households", s.householdH.List)
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{household_id}", s.householdH.Get)
	mux.HandleFunc("PUT /api/households/{household_id}", s.householdH.Rename)
	mux.HandleFunc("DELETE /api/households/{household_id}", s.householdH.Delete)
	mux.HandleFunc("POST /api/households/{household_id}/leave", s.householdH.Leave)
	mux.HandleFunc("POST /api/households/{household_id}/admin", s.householdH.TransferAdmin)
	mux.HandleFunc("DELETE /api/households/{household_id}/roommates/{user_id}", s.householdH.RemoveRoommate)
	mux.HandleFunc("POST /api/households/{household_id}/invitations", s.householdH.Invite)
	mux.HandleFunc("DELETE /api/households/{household_id}/invitations/{user_id}", s.householdH.Revoke)
	mux.HandleFunc("POST /api/households/{household_id}/invitation/accept", s.householdH.Accept)
	mux.HandleFunc("POST /api/households/{household_id}/invitation/decline", s.householdH.Decline)

	// Accounts and transactions
	mux.HandleFunc("GET /api/households/{household_id}/accounts", s.ledgerH.ListAccounts)
	mux.HandleFunc("POST /api/households/{household_id}/accounts", s.ledgerH.CreateAccount)
	mux.HandleFunc("GET /api/households/{household_id}/accounts/{account_id}", s.ledgerH.GetAccount)
	mux.HandleFunc("PUT /api/households/{household_id}/accounts/{account_id}", s.ledgerH.RenameAccount)
	mux.HandleFunc("DELETE /api/households/{household_id}/accounts/{account_id}", s.ledgerH.DeleteAccount)
	mux.HandleFunc("POST /api/households/{household_id}/accounts/{account_id}/transactions", s.ledgerH.Book)
	mux.HandleFunc("PATCH /api/households/{household_id}/accounts/{account_id}/transactions/{transaction_id}", s.ledgerH.UpdateTransaction)
	mux.HandleFunc("DELETE /api/households/{household_id}/accounts/{account_id}/transactions/{transaction_id}", s.ledgerH.DeleteTransaction)

	// Shopping lists and sprees
	mux.HandleFunc("GET /api/households/{household_id}/lists", s.shoppingH.ListLists)
	mux.HandleFunc("POST /api/households/{household_id}/lists", s.shoppingH.CreateList)
	mux.HandleFunc("GET /api/households/{household_id}/lists/{list_id}", s.shoppingH.GetList)
	mux.HandleFunc("PUT /api/households/{household_id}/lists/{list_id}", s.shoppingH.RenameList)
	mux.HandleFunc("DELETE /api/households/{household_id}/lists/{list_id}", s.shoppingH.DeleteList)
	mux.HandleFunc("POST /api/households/{household_id}/lists/{list_id}/items", s.shoppingH.AddItem)
	mux.HandleFunc("DELETE /api/households/{household_id}/lists/{list_id}/items/{item_id}", s.shoppingH.RemoveItem)
	mux.HandleFunc("POST /api/households/{household_id}/lists/{list_id}/items/{item_id}/pick", s.shoppingH.PickItem)
	mux.HandleFunc("DELETE /api/households/{household_id}/lists/{list_id}/items/{item_id}/pick", s.shoppingH.UnpickItem)
	mux.HandleFunc("GET /api/households/{household_id}/sprees", s.shoppingH.ListSprees)
	mux.HandleFunc("POST /api/households/{household_id}/sprees", s.shoppingH.CreateSpree)
	mux.HandleFunc("DELETE /api/households/{household_id}/sprees/{spree_id}", s.shoppingH.DeleteSpree)

	// Tasks
	mux.HandleFunc("GET /api/households/{household_id}/tasks", s.choreH.List)
	mux.HandleFunc("POST /api/households/{household_id}/tasks", s.choreH.Create)
	mux.HandleFunc("PUT /api/households/{household_id}/tasks/{task_id}/assignee", s.choreH.Assign)
	mux.HandleFunc("POST /api/households/{household_id}/tasks/{task_id}/complete", s.choreH.Complete)
	mux.HandleFunc("POST /api/households/{household_id}/tasks/{task_id}/reopen", s.choreH.Reopen)
	mux.HandleFunc("DELETE /api/households/{household_id}/tasks/{task_id}", s.choreH.Delete)
}
