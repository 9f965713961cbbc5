// Package app is the command layer. Each command loads the aggregates it
// needs, runs the domain operation and saves the result inside one unit of
// work; change notifications go out only after the commit.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/auth"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/money"
	"github.com/dukerupert/householder/internal/shopping"
	"github.com/dukerupert/householder/internal/store"
	"github.com/dukerupert/householder/internal/websocket"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = aggregate.New(aggregate.KindNotFound, "not found")
	ErrEmailTaken         = aggregate.New(aggregate.KindIllegalState, "email is already registered")
	ErrUnauthenticated    = aggregate.New(aggregate.KindUnauthenticated, "authentication required")
	ErrInvalidCredentials = aggregate.New(aggregate.KindUnauthenticated, "invalid email or password")
	ErrNotRoommate        = aggregate.New(aggregate.KindPermissionDenied, "caller is not a roommate of this household")
	ErrAdminOnly          = aggregate.New(aggregate.KindPermissionDenied, "only the household admin may do this")
)

// Publisher receives change notifications. *websocket.Hub implements it.
type Publisher interface {
	Broadcast(msg websocket.Message)
	Notify(userID uuid.UUID, msg websocket.Message)
	Subscribe(userID, householdID uuid.UUID)
	Unsubscribe(userID, householdID uuid.UUID)
}

// Mailer sends transactional mail. *email.Client implements it.
type Mailer interface {
	Configured() bool
	SendInvitation(ctx context.Context, toEmail, householdName, inviterName string) error
	SendWelcome(ctx context.Context, toEmail, name string) error
}

type Deps struct {
	DB              *store.DB
	Publisher       Publisher
	Mailer          Mailer
	Hasher          *auth.Hasher
	Logger          *slog.Logger
	SessionTTL      time.Duration
	DefaultCurrency money.Currency
}

type App struct {
	db         *store.DB
	pub        Publisher
	mailer     Mailer
	hasher     *auth.Hasher
	logger     *slog.Logger
	sessionTTL time.Duration
	currency   money.Currency
	now        func() time.Time

	households *household.Service
	ledger     *ledger.Service
	shopping   *shopping.Service
}

func New(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		db:         d.DB,
		pub:        d.Publisher,
		mailer:     d.Mailer,
		hasher:     d.Hasher,
		logger:     logger.With("component", "app"),
		sessionTTL: d.SessionTTL,
		currency:   d.DefaultCurrency,
		now:        func() time.Time { return time.Now().UTC() },
		households: household.NewService(),
		ledger:     ledger.NewService(),
		shopping:   shopping.NewService(),
	}
}

// outbox collects publisher calls made while a command runs. They are
// replayed in order once the transaction has committed.
type outbox struct {
	calls []func(Publisher)
}

func (o *outbox) broadcast(entity, action string, householdID, id uuid.UUID, extra map[string]any) {
	msg := websocket.NewMessage(entity, action, householdID, id, extra)
	o.calls = append(o.calls, func(p Publisher) { p.Broadcast(msg) })
}

func (o *outbox) notify(userID uuid.UUID, entity, action string, householdID, id uuid.UUID, extra map[string]any) {
	msg := websocket.NewMessage(entity, action, householdID, id, extra)
	o.calls = append(o.calls, func(p Publisher) { p.Notify(userID, msg) })
}

func (o *outbox) subscribe(userID, householdID uuid.UUID) {
	o.calls = append(o.calls, func(p Publisher) { p.Subscribe(userID, householdID) })
}

func (o *outbox) unsubscribe(userID, householdID uuid.UUID) {
	o.calls = append(o.calls, func(p Publisher) { p.Unsubscribe(userID, householdID) })
}

// run executes fn as one unit of work and publishes its outbox on success.
func (a *App) run(ctx context.Context, op string, fn func(s *store.Stores, o *outbox) error) error {
	var o outbox
	err := a.db.InTx(ctx, func(s *store.Stores) error {
		return fn(s, &o)
	})
	if err != nil {
		a.logFailure(ctx, op, err)
		return err
	}
	if a.pub != nil {
		for _, call := range o.calls {
			call(a.pub)
		}
	}
	return nil
}

// logFailure logs domain rejections at warn and everything else at error.
func (a *App) logFailure(ctx context.Context, op string, err error) {
	if kind := aggregate.KindOf(err); kind != "" {
		a.logger.WarnContext(ctx, "command rejected", "op", op, "kind", kind, "error", err)
		return
	}
	a.logger.ErrorContext(ctx, "command failed", "op", op, "error", err)
}

func (a *App) actor(ctx context.Context, op string) (uuid.UUID, error) {
	id := auth.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, aggregate.Fail(ErrUnauthenticated, op, "")
	}
	return id, nil
}

func notFound(op, what string, id uuid.UUID) error {
	return aggregate.Fail(ErrNotFound, op, what+" "+id.String())
}

func loadUser(ctx context.Context, s *store.Stores, op string, id uuid.UUID) (*household.User, error) {
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound(op, "user", id)
	}
	return u, nil
}

func loadHousehold(ctx context.Context, s *store.Stores, op string, id uuid.UUID) (*household.Household, error) {
	h, err := s.Households.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, notFound(op, "household", id)
	}
	return h, nil
}

// memberOf loads the household and checks that userID is one of its
// roommates.
func memberOf(ctx context.Context, s *store.Stores, op string, householdID, userID uuid.UUID) (*household.Household, error) {
	h, err := loadHousehold(ctx, s, op, householdID)
	if err != nil {
		return nil, err
	}
	if !h.HasRoommate(userID) {
		return nil, aggregate.Fail(ErrNotRoommate, op, "household "+householdID.String())
	}
	return h, nil
}

// adminOf is memberOf restricted to the household admin.
func adminOf(ctx context.Context, s *store.Stores, op string, householdID, userID uuid.UUID) (*household.Household, error) {
	h, err := memberOf(ctx, s, op, householdID, userID)
	if err != nil {
		return nil, err
	}
	if admin := h.Admin(); admin == nil || admin.UserID() != userID {
		return nil, aggregate.Fail(ErrAdminOnly, op, "")
	}
	return h, nil
}

func loadAccount(ctx context.Context, s *store.Stores, op string, h *household.Household, id uuid.UUID) (*ledger.Account, error) {
	acc, err := s.Accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, notFound(op, "account", id)
	}
	if acc.HouseholdID() != h.ID() {
		return nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "account "+id.String())
	}
	return acc, nil
}

func loadList(ctx context.Context, s *store.Stores, op string, h *household.Household, id uuid.UUID) (*shopping.List, error) {
	l, err := s.Lists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, notFound(op, "shopping list", id)
	}
	if l.HouseholdID() != h.ID() {
		return nil, aggregate.Fail(household.ErrCrossHouseholdReference, op, "shopping list "+id.String())
	}
	return l, nil
}
