// Package app is the client-side session and resource cache of the pet-care
// marketplace: who is logged in, the order listing, the selected order and
// its chat. Every remote call goes through Backend and every user-facing
// outcome is raised on the Notifier.
package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"petlink/internal/apiclient"
	"petlink/internal/notify"
	"petlink/internal/util"
	"petlink/pkg/claims"
	"petlink/pkg/domain"
	"petlink/pkg/store"
)

// Backend is the remote marketplace API.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password string, role domain.UserRole) (domain.User, error)
	GetUser(ctx context.Context, token string, id int64) (domain.User, error)
	UpdateUser(ctx context.Context, token string, id int64, patch apiclient.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, token string, id int64, password string) error

	ListOrders(ctx context.Context, token string, f domain.OrderFilters) ([]domain.Order, error)
	GetOrder(ctx context.Context, token string, id int64) (domain.Order, error)
	CreateOrder(ctx context.Context, token string, payload domain.OrderPayload) (domain.Order, error)
	UpdateOrder(ctx context.Context, token string, id int64, patch domain.OrderPatch) (domain.Order, error)
	DeleteOrder(ctx context.Context, token string, id int64) error

	ListMessages(ctx context.Context, token string, orderID int64) ([]domain.Message, error)
	SendMessage(ctx context.Context, token string, orderID, senderID int64, content string) (domain.Message, error)
	DeleteMessage(ctx context.Context, token string, id int64) error
	DeleteMessagesByOrder(ctx context.Context, token string, orderID int64) error

	ListProposals(ctx context.Context, token string, skip, limit int) ([]domain.Proposal, error)
	CreateProposal(ctx context.Context, token string, payload domain.ProposalPayload) (domain.Proposal, error)
	UpdateProposal(ctx context.Context, token string, id int64, patch domain.ProposalPatch) (domain.Proposal, error)
	DeleteProposal(ctx context.Context, token string, id int64) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer func(prompt string) bool

// Session is the authenticated identity. Token and UserID are either both
// set or both empty.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	Email     string
	Role      domain.UserRole
	ExpiresAt time.Time
}

// Active reports whether a user is logged in.
func (s Session) Active() bool {
	return s.Token != "" && s.UserID > 0
}

// Forms holds the in-progress user input that successful operations reset.
type Forms struct {
	Order   domain.OrderDraft
	Message string
}

type Config struct {
	API      Backend
	Storage  store.KV
	Notifier *notify.Notifier
	Confirm  Confirmer
	// Location interprets zone-less dates typed by the user.
	Location *time.Location
}

// App owns the session and the cached resources. It is safe for concurrent
// use; the lock is never held across a network call.
type App struct {
	api     Backend
	kv      store.KV
	toasts  *notify.Notifier
	confirm Confirmer
	loc     *time.Location

	mu       sync.Mutex
	session  Session
	filters  domain.OrderFilters
	orders   []domain.Order
	selected *domain.Order
	messages []domain.Message
	forms    Forms
	orderGen uint64
	msgGen   uint64
}

func New(cfg Config) (*App, error) {
	if cfg.API == nil {
		return nil, errors.New("api backend is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("session storage is required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.New()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &App{
		api:     cfg.API,
		kv:      cfg.Storage,
		toasts:  cfg.Notifier,
		confirm: cfg.Confirm,
		loc:     cfg.Location,
		filters: defaultFilters(),
	}, nil
}

func defaultFilters() domain.OrderFilters {
	return domain.OrderFilters{SortOrder: domain.SortAsc}
}

// Notifier returns the toast sink shared by all operations.
func (a *App) Notifier() *notify.Notifier { return a.toasts }

// Init restores a persisted session and, when one is found, starts
// synchronizing profile and orders.
func (a *App) Init(ctx context.Context) error {
	ctx = util.WithRequestID(ctx)
	ok, err := a.Restore(ctx)
	if err != nil || !ok {
		return err
	}
	a.startSession(ctx)
	return nil
}

// Restore loads a persisted session without contacting the server. A
// half-written session (token without user id or the reverse) is treated
// as absent and removed.
func (a *App) Restore(ctx context.Context) (bool, error) {
	ctx = util.WithRequestID(ctx)
	logger := util.LoggerFromContext(ctx)

	token, _, err := a.kv.Get(ctx, store.KeyToken)
	if err != nil {
		return false, err
	}
	rawID, _, err := a.kv.Get(ctx, store.KeyUserID)
	if err != nil {
		return false, err
	}
	username, _, err := a.kv.Get(ctx, store.KeyUsername)
	if err != nil {
		return false, err
	}

	userID, _ := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if token == "" || userID <= 0 {
		if token != "" || rawID != "" || username != "" {
			logger.Warn("discarding incomplete stored session")
			if err := a.kv.Delete(ctx, store.SessionKeys...); err != nil {
				logger.Error("clear stored session failed", "error", err)
			}
		}
		return false, nil
	}

	sess := Session{Token: token, UserID: userID, Username: username, Role: domain.RoleOwner}
	if cs, err := claims.DecodeClaims(token); err == nil {
		sess.ExpiresAt = cs.ExpiresAt
	}
	a.mu.Lock()
	a.session = sess
	a.mu.Unlock()
	logger.Debug("session restored", "user_id", userID)
	return true, nil
}

// startSession runs the session-started effects. Their failures have
// already been reported to the user.
func (a *App) startSession(ctx context.Context) {
	if err := a.dispatch(ctx, EventSessionStarted); err != nil {
		util.LoggerFromContext(ctx).Debug("session start effects incomplete", "error", err)
	}
}

// Close releases the session storage.
func (a *App) Close() error {
	return a.kv.Close()
}

func (a *App) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) Filters() domain.OrderFilters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filters
}

func (a *App) Forms() Forms {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.forms
}

// Orders returns a copy of the cached order listing.
func (a *App) Orders() []domain.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Order(nil), a.orders...)
}

// Messages returns a copy of the cached chat of the selected order.
func (a *App) Messages() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Message(nil), a.messages...)
}

// Selected returns the selected order, if any.
func (a *App) Selected() (domain.Order, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.selected == nil {
		return domain.Order{}, false
	}
	return *a.selected, true
}

func (a *App) confirmed(prompt string) bool {
	if a.confirm == nil {
		return false
	}
	return a.confirm(prompt)
}

// requireSession returns the current session or raises the log-in warning.
func (a *App) requireSession() (Session, error) {
	sess := a.Session()
	if !sess.Active() {
		a.toasts.Warning("Please log in first")
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// stillCurrentLocked reports whether token is still the session token.
func (a *App) stillCurrentLocked(token string) bool {
	return a.session.Active() && a.session.Token == token
}

func (a *App) reportValidation(err error) error {
	a.toasts.Warning("Please correct the errors in the form.")
	return err
}

func (a *App) reportRequest(prefix string, re *RequestError) error {
	if prefix == "" {
		a.toasts.Error(re.UserMessage())
	} else {
		a.toasts.Error(prefix + ": " + re.UserMessage())
	}
	return re
}
