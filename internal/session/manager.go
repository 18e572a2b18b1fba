package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/errs"
	"github.com/libradesk/libradesk/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=manager.go -destination=mocks/mock.go

// AuthAPI is the remote authentication collaborator.
type AuthAPI interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, int, error)
	Register(ctx context.Context, req model.RegisterRequest) (int, error)
	RegisterLibrarian(ctx context.Context, req model.RegisterRequest) (int, error)
}

// TokenStore is the persistent single-slot token storage; it survives
// process restarts and is cleared on logout or decode failure.
type TokenStore interface {
	ReadToken(ctx context.Context) (string, error)
	WriteToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Manager owns session state. All mutation goes through the reducer under
// a single mutex, so concurrent failure handlers (three requests all
// hitting 401) collapse into one effective logout.
type Manager struct {
	mu    sync.Mutex
	state State

	api      AuthAPI
	store    TokenStore
	validate *validator.Validate
	log      *zap.Logger
}

// NewManager restores the session from the persisted token, if any.
// A token that fails to decode is fatal: continuing with a malformed
// identity would make every role check unsound, so the slot is cleared
// and the manager starts in an explicit auth-error state.
func NewManager(ctx context.Context, api AuthAPI, store TokenStore, log *zap.Logger) *Manager {
	m := &Manager{
		api:      api,
		store:    store,
		validate: validator.New(),
		log:      log.Named("session"),
	}

	token, err := store.ReadToken(ctx)
	if err != nil {
		log.Warn("session restore: read token", zap.Error(err))
		return m
	}
	if token == "" {
		return m
	}
	identity, err := DecodeIdentity(token)
	if err != nil {
		m.dispatch(decodeFailed{msg: err.Error()})
		if err := store.ClearToken(ctx); err != nil {
			log.Warn("session restore: clear bad token", zap.Error(err))
		}
		return m
	}
	m.dispatch(authSucceeded{token: token, identity: identity})
	return m
}

func (m *Manager) dispatch(a action) {
	m.mu.Lock()
	m.state = reduce(m.state, a)
	m.mu.Unlock()
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token implements httpclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Token
}

// Identity returns the decoded identity of the logged-in user.
func (m *Manager) Identity() (model.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Identity == nil {
		return model.Identity{}, false
	}
	return *m.state.Identity, true
}

// HasRole reports whether the current identity's role is a member of the
// given role set. With no identity loaded it is false for every role.
func (m *Manager) HasRole(roles ...model.Role) bool {
	identity, ok := m.Identity()
	if !ok {
		return false
	}
	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// Login authenticates against the remote collaborator, decodes the
// identity from the returned token and persists the token. On any failure
// the state ends unauthenticated with a captured message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	req := model.LoginRequest{Email: email, Password: password}
	if err := m.validate.Struct(req); err != nil {
		return err
	}

	m.dispatch(authStarted{})

	resp, code, err := m.api.Login(ctx, req)
	if err != nil {
		m.dispatch(authFailed{msg: err.Error()})
		return err
	}
	if code != http.StatusOK {
		err := loginError(code)
		m.dispatch(authFailed{msg: err.Error()})
		return err
	}

	identity, err := DecodeIdentity(resp.AccessToken)
	if err != nil {
		m.dispatch(decodeFailed{msg: err.Error()})
		return err
	}

	m.dispatch(authSucceeded{token: resp.AccessToken, identity: identity})
	if err := m.store.WriteToken(ctx, resp.AccessToken); err != nil {
		m.log.Warn("persist token", zap.Error(err))
	}
	m.log.Info("logged in",
		zap.String("user", identity.Name),
		zap.String("role", string(identity.Role)))
	return nil
}

// Register creates a reader account. It never authenticates automatically;
// the caller sends the user back to the login entry point on success.
func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) error {
	return m.register(ctx, req, m.api.Register)
}

// RegisterLibrarian creates a librarian account via the privileged
// registration endpoint.
func (m *Manager) RegisterLibrarian(ctx context.Context, req model.RegisterRequest) error {
	return m.register(ctx, req, m.api.RegisterLibrarian)
}

func (m *Manager) register(ctx context.Context, req model.RegisterRequest, call func(context.Context, model.RegisterRequest) (int, error)) error {
	if err := m.validate.Struct(req); err != nil {
		return err
	}
	code, err := call(ctx, req)
	if err != nil {
		return err
	}
	switch code {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		return errors.Wrap(errs.ErrConflict, "account")
	default:
		return errors.Errorf("registration rejected: status %d", code)
	}
}

// Logout clears the session and the persisted token. It is idempotent:
// a second call, or a concurrent one from a 401 handler, is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	alreadyOut := !m.state.Authenticated && m.state.Token == ""
	m.state = reduce(m.state, loggedOut{})
	m.mu.Unlock()

	if alreadyOut {
		return
	}
	if err := m.store.ClearToken(ctx); err != nil {
		m.log.Warn("clear token", zap.Error(err))
	}
	m.log.Info("logged out")
}

// Invalidate is the handler wired into the HTTP transport: any remote
// call answered with 401 forces a logout so every surface reacts
// uniformly to server-side session invalidation.
func (m *Manager) Invalidate() {
	m.Logout(context.Background())
}

func loginError(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(errs.ErrUnauthorized, "invalid credentials")
	case http.StatusNotFound:
		return errors.Wrap(errs.ErrNotFound, "account")
	default:
		return errors.Errorf("login rejected: status %d", code)
	}
}
