// Package session tracks who the CLI is acting as. The manager is a small
// state machine: it starts uninitialized, loads stored credentials
// optimistically, and verifies them against the server in the background.
// Any verification failure forces a logout; protected operations are
// refused unless the state is Authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/config"
	"github.com/MADANW/MuhsinAI/internal/cli/types"
)

// State is the session lifecycle state.
type State int

const (
	// StateUninitialized means Load has not run yet.
	StateUninitialized State = iota
	// StateLoading means stored credentials are being read.
	StateLoading
	// StateAuthenticated means a token is held. Until Verify confirms it,
	// the authentication is optimistic.
	StateAuthenticated
	// StateAnonymous means no usable credentials exist.
	StateAnonymous
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// ErrNotAuthenticated is returned when a protected operation is attempted
// without a session.
var ErrNotAuthenticated = errors.New("not authenticated, please login first")

// Verifier checks a token against the server. *client.APIClient satisfies it.
type Verifier interface {
	Me(ctx context.Context) (*types.User, error)
}

// Manager owns the session state. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	state    State
	cfg      *config.Config
	user     *types.User
	verified bool
	subs     []func(State)

	loadConfig func() (*config.Config, error)
	saveConfig func(*config.Config) error
}

// NewManager creates a manager reading and writing ~/.muhsinctl/config.json.
func NewManager() *Manager {
	return &Manager{
		state:      StateUninitialized,
		loadConfig: config.Load,
		saveConfig: func(c *config.Config) error { return c.Save() },
	}
}

// newManagerWithStore is the test seam.
func newManagerWithStore(load func() (*config.Config, error), save func(*config.Config) error) *Manager {
	return &Manager{
		state:      StateUninitialized,
		loadConfig: load,
		saveConfig: save,
	}
}

// Subscribe registers fn to run on every state change, in transition order.
// Callbacks run synchronously and must not call back into the manager.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// setState transitions and notifies subscribers. Caller holds mu.
func (m *Manager) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	for _, fn := range m.subs {
		fn(s)
	}
}

// Load reads stored credentials. A stored token moves the session to
// Authenticated without contacting the server; Verify settles it later.
func (m *Manager) Load() error {
	m.mu.Lock()
	m.setState(StateLoading)
	m.mu.Unlock()

	cfg, err := m.loadConfig()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		// An unreadable config never yields a half-authenticated session.
		m.setState(StateAnonymous)
		m.cfg = &config.Config{Server: "http://localhost:8080"}
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	m.cfg = cfg
	if cfg.IsAuthenticated() {
		m.verified = false
		m.setState(StateAuthenticated)
	} else {
		m.setState(StateAnonymous)
	}
	return nil
}

// Verify settles an optimistic authentication against the server. Any
// failure, an unauthorized reply or an unreachable server alike, fails
// closed: the stored token is cleared and the session drops to Anonymous.
// No distinction is made between "invalid credential" and "service
// unreachable"; callers must accept that simplification.
func (m *Manager) Verify(ctx context.Context, v Verifier) error {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("cannot verify session in state %s", state)
	}
	m.mu.Unlock()

	user, err := v.Me(ctx)
	if err != nil {
		m.forceLogout()
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("session expired: %w", ErrNotAuthenticated)
		}
		return fmt.Errorf("failed to verify session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	m.verified = true
	// Keep the stored identity in sync with the server's view.
	if m.cfg.UserID != user.ID || m.cfg.Email != user.Email {
		m.cfg.UserID = user.ID
		m.cfg.Email = user.Email
		if err := m.saveConfig(m.cfg); err != nil {
			return fmt.Errorf("failed to persist identity: %w", err)
		}
	}
	return nil
}

// Login stores fresh credentials and moves the session to Authenticated.
func (m *Manager) Login(server string, data *types.LoginData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.Server = server
	cfg.AccessToken = data.Token
	if data.User != nil {
		cfg.Email = data.User.Email
		cfg.UserID = data.User.ID
	}

	if err := m.saveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	m.cfg = cfg
	m.user = data.User
	m.verified = true
	m.setState(StateAuthenticated)
	return nil
}

// Logout clears stored credentials. The server call is best effort; the
// local clear is what matters.
func (m *Manager) Logout(ctx context.Context, c *client.APIClient) error {
	if c != nil {
		// Ignore the result: a dead server must not block logout.
		_ = c.Logout(ctx)
	}
	m.forceLogout()
	return nil
}

// HandleUnauthorized inspects an error from any server call. An unauthorized
// reply means the token died mid-session: credentials are dropped, the state
// falls to Anonymous and true is returned so the caller can stop treating
// the user as signed in. Every other error returns false and leaves the
// session alone.
func (m *Manager) HandleUnauthorized(err error) bool {
	if !errors.Is(err, client.ErrUnauthorized) {
		return false
	}
	m.forceLogout()
	return true
}

// forceLogout drops credentials and moves to Anonymous.
func (m *Manager) forceLogout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg != nil {
		m.cfg.ClearCredentials()
		// Best effort: a failed write still logs out this process.
		_ = m.saveConfig(m.cfg)
	}
	m.user = nil
	m.verified = false
	m.setState(StateAnonymous)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Verified reports whether the server has confirmed the current token.
func (m *Manager) Verified() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verified
}

// OwnerID returns the user ID the session acts as, or "" when anonymous.
// Callers tag in-flight work with this and discard results whose owner no
// longer matches.
func (m *Manager) OwnerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.cfg == nil {
		return ""
	}
	return m.cfg.UserID
}

// Token returns the access token, or "" when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.cfg == nil {
		return ""
	}
	return m.cfg.AccessToken
}

// Server returns the configured API server address.
func (m *Manager) Server() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return "http://localhost:8080"
	}
	return m.cfg.Server
}

// User returns the profile confirmed by Verify, or nil.
func (m *Manager) User() *types.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// RequireAuth returns ErrNotAuthenticated unless a session is held.
func (m *Manager) RequireAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}
