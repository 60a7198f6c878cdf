package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MADANW/MuhsinAI/internal/cli/client"
	"github.com/MADANW/MuhsinAI/internal/cli/config"
	"github.com/MADANW/MuhsinAI/internal/cli/types"
)

// memoryStore keeps the config in memory instead of ~/.muhsinctl.
type memoryStore struct {
	cfg     config.Config
	loadErr error
	saves   int
}

func (s *memoryStore) load() (*config.Config, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	cfg := s.cfg
	return &cfg, nil
}

func (s *memoryStore) save(c *config.Config) error {
	s.cfg = *c
	s.saves++
	return nil
}

func newTestManager(store *memoryStore) *Manager {
	return newManagerWithStore(store.load, store.save)
}

type stubVerifier struct {
	user *types.User
	err  error
}

func (v *stubVerifier) Me(ctx context.Context) (*types.User, error) {
	return v.user, v.err
}

func TestLoadWithStoredToken(t *testing.T) {
	store := &memoryStore{cfg: config.Config{
		Server:      "http://api.test:8080",
		AccessToken: "stored-token",
		Email:       "a@example.com",
		UserID:      "uid-1",
	}}
	m := newTestManager(store)

	if m.State() != StateUninitialized {
		t.Fatalf("initial state = %v", m.State())
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.State() != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", m.State())
	}
	if m.Verified() {
		t.Error("freshly loaded token should be optimistic, not verified")
	}
	if m.OwnerID() != "uid-1" || m.Token() != "stored-token" {
		t.Errorf("OwnerID/Token = %q/%q", m.OwnerID(), m.Token())
	}
}

func TestLoadWithoutToken(t *testing.T) {
	m := newTestManager(&memoryStore{cfg: config.Config{Server: "http://api.test"}})
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.State() != StateAnonymous {
		t.Errorf("state = %v, want anonymous", m.State())
	}
	if m.OwnerID() != "" || m.Token() != "" {
		t.Error("anonymous session leaked credentials")
	}
	if err := m.RequireAuth(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("RequireAuth = %v", err)
	}
}

func TestLoadFailureIsAnonymous(t *testing.T) {
	m := newTestManager(&memoryStore{loadErr: fmt.Errorf("corrupt file")})
	if err := m.Load(); err == nil {
		t.Fatal("expected load error")
	}
	if m.State() != StateAnonymous {
		t.Errorf("unreadable config should fail closed to anonymous, got %v", m.State())
	}
}

func TestVerifyConfirmsOptimisticSession(t *testing.T) {
	store := &memoryStore{cfg: config.Config{
		Server: "http://api.test", AccessToken: "tok", UserID: "uid-1", Email: "a@example.com",
	}}
	m := newTestManager(store)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	v := &stubVerifier{user: &types.User{ID: "uid-1", Email: "a@example.com"}}
	if err := m.Verify(context.Background(), v); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !m.Verified() {
		t.Error("session not marked verified")
	}
	if m.User() == nil || m.User().ID != "uid-1" {
		t.Errorf("User = %+v", m.User())
	}
}

func TestVerifyUnauthorizedForcesLogout(t *testing.T) {
	store := &memoryStore{cfg: config.Config{
		Server: "http://api.test", AccessToken: "stale", UserID: "uid-1",
	}}
	m := newTestManager(store)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	v := &stubVerifier{err: client.ErrUnauthorized}
	err := m.Verify(context.Background(), v)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Verify error = %v, want not-authenticated", err)
	}
	if m.State() != StateAnonymous {
		t.Errorf("state = %v, want anonymous after forced logout", m.State())
	}
	if store.cfg.AccessToken != "" || store.cfg.UserID != "" {
		t.Error("stale credentials not cleared from store")
	}
	if store.cfg.Server != "http://api.test" {
		t.Error("server setting should survive logout")
	}
}

func TestVerifyTransportErrorFailsClosed(t *testing.T) {
	store := &memoryStore{cfg: config.Config{AccessToken: "tok", UserID: "uid-1"}}
	m := newTestManager(store)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	v := &stubVerifier{err: fmt.Errorf("connection refused")}
	if err := m.Verify(context.Background(), v); err == nil {
		t.Fatal("expected transport error")
	}
	// An unreachable server and an invalid credential end the same way.
	if m.State() != StateAnonymous {
		t.Errorf("state = %v, want anonymous after failed verification", m.State())
	}
	if store.cfg.AccessToken != "" {
		t.Error("failed verification should clear the stored token")
	}
}

func TestHandleUnauthorizedForcesLogout(t *testing.T) {
	store := &memoryStore{cfg: config.Config{
		Server: "http://api.test", AccessToken: "stale", UserID: "uid-1",
	}}
	m := newTestManager(store)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	// Errors other than unauthorized leave the session alone.
	if m.HandleUnauthorized(fmt.Errorf("connection refused")) {
		t.Error("transport error should not count as unauthorized")
	}
	if m.HandleUnauthorized(nil) {
		t.Error("nil error should not count as unauthorized")
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated to survive non-auth errors", m.State())
	}

	// A wrapped unauthorized reply from any request drops the session.
	err := fmt.Errorf("fetch history: %w", client.ErrUnauthorized)
	if !m.HandleUnauthorized(err) {
		t.Fatal("unauthorized reply not recognized")
	}
	if m.State() != StateAnonymous {
		t.Errorf("state = %v, want anonymous after unauthorized reply", m.State())
	}
	if store.cfg.AccessToken != "" || store.cfg.UserID != "" {
		t.Error("stale credentials not cleared from store")
	}
	if store.cfg.Server != "http://api.test" {
		t.Error("server setting should survive forced logout")
	}
}

func TestSubscribersSeeStateChanges(t *testing.T) {
	store := &memoryStore{cfg: config.Config{AccessToken: "tok", UserID: "uid-1"}}
	m := newTestManager(store)

	var seen []State
	m.Subscribe(func(s State) { seen = append(seen, s) })

	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if err := m.Logout(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	want := []State{StateLoading, StateAuthenticated, StateAnonymous}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", seen, want)
		}
	}
}

func TestLoginAndLogout(t *testing.T) {
	store := &memoryStore{}
	m := newTestManager(store)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	data := &types.LoginData{
		Token: "fresh-token",
		User:  &types.User{ID: "uid-9", Email: "b@example.com"},
	}
	if err := m.Login("http://api.test:9090", data); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if m.State() != StateAuthenticated || !m.Verified() {
		t.Errorf("state/verified = %v/%v", m.State(), m.Verified())
	}
	if store.cfg.AccessToken != "fresh-token" || store.cfg.UserID != "uid-9" {
		t.Errorf("credentials not persisted: %+v", store.cfg)
	}

	if err := m.Logout(context.Background(), nil); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if m.State() != StateAnonymous || m.OwnerID() != "" {
		t.Error("logout did not clear the session")
	}
	if store.cfg.AccessToken != "" {
		t.Error("logout did not clear the stored token")
	}
}

func TestOwnerIDChangesAcrossSessions(t *testing.T) {
	store := &memoryStore{}
	m := newTestManager(store)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	if err := m.Login("http://api.test", &types.LoginData{
		Token: "t1", User: &types.User{ID: "uid-a", Email: "a@example.com"},
	}); err != nil {
		t.Fatal(err)
	}
	first := m.OwnerID()

	if err := m.Logout(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.Login("http://api.test", &types.LoginData{
		Token: "t2", User: &types.User{ID: "uid-b", Email: "b@example.com"},
	}); err != nil {
		t.Fatal(err)
	}

	if first == m.OwnerID() {
		t.Error("owner ID should change when a different user logs in")
	}
}
