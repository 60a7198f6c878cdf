package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newStatusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "expired token",
			status: http.StatusUnauthorized,
			body:   `{"code":"UNAUTHORIZED","message":"token is expired"}`,
			want:   ErrUnauthorized,
		},
		{
			name:   "someone else's exchange",
			status: http.StatusForbidden,
			body:   `{"code":"FORBIDDEN","message":"exchange belongs to another user"}`,
			want:   ErrForbidden,
		},
		{
			name:   "missing exchange",
			status: http.StatusNotFound,
			body:   `{"code":"NOT_FOUND","message":"Exchange 'x' not found"}`,
			want:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newStatusServer(t, tt.status, tt.body)
			c, err := NewAPIClient(srv.URL, "tok")
			if err != nil {
				t.Fatalf("NewAPIClient failed: %v", err)
			}
			err = c.DeleteExchange(context.Background(), "x")
			if !errors.Is(err, tt.want) {
				t.Errorf("DeleteExchange error = %v, want %v", err, tt.want)
			}
		})
	}
}

// A token dying mid-session surfaces as ErrUnauthorized on every endpoint,
// not just the whoami path, so callers can force a logout.
func TestHistoryRejectedTokenIsUnauthorized(t *testing.T) {
	srv := newStatusServer(t, http.StatusUnauthorized, `{"code":"UNAUTHORIZED","message":"token is expired"}`)
	c, err := NewAPIClient(srv.URL, "stale")
	if err != nil {
		t.Fatalf("NewAPIClient failed: %v", err)
	}

	if _, err := c.History(context.Background(), 1, 20); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("History error = %v, want ErrUnauthorized", err)
	}
	if _, err := c.Stats(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Stats error = %v, want ErrUnauthorized", err)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := newStatusServer(t, http.StatusInternalServerError, `{"code":"INTERNAL_ERROR","message":"an internal error occurred"}`)
	c, err := NewAPIClient(srv.URL, "tok")
	if err != nil {
		t.Fatalf("NewAPIClient failed: %v", err)
	}

	err = c.DeleteExchange(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
		t.Errorf("500 should not map to a sentinel, got %v", err)
	}
}
