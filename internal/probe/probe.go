// Package probe checks whether the upstream model service is reachable.
// The result is advisory only: a failed probe never blocks chat traffic,
// it just lets clients warn the user up front.
package probe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MADANW/MuhsinAI/internal/domain"
)

// State is the probe lifecycle state.
type State string

const (
	// StateChecking means a probe is in flight and no verdict exists yet.
	StateChecking State = "checking"
	// StateConnected means the last probe reached the model service.
	StateConnected State = "connected"
	// StateErrored means the last probe failed.
	StateErrored State = "errored"
)

// Status is a snapshot of the prober.
type Status struct {
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Prober runs connectivity checks against the model service. Concurrent
// Check calls are coalesced: only the first runs, the rest wait for its
// verdict.
type Prober struct {
	client domain.ModelClient
	logger *slog.Logger

	mu       sync.Mutex
	inflight chan struct{}
	status   Status
}

// New creates a prober. It starts in StateChecking with no verdict.
func New(client domain.ModelClient, logger *slog.Logger) *Prober {
	return &Prober{
		client: client,
		logger: logger.With("component", "probe"),
		status: Status{State: StateChecking},
	}
}

// Status returns the current snapshot without touching the network.
func (p *Prober) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Check pings the model service and returns the resulting status. If a
// probe is already running, Check waits for it instead of starting another.
func (p *Prober) Check(ctx context.Context) Status {
	p.mu.Lock()
	if ch := p.inflight; ch != nil {
		p.mu.Unlock()
		select {
		case <-ch:
			return p.Status()
		case <-ctx.Done():
			return Status{State: StateErrored, Error: ctx.Err().Error(), CheckedAt: time.Now()}
		}
	}
	ch := make(chan struct{})
	p.inflight = ch
	p.status.State = StateChecking
	p.mu.Unlock()

	err := p.client.Ping(ctx)

	status := Status{State: StateConnected, CheckedAt: time.Now()}
	if err != nil {
		status = Status{State: StateErrored, Error: err.Error(), CheckedAt: time.Now()}
		p.logger.Warn("model probe failed", "error", err)
	} else {
		p.logger.Debug("model probe succeeded")
	}

	p.mu.Lock()
	p.status = status
	p.inflight = nil
	p.mu.Unlock()
	close(ch)

	return status
}
