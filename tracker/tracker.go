// Package tracker wraps the facade's status polling with terminal-state
// memoization: once a swap identifier reaches Completed, Failed or Refunded,
// later polls return that state without re-querying upstream. The cache is
// scoped to the Tracker instance; the host owns polling cadence and any
// durable storage.
package tracker

import (
	"context"
	"sync"

	"github.com/lumenwallet/swapper/swap"
)

// StatusSource is the facade operation the tracker polls through.
type StatusSource interface {
	SwapStatus(ctx context.Context, id swap.ProviderID, chain swap.Chain, identifier string) (swap.SwapStatus, error)
}

type Tracker struct {
	source StatusSource

	mu       sync.Mutex
	terminal map[string]swap.SwapStatus
}

func New(source StatusSource) *Tracker {
	return &Tracker{
		source:   source,
		terminal: make(map[string]swap.SwapStatus),
	}
}

// GetStatus returns the settlement state for a provider-specific identifier.
// Terminal states are absorbing: upstream is not consulted again once one
// has been observed for the identifier.
func (t *Tracker) GetStatus(ctx context.Context, id swap.ProviderID, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	key := string(id) + ":" + identifier

	t.mu.Lock()
	if status, ok := t.terminal[key]; ok {
		t.mu.Unlock()
		return status, nil
	}
	t.mu.Unlock()

	status, err := t.source.SwapStatus(ctx, id, chain, identifier)
	if err != nil {
		return swap.StatusPending, err
	}

	if status.Terminal() {
		t.mu.Lock()
		t.terminal[key] = status
		t.mu.Unlock()
	}
	return status, nil
}
