package swap

import (
	"context"
	"fmt"
	"log"
	"time"
)

const DefaultAdapterTimeout = 10 * time.Second

// Aggregator fans a request out to eligible providers and picks the
// economically best settled quote.
type Aggregator struct {
	registry *Registry
	timeout  time.Duration // per-adapter budget
}

func NewAggregator(registry *Registry, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	return &Aggregator{registry: registry, timeout: timeout}
}

// BestQuote queries all eligible providers concurrently and returns the quote
// maximizing output (ExactIn) or minimizing required input (ExactOut). Ties
// break by registry declaration order. Individual provider failures are
// logged and excluded; they never abort the request.
func (a *Aggregator) BestQuote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fromChain := req.FromAsset.Chain()
	toChain := req.ToAsset.Chain()

	if !a.registry.Covered(fromChain, toChain) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNotSupportedPair, fromChain, toChain)
	}

	providers := a.registry.Eligible(fromChain, toChain, req.Options.PreferredProviders)
	if len(providers) == 0 {
		return nil, ErrNoAvailableProvider
	}

	// Indexed collection keeps selection content-deterministic: the winner
	// depends on registry order and amounts, never on completion order.
	quotes := make([]*Quote, len(providers))
	done := make(chan int, len(providers))

	for i, p := range providers {
		go func(i int, p Provider) {
			defer func() { done <- i }()

			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			quote, err := p.GetQuote(callCtx, req)
			if err != nil {
				log.Printf("swap: provider %s quote error: %v", p.Provider().ID, err)
				return
			}
			quotes[i] = quote
		}(i, p)
	}
	for range providers {
		<-done
	}

	var best *Quote
	for _, q := range quotes {
		if q == nil {
			continue
		}
		if best == nil || better(req.Mode, q, best) {
			best = q
		}
	}
	if best == nil {
		return nil, ErrNoQuoteAvailable
	}
	return best, nil
}

// better reports whether candidate strictly beats the incumbent, so earlier
// registry entries win ties.
func better(mode Mode, candidate, incumbent *Quote) bool {
	if mode == ExactOut {
		return candidate.FromValue.Cmp(incumbent.FromValue) < 0
	}
	return candidate.ToValue.Cmp(incumbent.ToValue) > 0
}
