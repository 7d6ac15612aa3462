package swap

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestBestQuoteSelectsHighestOutput(t *testing.T) {
	registry := NewRegistry(
		onChainMock("low", []Chain{Ethereum}, 900),
		onChainMock("high", []Chain{Ethereum}, 1100),
		onChainMock("mid", []Chain{Ethereum}, 1000),
	)
	agg := NewAggregator(registry, time.Second)

	req := testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	quote, err := agg.BestQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("BestQuote: %v", err)
	}
	if quote.Provider.ID != "high" {
		t.Errorf("winner = %s, want high", quote.Provider.ID)
	}
	if quote.ToValue.Int64() != 1100 {
		t.Errorf("ToValue = %s, want 1100", quote.ToValue)
	}
}

// Equal outputs must resolve to the earliest registry entry, regardless of
// which provider answers first.
func TestBestQuoteTieBreaksByRegistryOrder(t *testing.T) {
	slow := onChainMock("first", []Chain{Ethereum}, 1000)
	slow.delay = 50 * time.Millisecond
	fast := onChainMock("second", []Chain{Ethereum}, 1000)

	registry := NewRegistry(slow, fast)
	agg := NewAggregator(registry, time.Second)

	req := testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	for i := 0; i < 5; i++ {
		quote, err := agg.BestQuote(context.Background(), req)
		if err != nil {
			t.Fatalf("BestQuote: %v", err)
		}
		if quote.Provider.ID != "first" {
			t.Fatalf("run %d: winner = %s, want first", i, quote.Provider.ID)
		}
	}
}

func TestBestQuoteExactOutMinimizesInput(t *testing.T) {
	cheap := onChainMock("cheap", []Chain{Ethereum}, 1000)
	cheap.fromValue = big.NewInt(500)
	expensive := onChainMock("expensive", []Chain{Ethereum}, 1000)
	expensive.fromValue = big.NewInt(600)

	registry := NewRegistry(expensive, cheap)
	agg := NewAggregator(registry, time.Second)

	req := testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	req.Mode = ExactOut
	quote, err := agg.BestQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("BestQuote: %v", err)
	}
	if quote.Provider.ID != "cheap" {
		t.Errorf("winner = %s, want cheap", quote.Provider.ID)
	}
}

func TestBestQuoteSkipsFailingProviders(t *testing.T) {
	broken := onChainMock("broken", []Chain{Ethereum}, 2000)
	broken.quoteErr = errors.New("upstream down")
	working := onChainMock("working", []Chain{Ethereum}, 900)

	registry := NewRegistry(broken, working)
	agg := NewAggregator(registry, time.Second)

	req := testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	quote, err := agg.BestQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("BestQuote: %v", err)
	}
	if quote.Provider.ID != "working" {
		t.Errorf("winner = %s, want working", quote.Provider.ID)
	}
}

func TestBestQuoteErrorTaxonomy(t *testing.T) {
	failing := onChainMock("failing", []Chain{Ethereum}, 1000)
	failing.quoteErr = errors.New("upstream down")
	registry := NewRegistry(failing)
	agg := NewAggregator(registry, time.Second)

	// uncovered chain pair fails fast
	req := testRequest(t, "ton.TON", "ethereum.ETH")
	if _, err := agg.BestQuote(context.Background(), req); !errors.Is(err, ErrNotSupportedPair) {
		t.Errorf("uncovered pair: %v, want ErrNotSupportedPair", err)
	}

	// covered pair, but preferences exclude everything
	req = testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	req.Options.PreferredProviders = []ProviderID{"someone_else"}
	if _, err := agg.BestQuote(context.Background(), req); !errors.Is(err, ErrNoAvailableProvider) {
		t.Errorf("filtered out: %v, want ErrNoAvailableProvider", err)
	}

	// eligible providers exist but all fail
	req.Options.PreferredProviders = nil
	if _, err := agg.BestQuote(context.Background(), req); !errors.Is(err, ErrNoQuoteAvailable) {
		t.Errorf("all failed: %v, want ErrNoQuoteAvailable", err)
	}

	// identical assets rejected before anything runs
	req = testRequest(t, "ethereum.ETH", "ethereum.ETH")
	if _, err := agg.BestQuote(context.Background(), req); !errors.Is(err, ErrNotSupportedPair) {
		t.Errorf("same asset: %v, want ErrNotSupportedPair", err)
	}

	// malformed amounts
	req = testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	req.FromValue = "not-a-number"
	if _, err := agg.BestQuote(context.Background(), req); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("bad amount: %v, want ErrInvalidAmount", err)
	}
	req.FromValue = "0"
	if _, err := agg.BestQuote(context.Background(), req); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: %v, want ErrInvalidAmount", err)
	}
}

func TestBestQuoteTimeoutBoundsSlowProvider(t *testing.T) {
	slow := onChainMock("slow", []Chain{Ethereum}, 2000)
	slow.delay = 500 * time.Millisecond
	fast := onChainMock("fast", []Chain{Ethereum}, 1000)

	registry := NewRegistry(slow, fast)
	agg := NewAggregator(registry, 50*time.Millisecond)

	req := testRequest(t, "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	start := time.Now()
	quote, err := agg.BestQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("BestQuote: %v", err)
	}
	if quote.Provider.ID != "fast" {
		t.Errorf("winner = %s, want fast", quote.Provider.ID)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("request took %v, timeout not enforced", elapsed)
	}
}
