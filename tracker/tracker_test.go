package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/lumenwallet/swapper/swap"
)

// scriptedSource returns a fixed sequence of statuses per identifier and
// counts upstream queries.
type scriptedSource struct {
	sequence []swap.SwapStatus
	err      error
	calls    int
}

func (s *scriptedSource) SwapStatus(ctx context.Context, id swap.ProviderID, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	if s.err != nil {
		return swap.StatusPending, s.err
	}
	idx := s.calls
	if idx >= len(s.sequence) {
		idx = len(s.sequence) - 1
	}
	s.calls++
	return s.sequence[idx], nil
}

func TestGetStatusTerminalIsAbsorbing(t *testing.T) {
	source := &scriptedSource{sequence: []swap.SwapStatus{
		swap.StatusPending,
		swap.StatusCompleted,
		swap.StatusPending, // upstream regression must not surface
	}}
	tr := New(source)
	ctx := context.Background()

	status, err := tr.GetStatus(ctx, "thorchain", swap.Ethereum, "0xabc")
	if err != nil || status != swap.StatusPending {
		t.Fatalf("first poll = %v, %v", status, err)
	}
	status, err = tr.GetStatus(ctx, "thorchain", swap.Ethereum, "0xabc")
	if err != nil || status != swap.StatusCompleted {
		t.Fatalf("second poll = %v, %v", status, err)
	}

	// later polls come from the cache, upstream is not consulted
	for i := 0; i < 3; i++ {
		status, err = tr.GetStatus(ctx, "thorchain", swap.Ethereum, "0xabc")
		if err != nil || status != swap.StatusCompleted {
			t.Fatalf("cached poll %d = %v, %v", i, status, err)
		}
	}
	if source.calls != 2 {
		t.Errorf("upstream queried %d times, want 2", source.calls)
	}
}

func TestGetStatusDistinctIdentifiers(t *testing.T) {
	source := &scriptedSource{sequence: []swap.SwapStatus{swap.StatusRefunded}}
	tr := New(source)
	ctx := context.Background()

	if status, _ := tr.GetStatus(ctx, "chainflip", swap.Bitcoin, "chan-1"); status != swap.StatusRefunded {
		t.Fatalf("chan-1 = %v", status)
	}
	// a different identifier misses the cache
	if _, err := tr.GetStatus(ctx, "chainflip", swap.Bitcoin, "chan-2"); err != nil {
		t.Fatal(err)
	}
	if source.calls != 2 {
		t.Errorf("upstream queried %d times, want 2", source.calls)
	}
}

func TestGetStatusErrorStaysPending(t *testing.T) {
	wantErr := errors.New("upstream down")
	tr := New(&scriptedSource{err: wantErr})

	status, err := tr.GetStatus(context.Background(), "across", swap.Ethereum, "0xdef")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if status != swap.StatusPending {
		t.Errorf("status = %v, want Pending", status)
	}
}

func TestGetStatusFailedAndRefundedAreTerminal(t *testing.T) {
	for _, terminal := range []swap.SwapStatus{swap.StatusFailed, swap.StatusRefunded} {
		source := &scriptedSource{sequence: []swap.SwapStatus{terminal, swap.StatusPending}}
		tr := New(source)
		ctx := context.Background()

		if status, _ := tr.GetStatus(ctx, "near_intents", swap.Near, "dep"); status != terminal {
			t.Fatalf("first poll = %v, want %v", status, terminal)
		}
		if status, _ := tr.GetStatus(ctx, "near_intents", swap.Near, "dep"); status != terminal {
			t.Errorf("second poll = %v, want %v (absorbing)", status, terminal)
		}
		if source.calls != 1 {
			t.Errorf("upstream queried %d times, want 1", source.calls)
		}
	}
}
