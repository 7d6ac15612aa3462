package swap

import (
	"context"
	"fmt"
	"math/big"
	"time"
)

// Referral bps charged when both legs are USD-pegged: full-rate fees on
// stable-to-stable conversions eat the spread.
const StableSwapReferralBps = 10

// ApprovalChecker is the approval engine boundary; approval.Engine
// implements it.
type ApprovalChecker interface {
	CheckApproval(ctx context.Context, owner, token, spender string, value *big.Int, chain Chain) (ApprovalType, error)
}

// Swapper is the single entry point combining registry, aggregator and
// approval engine. It is safe for concurrent use.
type Swapper struct {
	registry         *Registry
	aggregator       *Aggregator
	approvals        ApprovalChecker
	slippageDefaults map[Chain]uint32
}

type Option func(*Swapper)

// WithApprovalChecker wires the allowance/permit engine into the facade.
func WithApprovalChecker(c ApprovalChecker) Option {
	return func(s *Swapper) { s.approvals = c }
}

// WithSlippageDefaults overrides the built-in per-chain auto slippage.
// Chains absent from the map keep the built-in default.
func WithSlippageDefaults(defaults map[Chain]uint32) Option {
	return func(s *Swapper) { s.slippageDefaults = defaults }
}

func NewSwapper(registry *Registry, adapterTimeout time.Duration, opts ...Option) *Swapper {
	s := &Swapper{
		registry:   registry,
		aggregator: NewAggregator(registry, adapterTimeout),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the registered provider descriptors in declaration order.
func (s *Swapper) Providers() []ProviderType {
	var out []ProviderType
	for _, p := range s.registry.All() {
		out = append(out, p.Provider())
	}
	return out
}

// SupportedChains returns the union of all providers' chain coverage.
func (s *Swapper) SupportedChains() []Chain {
	seen := make(map[Chain]bool)
	var out []Chain
	for _, p := range s.registry.All() {
		for _, c := range p.SupportedChains() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Quote returns the best available quote for the request.
func (s *Swapper) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	req, err := s.transformRequest(req)
	if err != nil {
		return nil, err
	}
	return s.aggregator.BestQuote(ctx, req)
}

// QuoteData builds the signable payload for a quote. Quotes go stale as
// on-chain prices move, so call this promptly after Quote.
func (s *Swapper) QuoteData(ctx context.Context, quote *Quote) (*QuoteData, error) {
	provider := s.registry.ByID(quote.Provider.ID)
	if provider == nil {
		return nil, ErrNoAvailableProvider
	}
	data, err := provider.GetQuoteData(ctx, quote)
	if err != nil {
		return nil, err
	}
	data.GasLimit = adjustGasLimit(quote.Request.FromAsset.Chain(), data.GasLimit)
	return data, nil
}

// CheckApproval determines the authorization needed before the swap can
// move the owner's tokens. The result is never cached: allowances change
// under concurrent transactions.
func (s *Swapper) CheckApproval(ctx context.Context, owner, token, spender string, value *big.Int, chain Chain) (ApprovalType, error) {
	if s.approvals == nil {
		return ApprovalType{}, fmt.Errorf("%w: approval checker not configured", ErrNotImplemented)
	}
	return s.approvals.CheckApproval(ctx, owner, token, spender, value, chain)
}

// SwapStatus polls a cross-chain provider's settlement state for an
// identifier. Providers without asynchronous settlement return
// ErrNotImplemented.
func (s *Swapper) SwapStatus(ctx context.Context, id ProviderID, chain Chain, identifier string) (SwapStatus, error) {
	provider := s.registry.ByID(id)
	if provider == nil {
		return StatusPending, ErrNoAvailableProvider
	}
	tracker, ok := provider.(StatusTracker)
	if !ok {
		return StatusPending, fmt.Errorf("%w: provider %s has no settlement tracking", ErrNotImplemented, id)
	}
	return tracker.GetSwapStatus(ctx, chain, identifier)
}

// transformRequest applies facade-level request rewrites: the stable-pair
// referral discount, configured auto-slippage overrides, and the native gas
// reserve for max-amount swaps. The caller's request is never mutated.
func (s *Swapper) transformRequest(req *QuoteRequest) (*QuoteRequest, error) {
	updated := *req

	if req.Options.Fee != nil && req.IsStablePair() {
		fees := req.Options.Fee.WithBps(StableSwapReferralBps)
		updated.Options.Fee = &fees
	}

	// resolve auto slippage against the operator's table before fan-out so
	// every adapter sees the same concrete tolerance
	if req.Options.Slippage.Mode == SlippageAuto {
		if bps, ok := s.slippageDefaults[req.FromAsset.Chain()]; ok {
			updated.Options.Slippage = Slippage{Bps: bps, Mode: SlippageExact}
		}
	}

	// spending the full native balance would leave nothing for the swap
	// transaction's own fee; hold back a per-chain reserve
	if req.Options.UseMaxAmount && req.Mode == ExactIn && req.FromAsset.ID.IsNative() {
		value, ok := new(big.Int).SetString(req.FromValue, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, req.FromValue)
		}
		spendable := new(big.Int).Sub(value, req.FromAsset.Chain().NativeFeeReserve())
		if spendable.Sign() <= 0 {
			return nil, fmt.Errorf("%w: balance does not cover the network fee reserve", ErrInputAmountTooSmall)
		}
		updated.FromValue = spendable.String()
	}

	return &updated, nil
}

// adjustGasLimit doubles estimates on zkstack chains, where standard
// estimation undershoots actual usage.
func adjustGasLimit(chain Chain, gasLimit uint64) uint64 {
	if gasLimit == 0 || !chain.IsZkStack() {
		return gasLimit
	}
	return gasLimit * 2
}
