package swap

import (
	"fmt"
	"math/big"
	"strings"
)

// Mode selects which side of the swap is fixed.
type Mode int

const (
	ExactIn Mode = iota
	ExactOut
)

// SlippageMode selects how the tolerance in a request is resolved.
type SlippageMode int

const (
	SlippageAuto  SlippageMode = iota // per-chain default
	SlippageExact                     // caller-supplied bps, unmodified
)

type Slippage struct {
	Bps  uint32
	Mode SlippageMode
}

// ReferralFee is an operator fee destination for one chain family. It comes
// from configuration, never from the caller.
type ReferralFee struct {
	Address string
	Bps     uint32
}

// ReferralFees carries the operator fee table by chain family.
type ReferralFees struct {
	EVM       ReferralFee
	EVMBridge ReferralFee
	Solana    ReferralFee
	Thorchain ReferralFee
	Sui       ReferralFee
	Ton       ReferralFee
	Near      ReferralFee
}

// WithBps returns a copy of the table with every entry's bps replaced.
func (f ReferralFees) WithBps(bps uint32) ReferralFees {
	f.EVM.Bps = bps
	f.EVMBridge.Bps = bps
	f.Solana.Bps = bps
	f.Thorchain.Bps = bps
	f.Sui.Bps = bps
	f.Ton.Bps = bps
	f.Near.Bps = bps
	return f
}

type Options struct {
	Slippage           Slippage
	Fee                *ReferralFees
	PreferredProviders []ProviderID
	UseMaxAmount       bool
}

// QuoteRequest describes a desired conversion. FromValue is a base-unit
// integer in decimal string form; for ExactOut it is the desired output.
type QuoteRequest struct {
	WalletAddress      string
	DestinationAddress string
	FromAsset          QuoteAsset
	ToAsset            QuoteAsset
	FromValue          string
	Mode               Mode
	Options            Options
}

// Validate checks the request invariants that can be verified without I/O.
func (r *QuoteRequest) Validate() error {
	if r.FromAsset.ID == r.ToAsset.ID {
		return fmt.Errorf("%w: from and to assets are identical", ErrNotSupportedPair)
	}
	value, ok := new(big.Int).SetString(r.FromValue, 10)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, r.FromValue)
	}
	if value.Sign() <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalidAmount)
	}
	if r.WalletAddress == "" || r.DestinationAddress == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	return nil
}

// Value returns the request amount as an integer. Call Validate first.
func (r *QuoteRequest) Value() *big.Int {
	value, _ := new(big.Int).SetString(r.FromValue, 10)
	return value
}

// SlippageBps resolves the request tolerance against the from-chain default.
func (r *QuoteRequest) SlippageBps() uint32 {
	if r.Options.Slippage.Mode == SlippageExact {
		return r.Options.Slippage.Bps
	}
	return r.FromAsset.Chain().DefaultSlippageBps()
}

// IsStablePair reports whether both legs look like USD-pegged assets.
func (r *QuoteRequest) IsStablePair() bool {
	return strings.Contains(strings.ToUpper(r.FromAsset.Symbol), "USD") &&
		strings.Contains(strings.ToUpper(r.ToAsset.Symbol), "USD")
}

// ProviderID identifies a liquidity provider.
type ProviderID string

const (
	ProviderUniswapV3    ProviderID = "uniswap_v3"
	ProviderPancakeswap  ProviderID = "pancakeswap_v3"
	ProviderOku          ProviderID = "oku"
	ProviderWagmi        ProviderID = "wagmi"
	ProviderCowSwap      ProviderID = "cowswap"
	ProviderJupiter      ProviderID = "jupiter"
	ProviderThorchain    ProviderID = "thorchain"
	ProviderAcross       ProviderID = "across"
	ProviderChainflip    ProviderID = "chainflip"
	ProviderNearIntents  ProviderID = "near_intents"
)

// ProviderMode describes a provider's routing capability.
type ProviderMode int

const (
	ModeOnChain    ProviderMode = iota // same-chain only
	ModeCrossChain                     // different chains only
	ModeBridge                         // different chains only
	ModeOmniChain                      // same-chain on OmniChains, plus cross-chain
)

// ProviderType is a provider's immutable descriptor.
type ProviderType struct {
	ID       ProviderID
	Name     string
	Protocol string
	Mode     ProviderMode
	// OmniChains lists the chains where an OmniChain provider also serves
	// same-chain swaps. Ignored for other modes.
	OmniChains []Chain
}

// Quote is a provider's non-binding offer for a request.
type Quote struct {
	Request  QuoteRequest
	Provider ProviderType

	// FromValue is the required input; for ExactIn it equals the request
	// value, for ExactOut it is provider-determined.
	FromValue *big.Int
	// ToValue is the expected output after referral fees.
	ToValue *big.Int
	// ToMinValue is ToValue with the resolved slippage tolerance applied.
	ToMinValue *big.Int

	SlippageBps uint32
	EtaSeconds  uint32

	// RouteData is opaque, provider-owned state carrying whatever the same
	// provider needs to build the transaction later. Usually JSON.
	RouteData string
}

// ApprovalData describes a standalone ERC20 approval transaction.
type ApprovalData struct {
	Token   string
	Spender string
	Value   *big.Int
}

// Permit2Data describes a gasless typed-data authorization the caller must
// sign off-chain.
type Permit2Data struct {
	Token           string
	Spender         string
	Value           *big.Int
	Permit2Contract string
	Nonce           uint64
	SigDeadline     int64 // unix seconds
}

// ApprovalType is the outcome of an approval check: at most one of the fields
// is set; both nil means the current allowance already covers the amount.
type ApprovalType struct {
	Approve *ApprovalData
	Permit2 *Permit2Data
}

func (a ApprovalType) IsNone() bool {
	return a.Approve == nil && a.Permit2 == nil
}

// QuoteData is the literal payload handed to a signer. For memo/deposit
// providers To is a deposit address and Data carries the memo.
type QuoteData struct {
	To    string
	Value *big.Int
	Data  []byte

	// Approval, when set, must be executed (or permit-signed) before the
	// swap transaction itself.
	Approval *ApprovalData

	// GasLimit is the provider's estimate, zero if unknown. Not a guarantee.
	GasLimit uint64
}

// SwapStatus is the unified settlement state for cross-chain swaps.
type SwapStatus int

const (
	StatusPending SwapStatus = iota
	StatusCompleted
	StatusFailed
	StatusRefunded
)

func (s SwapStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusRefunded:
		return "refunded"
	}
	return "pending"
}

// Terminal reports whether the status is absorbing: once observed, later
// polls for the same identifier must keep returning it.
func (s SwapStatus) Terminal() bool {
	return s != StatusPending
}
