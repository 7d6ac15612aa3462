package swap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// Provider is the capability interface every liquidity source implements.
// Implementations hold only immutable configuration and shared transport
// clients; they carry no request-scoped state.
type Provider interface {
	// Provider returns the immutable descriptor.
	Provider() ProviderType

	// SupportedChains lists every chain the provider can route.
	SupportedChains() []Chain

	// GetQuote fetches a price offer for the request.
	GetQuote(ctx context.Context, req *QuoteRequest) (*Quote, error)

	// GetQuoteData builds the transaction/deposit payload for a quote
	// previously returned by the same provider.
	GetQuoteData(ctx context.Context, quote *Quote) (*QuoteData, error)
}

// StatusTracker is implemented by cross-chain and bridge providers whose
// settlement is not confirmed by the local transaction. The identifier shape
// is provider-defined (tx hash, deposit address, order id).
type StatusTracker interface {
	GetSwapStatus(ctx context.Context, chain Chain, identifier string) (SwapStatus, error)
}

// EVMCaller is the narrow read-only node interface the engine needs on EVM
// chains. *ethclient.Client satisfies it.
type EVMCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}
