package swap

import "errors"

// Error taxonomy surfaced by the engine. Adapters wrap these with context via
// fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	ErrNotSupportedChain   = errors.New("not supported chain")
	ErrNotSupportedAsset   = errors.New("not supported asset")
	ErrNotSupportedPair    = errors.New("not supported pair")
	ErrNoAvailableProvider = errors.New("no available provider")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInputAmountTooSmall = errors.New("input amount is too small")
	ErrInvalidRoute        = errors.New("invalid route or route data")
	ErrNetwork             = errors.New("network error")
	ErrComputeQuote        = errors.New("compute quote error")
	ErrNoQuoteAvailable    = errors.New("no quote available")
	ErrNotImplemented      = errors.New("not implemented")
)
