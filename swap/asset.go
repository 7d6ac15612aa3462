package swap

import (
	"fmt"
	"strings"
)

// AssetID is a chain-qualified asset identifier in the form
// "chain.SYMBOL" for native coins or "chain.SYMBOL-CONTRACT" for tokens.
// Examples: "ethereum.ETH", "ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48".
type AssetID struct {
	Chain    Chain
	Symbol   string
	Contract string // empty for native assets
}

// ParseAssetID parses the canonical asset notation.
func ParseAssetID(s string) (AssetID, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return AssetID{}, fmt.Errorf("%w: %q, expected chain.SYMBOL", ErrNotSupportedAsset, s)
	}

	chain := Chain(strings.ToLower(parts[0]))
	if !chain.Known() {
		return AssetID{}, fmt.Errorf("%w: %q", ErrNotSupportedChain, parts[0])
	}

	symbolPart := parts[1]
	var symbol, contract string
	if idx := strings.Index(symbolPart, "-"); idx != -1 {
		symbol = strings.ToUpper(symbolPart[:idx])
		contract = symbolPart[idx+1:]
	} else {
		symbol = strings.ToUpper(symbolPart)
	}
	if symbol == "" {
		return AssetID{}, fmt.Errorf("%w: %q", ErrNotSupportedAsset, s)
	}

	return AssetID{Chain: chain, Symbol: symbol, Contract: contract}, nil
}

// String returns the asset in canonical notation.
func (a AssetID) String() string {
	if a.Contract != "" {
		return fmt.Sprintf("%s.%s-%s", a.Chain, a.Symbol, a.Contract)
	}
	return fmt.Sprintf("%s.%s", a.Chain, a.Symbol)
}

// IsNative reports whether the asset is the chain's native coin.
func (a AssetID) IsNative() bool {
	return a.Contract == ""
}

// QuoteAsset is an asset as it appears in a quote request.
type QuoteAsset struct {
	ID       AssetID
	Symbol   string
	Decimals int32
}

// NewQuoteAsset builds a QuoteAsset from a canonical identifier string.
func NewQuoteAsset(id string, decimals int32) (QuoteAsset, error) {
	assetID, err := ParseAssetID(id)
	if err != nil {
		return QuoteAsset{}, err
	}
	return QuoteAsset{ID: assetID, Symbol: assetID.Symbol, Decimals: decimals}, nil
}

func (a QuoteAsset) Chain() Chain {
	return a.ID.Chain
}
