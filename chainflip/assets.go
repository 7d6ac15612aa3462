package chainflip

import (
	"fmt"
	"strings"

	"github.com/lumenwallet/swapper/swap"
)

// Asset is a chainflip asset reference as used by both the quote API and the
// broker RPC.
type Asset struct {
	Chain string `json:"chain"`
	Asset string `json:"asset"`
}

// chainNames maps engine chains to chainflip chain identifiers.
var chainNames = map[swap.Chain]string{
	swap.Ethereum: "Ethereum",
	swap.Arbitrum: "Arbitrum",
	swap.Bitcoin:  "Bitcoin",
	swap.Solana:   "Solana",
}

// supportedAssets lists the tradable assets per chainflip chain. The state
// chain only settles this whitelist; arbitrary tokens cannot route.
var supportedAssets = map[string][]string{
	"Ethereum": {"ETH", "USDC", "USDT", "FLIP"},
	"Arbitrum": {"ETH", "USDC"},
	"Bitcoin":  {"BTC"},
	"Solana":   {"SOL", "USDC"},
}

// chainflipAsset resolves an engine asset to chainflip notation.
func chainflipAsset(asset swap.AssetID) (Asset, error) {
	chain, ok := chainNames[asset.Chain]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, asset.Chain)
	}

	symbol := strings.ToUpper(asset.Symbol)
	for _, supported := range supportedAssets[chain] {
		if symbol == supported {
			return Asset{Chain: chain, Asset: symbol}, nil
		}
	}
	return Asset{}, fmt.Errorf("%w: %s on %s", swap.ErrNotSupportedAsset, asset.Symbol, chain)
}
