package addr

import (
	"fmt"

	"github.com/lumenwallet/swapper/swap"
)

// WSOLMint is the wrapped-SOL token mint.
const WSOLMint = "So11111111111111111111111111111111111111112"

// wrappedNative maps each chain to its canonical wrapped-native contract.
var wrappedNative = map[swap.Chain]string{
	swap.Ethereum:   "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	swap.SmartChain: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
	swap.Polygon:    "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270",
	swap.Arbitrum:   "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
	swap.Optimism:   "0x4200000000000000000000000000000000000006",
	swap.Base:       "0x4200000000000000000000000000000000000006",
	swap.AvalancheC: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7",
	swap.ZkSync:     "0x5AEa5775959fBC2557Cc8789bC1bf90A239D9a91",
	swap.Linea:      "0xe5D7C2a44FfDDf6b295A15c148167daaAf5Cf34f",
	swap.Solana:     WSOLMint,
}

// WrappedNative returns the canonical wrapped-token contract for the chain's
// native coin.
func WrappedNative(chain swap.Chain) (string, bool) {
	contract, ok := wrappedNative[chain]
	return contract, ok
}

// TokenAddress resolves an asset to the token address a token-only provider
// expects: native coins are rewritten to the chain's wrapped contract, token
// contracts are validated and pass through unchanged. Idempotent: resolving
// an already-wrapped asset is the identity.
func TokenAddress(asset swap.AssetID) (string, error) {
	if asset.IsNative() {
		contract, ok := WrappedNative(asset.Chain)
		if !ok {
			return "", fmt.Errorf("%w: no wrapped token for %s", swap.ErrNotSupportedAsset, asset.Chain)
		}
		return contract, nil
	}
	if err := Validate(asset.Chain, asset.Contract); err != nil {
		return "", err
	}
	return asset.Contract, nil
}
