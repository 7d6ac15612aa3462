package nearintents

import (
	"fmt"
	"strings"

	"github.com/lumenwallet/swapper/swap"
)

// nativeAssets maps engine chains to the 1Click asset ID of the chain's
// native coin. These are NEP-141 representations minted by the omni bridge.
var nativeAssets = map[swap.Chain]string{
	swap.Ethereum:    "nep141:eth.omft.near",
	swap.Base:        "nep141:base.omft.near",
	swap.Arbitrum:    "nep141:arb.omft.near",
	swap.SmartChain:  "nep141:bsc.omft.near",
	swap.Solana:      "nep141:sol.omft.near",
	swap.Bitcoin:     "nep141:btc.omft.near",
	swap.Dogecoin:    "nep141:doge.omft.near",
	swap.Litecoin:    "nep141:ltc.omft.near",
	swap.BitcoinCash: "nep141:bch.omft.near",
	swap.Ton:         "nep141:ton.omft.near",
	swap.Tron:        "nep141:tron.omft.near",
	swap.Sui:         "nep141:sui.omft.near",
	swap.Near:        "nep141:wrap.near",
}

// tokenPrefixes maps chains to the asset ID prefix used for bridged tokens,
// e.g. "nep141:eth-0xdac17f958d2ee523a2206206994597c13d831ec7.omft.near".
var tokenPrefixes = map[swap.Chain]string{
	swap.Ethereum:   "eth",
	swap.Base:       "base",
	swap.Arbitrum:   "arb",
	swap.SmartChain: "bsc",
	swap.Solana:     "sol",
	swap.Tron:       "tron",
}

// assetIdentifier renders an asset in 1Click notation.
func assetIdentifier(asset swap.AssetID) (string, error) {
	if asset.IsNative() {
		id, ok := nativeAssets[asset.Chain]
		if !ok {
			return "", fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, asset.Chain)
		}
		return id, nil
	}

	if asset.Chain == swap.Near {
		return "nep141:" + strings.ToLower(asset.Contract), nil
	}

	prefix, ok := tokenPrefixes[asset.Chain]
	if !ok {
		return "", fmt.Errorf("%w: no token bridge for %s", swap.ErrNotSupportedAsset, asset.Chain)
	}
	contract := asset.Contract
	if asset.Chain != swap.Solana {
		// solana mints are case-sensitive base58; everything else folds
		contract = strings.ToLower(contract)
	}
	return fmt.Sprintf("nep141:%s-%s.omft.near", prefix, contract), nil
}

func supportedChains() []swap.Chain {
	chains := make([]swap.Chain, 0, len(nativeAssets))
	for c := range nativeAssets {
		chains = append(chains, c)
	}
	return chains
}
