package swap

import "math/big"

// Chain identifies a supported blockchain. Values double as config keys.
type Chain string

const (
	Ethereum    Chain = "ethereum"
	SmartChain  Chain = "smartchain"
	Polygon     Chain = "polygon"
	Arbitrum    Chain = "arbitrum"
	Optimism    Chain = "optimism"
	Base        Chain = "base"
	AvalancheC  Chain = "avalanche"
	ZkSync      Chain = "zksync"
	Linea       Chain = "linea"
	Solana      Chain = "solana"
	Bitcoin     Chain = "bitcoin"
	BitcoinCash Chain = "bitcoincash"
	Litecoin    Chain = "litecoin"
	Dogecoin    Chain = "dogecoin"
	Thorchain   Chain = "thorchain"
	Cosmos      Chain = "cosmos"
	Sui         Chain = "sui"
	Ton         Chain = "ton"
	Tron        Chain = "tron"
	Near        Chain = "near"
)

// Family groups chains by address encoding and execution model.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyEVM
	FamilySolana
	FamilyBitcoin // base58check and/or bech32 UTXO chains
	FamilyBech32  // cosmos-sdk style bech32 accounts
	FamilySui
	FamilyTon
	FamilyTron
	FamilyNear
)

var chainFamilies = map[Chain]Family{
	Ethereum:    FamilyEVM,
	SmartChain:  FamilyEVM,
	Polygon:     FamilyEVM,
	Arbitrum:    FamilyEVM,
	Optimism:    FamilyEVM,
	Base:        FamilyEVM,
	AvalancheC:  FamilyEVM,
	ZkSync:      FamilyEVM,
	Linea:       FamilyEVM,
	Solana:      FamilySolana,
	Bitcoin:     FamilyBitcoin,
	BitcoinCash: FamilyBitcoin,
	Litecoin:    FamilyBitcoin,
	Dogecoin:    FamilyBitcoin,
	Thorchain:   FamilyBech32,
	Cosmos:      FamilyBech32,
	Sui:         FamilySui,
	Ton:         FamilyTon,
	Tron:        FamilyTron,
	Near:        FamilyNear,
}

// Family returns the chain's address/execution family, FamilyUnknown for
// unrecognized chains.
func (c Chain) Family() Family {
	return chainFamilies[c]
}

// Known reports whether the chain is part of the catalog.
func (c Chain) Known() bool {
	_, ok := chainFamilies[c]
	return ok
}

func (c Chain) IsEVM() bool {
	return c.Family() == FamilyEVM
}

// evmChainIDs maps EVM chains to their network IDs.
var evmChainIDs = map[Chain]int64{
	Ethereum:   1,
	SmartChain: 56,
	Polygon:    137,
	Arbitrum:   42161,
	Optimism:   10,
	Base:       8453,
	AvalancheC: 43114,
	ZkSync:     324,
	Linea:      59144,
}

// EVMChainID returns the numeric network ID for EVM chains, nil otherwise.
func (c Chain) EVMChainID() *big.Int {
	id, ok := evmChainIDs[c]
	if !ok {
		return nil
	}
	return big.NewInt(id)
}

// IsZkStack reports whether the chain runs a zksync-era style VM, where gas
// estimates from standard tooling come in low.
func (c Chain) IsZkStack() bool {
	return c == ZkSync
}

const defaultSlippageBps = 100

// highSlippageBps applies to thin-liquidity or long-finality chains where a
// tight tolerance makes quotes fail more often than it protects the user.
var highSlippageChains = map[Chain]uint32{
	Thorchain:   300,
	Bitcoin:     300,
	BitcoinCash: 300,
	Litecoin:    300,
	Dogecoin:    300,
	Ton:         300,
}

// DefaultSlippageBps returns the auto-mode slippage tolerance for the chain.
func (c Chain) DefaultSlippageBps() uint32 {
	if bps, ok := highSlippageChains[c]; ok {
		return bps
	}
	return defaultSlippageBps
}

// nativeFeeReserves is the amount of native coin, in base units, held back
// from max-amount swaps so the wallet can still pay for the swap transaction
// itself.
var nativeFeeReserves = map[Chain]int64{
	Ethereum:    2_000_000_000_000_000, // 0.002 ETH
	Solana:      10_000_000,            // 0.01 SOL
	Bitcoin:     20_000,
	BitcoinCash: 10_000,
	Litecoin:    10_000,
	Dogecoin:    100_000_000, // 1 DOGE
	Thorchain:   2_000_000,   // 0.02 RUNE
	Cosmos:      20_000,      // 0.02 ATOM
	Sui:         50_000_000,  // 0.05 SUI
	Ton:         100_000_000, // 0.1 TON
	Tron:        1_000_000,   // 1 TRX
}

// evmL2FeeReserve covers EVM chains without an explicit entry.
const evmL2FeeReserve = 1_000_000_000_000_000 // 0.001 in 18 decimals

// NativeFeeReserve returns the per-chain gas reserve for max-amount swaps.
func (c Chain) NativeFeeReserve() *big.Int {
	if c == Near {
		// 0.05 NEAR in yocto, beyond int64 range
		reserve, _ := new(big.Int).SetString("50000000000000000000000", 10)
		return reserve
	}
	if v, ok := nativeFeeReserves[c]; ok {
		return big.NewInt(v)
	}
	if c.IsEVM() {
		return big.NewInt(evmL2FeeReserve)
	}
	return new(big.Int)
}
