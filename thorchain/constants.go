package thorchain

import "github.com/lumenwallet/swapper/swap"

const (
	DefaultEndpoint = "https://thornode.ninerealms.com"

	// thornode quotes and amounts use a fixed 8-decimal representation
	thorDecimals = 8

	streamingInterval = "1"
	streamingQuantity = "0"

	defaultDepositGasLimit = 90_000
)

// chainNames maps engine chains to THORChain chain identifiers.
var chainNames = map[swap.Chain]string{
	swap.Bitcoin:     "BTC",
	swap.BitcoinCash: "BCH",
	swap.Litecoin:    "LTC",
	swap.Dogecoin:    "DOGE",
	swap.Ethereum:    "ETH",
	swap.AvalancheC:  "AVAX",
	swap.Base:        "BASE",
	swap.SmartChain:  "BSC",
	swap.Cosmos:      "GAIA",
	swap.Thorchain:   "THOR",
}

// longNames maps engine chains to the chain field of inbound_addresses.
var longNames = map[swap.Chain]string{
	swap.Bitcoin:     "BTC",
	swap.BitcoinCash: "BCH",
	swap.Litecoin:    "LTC",
	swap.Dogecoin:    "DOGE",
	swap.Ethereum:    "ETH",
	swap.AvalancheC:  "AVAX",
	swap.Base:        "BASE",
	swap.SmartChain:  "BSC",
	swap.Cosmos:      "GAIA",
}

// Thorchain Router ABI for depositWithExpiry
const routerDepositABI = `[{"inputs":[{"name":"vault","type":"address"},{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"memo","type":"string"},{"name":"expiry","type":"uint256"}],"name":"depositWithExpiry","outputs":[],"stateMutability":"payable","type":"function"}]`

const zeroAddress = "0x0000000000000000000000000000000000000000"
