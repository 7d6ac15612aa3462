package cowswap

import "github.com/lumenwallet/swapper/swap"

const (
	DefaultEndpoint = "https://api.cow.fi"

	// GPv2Settlement and its vault relayer are deployed at the same address
	// on every supported network.
	SettlementContract = "0x9008D19f58AAbD9eD0D60971565AA8510560ab41"
	VaultRelayer       = "0xC92E8bdf79f0507f65a392b0ab4667716BFE0110"

	// nativeBuyToken is the order book's marker for an unwrapped native buy.
	nativeBuyToken = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

	orderValidity = 30 * 60 // seconds

	appCode        = "lumenwallet"
	appDataVersion = "1.3.0"
)

// networkSlugs maps engine chains to order book API network path segments.
var networkSlugs = map[swap.Chain]string{
	swap.Ethereum:   "mainnet",
	swap.Arbitrum:   "arbitrum_one",
	swap.Base:       "base",
	swap.AvalancheC: "avalanche",
	swap.Polygon:    "polygon",
}

const setPreSignatureABI = `[{"inputs":[{"name":"orderUid","type":"bytes"},{"name":"signed","type":"bool"}],"name":"setPreSignature","outputs":[],"stateMutability":"nonpayable","type":"function"}]`
