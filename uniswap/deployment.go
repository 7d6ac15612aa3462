package uniswap

import "github.com/lumenwallet/swapper/swap"

// Deployment pins one network's contract set for a v3 fork.
type Deployment struct {
	QuoterV2        string
	UniversalRouter string
}

// Instance describes one branded v3 deployment family. The same adapter code
// serves every fork; only the descriptor and contract tables differ.
type Instance struct {
	ID          swap.ProviderID
	Name        string
	Protocol    string
	Deployments map[swap.Chain]Deployment
	FeeTiers    []uint32 // hundredths of a bip, e.g. 500 = 0.05%
}

var defaultFeeTiers = []uint32{100, 500, 3000, 10000}

// UniswapV3 is the canonical deployment set.
func UniswapV3() Instance {
	return Instance{
		ID:       swap.ProviderUniswapV3,
		Name:     "Uniswap v3",
		Protocol: "uniswap_v3",
		FeeTiers: defaultFeeTiers,
		Deployments: map[swap.Chain]Deployment{
			swap.Ethereum: {
				QuoterV2:        "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
				UniversalRouter: "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD",
			},
			swap.Arbitrum: {
				QuoterV2:        "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
				UniversalRouter: "0x5E325eDA8064b456f4781070C0738d849c824258",
			},
			swap.Optimism: {
				QuoterV2:        "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
				UniversalRouter: "0xCb1355ff08Ab38bBCE60111F1bb2B784bE25D7e8",
			},
			swap.Polygon: {
				QuoterV2:        "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
				UniversalRouter: "0xec7BE89e9d109e7e3Fec59c222CF297125FEFda2",
			},
			swap.Base: {
				QuoterV2:        "0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a",
				UniversalRouter: "0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD",
			},
			swap.AvalancheC: {
				QuoterV2:        "0xbe0F5544EC67e9B3b2D979aaA43f18Fd87E6257F",
				UniversalRouter: "0x4Dae2f939ACf50408e13d58534Ff8c2776d45265",
			},
			swap.SmartChain: {
				QuoterV2:        "0x78D78E420Da98ad378D7799bE8f4AF69033EB077",
				UniversalRouter: "0x4Dae2f939ACf50408e13d58534Ff8c2776d45265",
			},
		},
	}
}

// PancakeswapV3 shares the adapter but settles on pancake pools.
func PancakeswapV3() Instance {
	return Instance{
		ID:       swap.ProviderPancakeswap,
		Name:     "PancakeSwap v3",
		Protocol: "pancakeswap_v3",
		FeeTiers: []uint32{100, 500, 2500, 10000},
		Deployments: map[swap.Chain]Deployment{
			swap.SmartChain: {
				QuoterV2:        "0xB048Bbc1Ee6b733FFfCFb9e9CeF7375518e25997",
				UniversalRouter: "0x1A0A18AC4BECDDbd6389559687d1A73d8927E416",
			},
			swap.Ethereum: {
				QuoterV2:        "0xB048Bbc1Ee6b733FFfCFb9e9CeF7375518e25997",
				UniversalRouter: "0x65b382653f7C31bC0Af67f188122035461ec9C76",
			},
			swap.Base: {
				QuoterV2:        "0xB048Bbc1Ee6b733FFfCFb9e9CeF7375518e25997",
				UniversalRouter: "0xFE6508f0015C778Bdcc1fB5465bA5ebE224C9912",
			},
			swap.ZkSync: {
				QuoterV2:        "0x3d146FcE6c1006857750cBe8aF44f76a28041CCc",
				UniversalRouter: "0xdAee41E355322C137ff08A022bdd22dB331f2409",
			},
		},
	}
}

// Oku serves uniswap v3 deployments on long-tail networks.
func Oku() Instance {
	return Instance{
		ID:       swap.ProviderOku,
		Name:     "Oku",
		Protocol: "uniswap_v3",
		FeeTiers: defaultFeeTiers,
		Deployments: map[swap.Chain]Deployment{
			swap.Linea: {
				QuoterV2:        "0x42bE4D6527829FeFA1493e1fb9F3676d2425C3C1",
				UniversalRouter: "0x9f0e79Aeb198750F963b6f30B99d87c6EE5A0467",
			},
		},
	}
}

// Wagmi is the zksync-era v3 fork.
func Wagmi() Instance {
	return Instance{
		ID:       swap.ProviderWagmi,
		Name:     "Wagmi",
		Protocol: "uniswap_v3",
		FeeTiers: defaultFeeTiers,
		Deployments: map[swap.Chain]Deployment{
			swap.ZkSync: {
				QuoterV2:        "0x178BC66cA3E945f44ab8d5b55B4a0F34ead2110E",
				UniversalRouter: "0xC91f4871a27823b5AC7B299B5F65E12EA19cC7a1",
			},
		},
	}
}
