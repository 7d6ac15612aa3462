// Package swapper assembles the swap engine from operator configuration:
// provider adapters in declaration order, the approval engine, and the
// facade. Hosts that need bespoke wiring can build the pieces directly; this
// package is the batteries-included path.
package swapper

import (
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/lumenwallet/swapper/across"
	"github.com/lumenwallet/swapper/approval"
	"github.com/lumenwallet/swapper/chainflip"
	"github.com/lumenwallet/swapper/config"
	"github.com/lumenwallet/swapper/cowswap"
	"github.com/lumenwallet/swapper/httplog"
	"github.com/lumenwallet/swapper/jupiter"
	"github.com/lumenwallet/swapper/nearintents"
	"github.com/lumenwallet/swapper/swap"
	"github.com/lumenwallet/swapper/thorchain"
	"github.com/lumenwallet/swapper/uniswap"
)

// New builds a ready facade from configuration. evmClients provides chain
// read access for on-chain quoting and allowance checks, keyed by chain;
// chains named in the config's rpc_endpoints block are dialed automatically,
// with caller-supplied clients taking precedence. AMM adapters silently skip
// chains with no client.
func New(cfg *config.Config, evmClients map[swap.Chain]swap.EVMCaller) (*swap.Swapper, error) {
	clients, err := dialClients(cfg, evmClients)
	if err != nil {
		return nil, err
	}

	var providers []swap.Provider
	for _, pc := range cfg.Providers {
		provider, err := buildProvider(pc, clients)
		if err != nil {
			return nil, fmt.Errorf("building provider %s: %w", pc.ID, err)
		}
		providers = append(providers, provider)
		log.Printf("registered swap provider %s", pc.ID)
	}

	registry := swap.NewRegistry(providers...)
	timeout := time.Duration(cfg.AdapterTimeoutMS) * time.Millisecond

	slippage := make(map[swap.Chain]uint32, len(cfg.DefaultSlippageBps))
	for name, bps := range cfg.DefaultSlippageBps {
		chain := swap.Chain(name)
		if !chain.Known() {
			return nil, fmt.Errorf("default slippage for unknown chain %q", name)
		}
		slippage[chain] = bps
	}

	return swap.NewSwapper(registry, timeout,
		swap.WithApprovalChecker(approval.NewEngine(clients)),
		swap.WithSlippageDefaults(slippage),
	), nil
}

// dialClients merges caller-supplied EVM clients with clients dialed from the
// config's rpc_endpoints block. Explicit clients win over dialed ones.
func dialClients(cfg *config.Config, evmClients map[swap.Chain]swap.EVMCaller) (map[swap.Chain]swap.EVMCaller, error) {
	clients := make(map[swap.Chain]swap.EVMCaller, len(evmClients)+len(cfg.RPCEndpoints))
	for chain, client := range evmClients {
		clients[chain] = client
	}
	for name, endpoint := range cfg.RPCEndpoints {
		chain := swap.Chain(name)
		if !chain.IsEVM() {
			return nil, fmt.Errorf("rpc endpoint for non-EVM chain %q", name)
		}
		if _, ok := clients[chain]; ok {
			continue
		}
		client, err := ethclient.Dial(endpoint)
		if err != nil {
			return nil, fmt.Errorf("dialing %s rpc: %w", name, err)
		}
		clients[chain] = client
	}
	return clients, nil
}

func buildProvider(pc config.ProviderConfig, evmClients map[swap.Chain]swap.EVMCaller) (swap.Provider, error) {
	switch swap.ProviderID(pc.ID) {
	case swap.ProviderUniswapV3:
		return uniswap.NewProvider(uniswap.UniswapV3(), evmClients, pc.FeeTiers), nil
	case swap.ProviderPancakeswap:
		return uniswap.NewProvider(uniswap.PancakeswapV3(), evmClients, pc.FeeTiers), nil
	case swap.ProviderOku:
		return uniswap.NewProvider(uniswap.Oku(), evmClients, pc.FeeTiers), nil
	case swap.ProviderWagmi:
		return uniswap.NewProvider(uniswap.Wagmi(), evmClients, pc.FeeTiers), nil
	case swap.ProviderCowSwap:
		return cowswap.NewProvider(pc.Endpoint, httplog.NewHTTPClient(pc.ID)), nil
	case swap.ProviderJupiter:
		return jupiter.NewProvider(pc.Endpoint, httplog.NewHTTPClient(pc.ID)), nil
	case swap.ProviderThorchain:
		return thorchain.NewProvider(pc.Endpoint, httplog.NewHTTPClient(pc.ID)), nil
	case swap.ProviderAcross:
		return across.NewProvider(pc.Endpoint, httplog.NewHTTPClient(pc.ID)), nil
	case swap.ProviderChainflip:
		return chainflip.NewProvider(pc.Endpoint, pc.BrokerEndpoint, httplog.NewHTTPClient(pc.ID))
	case swap.ProviderNearIntents:
		return nearintents.NewProvider(pc.APIKey), nil
	}
	return nil, fmt.Errorf("unknown provider id %q", pc.ID)
}

// ReferralFees converts the configured operator fee table into the
// per-request options form.
func ReferralFees(rc config.ReferralConfig) swap.ReferralFees {
	convert := func(fc config.FeeConfig) swap.ReferralFee {
		return swap.ReferralFee{Address: fc.Address, Bps: fc.Bps}
	}
	return swap.ReferralFees{
		EVM:       convert(rc.EVM),
		EVMBridge: convert(rc.EVMBridge),
		Solana:    convert(rc.Solana),
		Thorchain: convert(rc.Thorchain),
		Sui:       convert(rc.Sui),
		Ton:       convert(rc.Ton),
		Near:      convert(rc.Near),
	}
}
