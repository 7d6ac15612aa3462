// Package config loads the static provider registry configuration. The file
// is read once at process start; no network calls happen during load and the
// result is never mutated afterward.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// FeeConfig is a referral fee destination for one chain family. It is fixed
// in configuration and never caller-supplied, so a caller cannot redirect
// operator fees.
type FeeConfig struct {
	Address string `json:"address"`
	Bps     uint32 `json:"bps"`
}

// ReferralConfig is the operator fee table keyed by chain family.
type ReferralConfig struct {
	EVM       FeeConfig `json:"evm"`
	EVMBridge FeeConfig `json:"evm_bridge"`
	Solana    FeeConfig `json:"solana"`
	Thorchain FeeConfig `json:"thorchain"`
	Sui       FeeConfig `json:"sui"`
	Ton       FeeConfig `json:"ton"`
	Near      FeeConfig `json:"near"`
}

// ProviderConfig describes one registered provider. Order in the providers
// array is the registry declaration order and thus the quote tie-break order.
type ProviderConfig struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint,omitempty"`
	// BrokerEndpoint is the JSON-RPC broker URL for deposit-channel
	// providers (chainflip).
	BrokerEndpoint string `json:"broker_endpoint,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	// FeeTiers are the AMM pool fee tiers to probe, in hundredths of a bip
	// (uniswap convention: 500 = 0.05%). AMMs only.
	FeeTiers []uint32 `json:"fee_tiers,omitempty"`
}

type Config struct {
	// RPC endpoints for chain read access, keyed by chain name.
	RPCEndpoints map[string]string `json:"rpc_endpoints"`

	Providers []ProviderConfig `json:"providers"`

	Referral ReferralConfig `json:"referral"`

	// DefaultSlippageBps overrides the built-in per-chain auto slippage.
	DefaultSlippageBps map[string]uint32 `json:"default_slippage_bps,omitempty"`

	// AdapterTimeoutMS bounds each provider's quote call. Default 10000.
	AdapterTimeoutMS int `json:"adapter_timeout_ms,omitempty"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	seen := make(map[string]bool)
	for _, p := range c.Providers {
		if p.ID == "" {
			return fmt.Errorf("provider with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate provider %q", p.ID)
		}
		seen[p.ID] = true
	}
	for family, fee := range map[string]FeeConfig{
		"evm": c.Referral.EVM, "evm_bridge": c.Referral.EVMBridge,
		"solana": c.Referral.Solana, "thorchain": c.Referral.Thorchain,
		"sui": c.Referral.Sui, "ton": c.Referral.Ton, "near": c.Referral.Near,
	} {
		if fee.Bps > 10000 {
			return fmt.Errorf("referral fee for %s exceeds 10000 bps", family)
		}
		if fee.Bps > 0 && fee.Address == "" {
			return fmt.Errorf("referral fee for %s has bps but no address", family)
		}
	}
	for chain, bps := range c.DefaultSlippageBps {
		if bps > 10000 {
			return fmt.Errorf("default slippage for %s exceeds 10000 bps", chain)
		}
	}
	if c.AdapterTimeoutMS == 0 {
		c.AdapterTimeoutMS = 10000
	}
	return nil
}

// Provider returns the config block for a provider id.
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
