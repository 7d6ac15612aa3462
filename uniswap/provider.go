// Package uniswap serves uniswap-v3-compatible AMMs through the universal
// router. One adapter covers every fork; a Deployment table selects the
// contracts per network. Quoting is on-chain via QuoterV2, so the adapter
// needs an RPC caller per supported chain.
package uniswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/approval"
	"github.com/lumenwallet/swapper/swap"
)

// routerGasOverhead pads the quoter's pool-only gas estimate with the
// router's dispatch, wrap and sweep costs.
const routerGasOverhead = 120_000

type Provider struct {
	provider swap.ProviderType
	instance Instance
	clients  map[swap.Chain]swap.EVMCaller
}

// NewProvider builds an adapter for one deployment family. feeTiers, when
// non-empty, overrides the instance defaults (operator config).
func NewProvider(instance Instance, clients map[swap.Chain]swap.EVMCaller, feeTiers []uint32) *Provider {
	if len(feeTiers) > 0 {
		instance.FeeTiers = feeTiers
	}
	return &Provider{
		provider: swap.ProviderType{
			ID:       instance.ID,
			Name:     instance.Name,
			Protocol: instance.Protocol,
			Mode:     swap.ModeOnChain,
		},
		instance: instance,
		clients:  clients,
	}
}

func (p *Provider) Provider() swap.ProviderType {
	return p.provider
}

func (p *Provider) SupportedChains() []swap.Chain {
	chains := make([]swap.Chain, 0, len(p.instance.Deployments))
	for c := range p.instance.Deployments {
		if _, ok := p.clients[c]; ok {
			chains = append(chains, c)
		}
	}
	return chains
}

func (p *Provider) deployment(chain swap.Chain) (Deployment, swap.EVMCaller, error) {
	deployment, ok := p.instance.Deployments[chain]
	if !ok {
		return Deployment{}, nil, fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, chain)
	}
	caller, ok := p.clients[chain]
	if !ok {
		return Deployment{}, nil, fmt.Errorf("%w: no RPC client for %s", swap.ErrNotSupportedChain, chain)
	}
	return deployment, caller, nil
}

type routeData struct {
	TokenIn     string `json:"token_in"`
	TokenOut    string `json:"token_out"`
	FeeTier     uint32 `json:"fee_tier"`
	AmountOut   string `json:"amount_out"` // pre-referral-fee pool output
	GasEstimate uint64 `json:"gas_estimate"`
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	chain := req.FromAsset.Chain()
	deployment, caller, err := p.deployment(chain)
	if err != nil {
		return nil, err
	}
	if _, err := addr.DecodeEVM(req.DestinationAddress); err != nil {
		return nil, err
	}

	tokenInStr, err := addr.TokenAddress(req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	tokenOutStr, err := addr.TokenAddress(req.ToAsset.ID)
	if err != nil {
		return nil, err
	}
	tokenIn, err := addr.DecodeEVM(tokenInStr)
	if err != nil {
		return nil, err
	}
	tokenOut, err := addr.DecodeEVM(tokenOutStr)
	if err != nil {
		return nil, err
	}
	quoter, err := addr.DecodeEVM(deployment.QuoterV2)
	if err != nil {
		return nil, err
	}

	value := req.Value()
	best, err := bestPool(ctx, caller, quoter, tokenIn, tokenOut, value, p.instance.FeeTiers, req.Mode)
	if err != nil {
		return nil, err
	}

	var fee *swap.ReferralFee
	if req.Options.Fee != nil {
		fee = &req.Options.Fee.EVM
	}

	slippageBps := req.SlippageBps()
	quote := &swap.Quote{
		Request:     *req,
		Provider:    p.provider,
		SlippageBps: slippageBps,
		EtaSeconds:  30,
	}

	var poolOut *big.Int
	switch req.Mode {
	case swap.ExactOut:
		// best.Amount is the required input; the requested value is fixed output
		quote.FromValue = best.Amount
		quote.ToValue = swap.DeductFee(value, fee)
		quote.ToMinValue = new(big.Int).Set(quote.ToValue)
		poolOut = value
	default:
		quote.FromValue = value
		quote.ToValue = swap.DeductFee(best.Amount, fee)
		quote.ToMinValue = swap.MinimumOutput(quote.ToValue, slippageBps)
		poolOut = best.Amount
	}

	route, err := json.Marshal(routeData{
		TokenIn:     tokenIn.Hex(),
		TokenOut:    tokenOut.Hex(),
		FeeTier:     best.FeeTier,
		AmountOut:   poolOut.String(),
		GasEstimate: best.GasEstimate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrComputeQuote, err)
	}
	quote.RouteData = string(route)
	return quote, nil
}

func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	chain := quote.Request.FromAsset.Chain()
	deployment, _, err := p.deployment(chain)
	if err != nil {
		return nil, err
	}

	var route routeData
	if err := json.Unmarshal([]byte(quote.RouteData), &route); err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrInvalidRoute, err)
	}
	if route.TokenIn == "" || route.TokenOut == "" {
		return nil, fmt.Errorf("%w: missing route tokens", swap.ErrInvalidRoute)
	}
	poolOut, ok := new(big.Int).SetString(route.AmountOut, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad pool output %q", swap.ErrInvalidRoute, route.AmountOut)
	}

	recipient, err := addr.DecodeEVM(quote.Request.DestinationAddress)
	if err != nil {
		return nil, err
	}

	nativeIn := quote.Request.FromAsset.ID.IsNative()
	nativeOut := quote.Request.ToAsset.ID.IsNative()

	plan := swapPlan{
		TokenIn:   common.HexToAddress(route.TokenIn),
		TokenOut:  common.HexToAddress(route.TokenOut),
		FeeTier:   route.FeeTier,
		Recipient: recipient,
		Mode:      quote.Request.Mode,
		NativeIn:  nativeIn,
		NativeOut: nativeOut,
	}
	if fee := quote.Request.Options.Fee; fee != nil && fee.EVM.Bps > 0 && fee.EVM.Address != "" {
		feeRecipient, err := addr.DecodeEVM(fee.EVM.Address)
		if err != nil {
			return nil, err
		}
		plan.FeeRecipient = feeRecipient
		plan.FeeBps = fee.EVM.Bps
	}

	switch quote.Request.Mode {
	case swap.ExactOut:
		// give the pool leg slippage room on the input side
		maxIn := new(big.Int).Mul(quote.FromValue, big.NewInt(int64(10000+quote.SlippageBps)))
		maxIn.Quo(maxIn, big.NewInt(10000))
		plan.AmountIn = maxIn
		plan.AmountOut = poolOut
	default:
		plan.AmountIn = new(big.Int).Set(quote.FromValue)
		// the pool-leg minimum is pre-fee; PAY_PORTION takes its cut after
		plan.AmountOut = swap.MinimumOutput(poolOut, quote.SlippageBps)
	}

	data, err := encodeExecute(plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrComputeQuote, err)
	}

	value := new(big.Int)
	if nativeIn {
		value.Set(plan.AmountIn)
	}

	quoteData := &swap.QuoteData{
		To:       deployment.UniversalRouter,
		Value:    value,
		Data:     data,
		GasLimit: route.GasEstimate + routerGasOverhead,
	}
	if !nativeIn {
		// the router pulls tokens through permit2
		quoteData.Approval = &swap.ApprovalData{
			Token:   route.TokenIn,
			Spender: approval.Permit2Contract,
			Value:   new(big.Int).Set(plan.AmountIn),
		}
	}
	return quoteData, nil
}
