// Package nearintents routes cross-chain swaps through NEAR Intents via the
// 1Click API. Execution is deposit-address based: the user funds an address
// allocated by the solver relay and settlement happens off-chain, so the
// deposit address doubles as the tracking identifier.
package nearintents

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

const erc20TransferABI = `[{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

type Provider struct {
	provider swap.ProviderType
	client   *Client
}

func NewProvider(jwtToken string) *Provider {
	return &Provider{
		provider: swap.ProviderType{
			ID:       swap.ProviderNearIntents,
			Name:     "NEAR Intents",
			Protocol: "near_intents",
			Mode:     swap.ModeCrossChain,
		},
		client: NewClient(jwtToken),
	}
}

func (p *Provider) Provider() swap.ProviderType {
	return p.provider
}

func (p *Provider) SupportedChains() []swap.Chain {
	return supportedChains()
}

func (p *Provider) params(req *swap.QuoteRequest) (quoteParams, error) {
	origin, err := assetIdentifier(req.FromAsset.ID)
	if err != nil {
		return quoteParams{}, err
	}
	destination, err := assetIdentifier(req.ToAsset.ID)
	if err != nil {
		return quoteParams{}, err
	}
	if err := addr.Validate(req.ToAsset.Chain(), req.DestinationAddress); err != nil {
		return quoteParams{}, err
	}

	params := quoteParams{
		OriginAsset:      origin,
		DestinationAsset: destination,
		Amount:           req.FromValue,
		Recipient:        req.DestinationAddress,
		RefundTo:         req.WalletAddress,
		SlippageBps:      req.SlippageBps(),
	}
	if req.Options.Fee != nil {
		params.FeeRecipient = req.Options.Fee.Near.Address
		params.FeeBps = req.Options.Fee.Near.Bps
	}
	return params, nil
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	if req.Mode == swap.ExactOut {
		return nil, fmt.Errorf("%w: near intents quotes exact-in only", swap.ErrNotImplemented)
	}

	params, err := p.params(req)
	if err != nil {
		return nil, err
	}

	// dry quote: price only, no deposit address reserved
	resp, err := p.client.GetQuote(ctx, params, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}
	details := resp.GetQuote()

	toValue, ok := new(big.Int).SetString(details.GetAmountOut(), 10)
	if !ok || toValue.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bad amountOut %q", swap.ErrComputeQuote, details.GetAmountOut())
	}
	minOut, ok := new(big.Int).SetString(details.GetMinAmountOut(), 10)
	if !ok {
		minOut = swap.MinimumOutput(toValue, req.SlippageBps())
	}

	return &swap.Quote{
		Request:     *req,
		Provider:    p.provider,
		FromValue:   req.Value(),
		ToValue:     toValue,
		ToMinValue:  minOut,
		SlippageBps: req.SlippageBps(),
		EtaSeconds:  uint32(details.GetTimeEstimate()),
		RouteData:   "",
	}, nil
}

// GetQuoteData allocates a deposit address and renders the funding payment.
// The caller must fund it before the quote deadline or the relay refunds.
func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	params, err := p.params(&quote.Request)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.GetQuote(ctx, params, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}
	details := resp.GetQuote()

	deposit := details.GetDepositAddress()
	if deposit == "" {
		return nil, fmt.Errorf("%w: no deposit address allocated", swap.ErrComputeQuote)
	}

	fromAsset := quote.Request.FromAsset.ID
	if fromAsset.Chain.IsEVM() && !fromAsset.IsNative() {
		return p.erc20DepositData(fromAsset, deposit, quote.FromValue)
	}

	data := &swap.QuoteData{
		To:    deposit,
		Value: new(big.Int).Set(quote.FromValue),
	}
	if memo := details.GetDepositMemo(); memo != "" {
		data.Data = []byte(memo)
	}
	return data, nil
}

// erc20DepositData funds an EVM deposit address with a token transfer. No
// approval is needed; the transfer spends the caller's own balance.
func (p *Provider) erc20DepositData(asset swap.AssetID, deposit string, amount *big.Int) (*swap.QuoteData, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, err
	}
	to, err := addr.DecodeEVM(deposit)
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("packing transfer: %w", err)
	}
	return &swap.QuoteData{
		To:    asset.Contract,
		Value: new(big.Int),
		Data:  data,
	}, nil
}

// GetSwapStatus maps 1Click execution states onto the unified state machine.
// Everything before settlement (PENDING_DEPOSIT, KNOWN_DEPOSIT_TX,
// PROCESSING, INCOMPLETE_DEPOSIT) stays Pending.
func (p *Provider) GetSwapStatus(ctx context.Context, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	resp, err := p.client.GetExecutionStatus(ctx, identifier)
	if err != nil {
		return swap.StatusPending, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	switch resp.GetStatus() {
	case "SUCCESS":
		return swap.StatusCompleted, nil
	case "REFUNDED":
		return swap.StatusRefunded, nil
	case "FAILED":
		return swap.StatusFailed, nil
	default:
		return swap.StatusPending, nil
	}
}
