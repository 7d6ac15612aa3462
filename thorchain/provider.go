// Package thorchain routes swaps through THORChain's memo-deposit protocol.
// On EVM chains the deposit is a router contract call; on UTXO and cosmos
// chains it is a transfer to the inbound vault carrying the swap memo.
package thorchain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/shopspring/decimal"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

type Provider struct {
	provider swap.ProviderType
	client   *Client
}

func NewProvider(endpoint string, httpClient *http.Client) *Provider {
	return &Provider{
		provider: swap.ProviderType{
			ID:         swap.ProviderThorchain,
			Name:       "THORChain",
			Protocol:   "thorchain",
			Mode:       swap.ModeOmniChain,
			OmniChains: []swap.Chain{swap.Thorchain},
		},
		client: NewClient(endpoint, httpClient),
	}
}

func (p *Provider) Provider() swap.ProviderType {
	return p.provider
}

func (p *Provider) SupportedChains() []swap.Chain {
	chains := make([]swap.Chain, 0, len(chainNames))
	for c := range chainNames {
		chains = append(chains, c)
	}
	return chains
}

// routeData is the provider-owned state carried between quote and quote data.
type routeData struct {
	InboundAddress string `json:"inbound_address"`
	Router         string `json:"router,omitempty"`
	Memo           string `json:"memo"`
	Expiry         int64  `json:"expiry"`
	GasRate        string `json:"gas_rate,omitempty"`
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	if req.Mode == swap.ExactOut {
		return nil, fmt.Errorf("%w: thorchain quotes exact-in only", swap.ErrNotImplemented)
	}

	fromAsset, err := thorAssetName(req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	toAsset, err := thorAssetName(req.ToAsset.ID)
	if err != nil {
		return nil, err
	}
	if err := addr.Validate(req.ToAsset.Chain(), req.DestinationAddress); err != nil {
		return nil, err
	}

	value := req.Value()
	thorValue := rescale(value, req.FromAsset.Decimals, thorDecimals)
	if thorValue.Sign() <= 0 {
		return nil, fmt.Errorf("%w: below thornode precision", swap.ErrInputAmountTooSmall)
	}

	// thorchain-native inputs are not subject to inbound dust thresholds
	if req.FromAsset.Chain() != swap.Thorchain {
		if err := p.checkDustThreshold(ctx, req.FromAsset.Chain(), thorValue); err != nil {
			return nil, err
		}
	}

	var affiliate string
	var affiliateBps uint32
	if req.Options.Fee != nil {
		affiliate = req.Options.Fee.Thorchain.Address
		affiliateBps = req.Options.Fee.Thorchain.Bps
	}

	quote, err := p.client.GetQuote(ctx, fromAsset, toAsset, thorValue.String(), req.DestinationAddress, affiliate, affiliateBps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	expectedOut, ok := new(big.Int).SetString(quote.ExpectedAmountOut, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad expected_amount_out %q", swap.ErrComputeQuote, quote.ExpectedAmountOut)
	}

	// affiliate fee is already deducted server-side
	toValue := rescale(expectedOut, thorDecimals, req.ToAsset.Decimals)
	slippageBps := req.SlippageBps()

	route, err := json.Marshal(routeData{
		InboundAddress: quote.InboundAddress,
		Router:         quote.Router,
		Memo:           quote.Memo,
		Expiry:         quote.Expiry,
		GasRate:        quote.RecommendedGasRate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrComputeQuote, err)
	}

	return &swap.Quote{
		Request:     *req,
		Provider:    p.provider,
		FromValue:   value,
		ToValue:     toValue,
		ToMinValue:  swap.MinimumOutput(toValue, slippageBps),
		SlippageBps: slippageBps,
		EtaSeconds:  uint32(quote.OutboundDelaySecs),
		RouteData:   string(route),
	}, nil
}

func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	var route routeData
	if err := json.Unmarshal([]byte(quote.RouteData), &route); err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrInvalidRoute, err)
	}
	if route.InboundAddress == "" || route.Memo == "" {
		return nil, fmt.Errorf("%w: missing inbound address or memo", swap.ErrInvalidRoute)
	}

	fromChain := quote.Request.FromAsset.Chain()
	if fromChain.IsEVM() {
		return p.evmDepositData(quote, &route)
	}

	// memo-deposit chains: the payload is a transfer to the inbound vault
	// with the swap memo, not a contract call
	return &swap.QuoteData{
		To:    route.InboundAddress,
		Value: new(big.Int).Set(quote.FromValue),
		Data:  []byte(route.Memo),
	}, nil
}

func (p *Provider) evmDepositData(quote *swap.Quote, route *routeData) (*swap.QuoteData, error) {
	if route.Router == "" {
		return nil, fmt.Errorf("%w: no router for EVM deposit", swap.ErrInvalidRoute)
	}

	parsed, err := abi.JSON(strings.NewReader(routerDepositABI))
	if err != nil {
		return nil, err
	}

	vault, err := addr.DecodeEVM(route.InboundAddress)
	if err != nil {
		return nil, err
	}

	asset := quote.Request.FromAsset.ID
	tokenAddress := zeroAddress
	value := new(big.Int).Set(quote.FromValue)
	if !asset.IsNative() {
		token, err := addr.DecodeEVM(asset.Contract)
		if err != nil {
			return nil, err
		}
		tokenAddress = token.Hex()
		// tokens move via the router's transferFrom, not msg.value
		value = new(big.Int)
	}
	token, err := addr.DecodeEVM(tokenAddress)
	if err != nil {
		return nil, err
	}

	expiry := route.Expiry
	if min := time.Now().Unix() + 3600; expiry < min {
		expiry = min
	}

	data, err := parsed.Pack("depositWithExpiry", vault, token, quote.FromValue, route.Memo, big.NewInt(expiry))
	if err != nil {
		return nil, fmt.Errorf("packing deposit: %w", err)
	}

	quoteData := &swap.QuoteData{
		To:       route.Router,
		Value:    value,
		Data:     data,
		GasLimit: defaultDepositGasLimit,
	}
	if !asset.IsNative() {
		quoteData.Approval = &swap.ApprovalData{
			Token:   tokenAddress,
			Spender: route.Router,
			Value:   new(big.Int).Set(quote.FromValue),
		}
	}
	return quoteData, nil
}

// GetSwapStatus maps thornode tx stages onto the unified state machine.
// Unrecognized stage combinations stay Pending.
func (p *Provider) GetSwapStatus(ctx context.Context, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	status, err := p.client.GetTxStatus(ctx, identifier)
	if err != nil {
		return swap.StatusPending, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	// cross-chain swaps complete when the outbound is signed
	if status.Stages.OutboundSigned != nil && status.Stages.OutboundSigned.Completed {
		return swap.StatusCompleted, nil
	}

	// native swaps (to RUNE) have no outbound stage
	if status.Stages.OutboundSigned == nil &&
		status.Stages.SwapFinalised != nil && status.Stages.SwapFinalised.Completed {
		return swap.StatusCompleted, nil
	}

	return swap.StatusPending, nil
}

func (p *Provider) checkDustThreshold(ctx context.Context, chain swap.Chain, thorValue *big.Int) error {
	inbound, err := p.client.GetInboundAddresses(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	name := longNames[chain]
	for _, entry := range inbound {
		if entry.Chain != name {
			continue
		}
		if entry.Halted {
			return fmt.Errorf("%w: %s inbound halted", swap.ErrNoQuoteAvailable, name)
		}
		dust, ok := new(big.Int).SetString(entry.DustThreshold, 10)
		if ok && thorValue.Cmp(dust) <= 0 {
			return fmt.Errorf("%w: minimum %s", swap.ErrInputAmountTooSmall, entry.DustThreshold)
		}
		return nil
	}
	return fmt.Errorf("%w: no inbound address for %s", swap.ErrInvalidRoute, name)
}

// thorAssetName renders an asset in THORChain notation, e.g. "ETH.ETH" or
// "ETH.USDC-0XA0B86991...".
func thorAssetName(asset swap.AssetID) (string, error) {
	chain, ok := chainNames[asset.Chain]
	if !ok {
		return "", fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, asset.Chain)
	}
	if asset.IsNative() || asset.Chain == swap.Thorchain {
		return fmt.Sprintf("%s.%s", chain, asset.Symbol), nil
	}
	return fmt.Sprintf("%s.%s-%s", chain, asset.Symbol, strings.ToUpper(asset.Contract)), nil
}

// rescale converts a base-unit amount between decimal conventions, flooring
// any excess precision.
func rescale(value *big.Int, fromDecimals, toDecimals int32) *big.Int {
	d := decimal.NewFromBigInt(value, -fromDecimals).Shift(toDecimals)
	return d.Truncate(0).BigInt()
}
