// Package across bridges assets between EVM chains through the Across spoke
// pools. Quotes come from the suggested-fees API; the swap payload is a
// depositV3 call on the origin chain's spoke pool, filled by relayers on the
// destination.
package across

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

const depositV3ABI = `[{"inputs":[{"name":"depositor","type":"address"},{"name":"recipient","type":"address"},{"name":"inputToken","type":"address"},{"name":"outputToken","type":"address"},{"name":"inputAmount","type":"uint256"},{"name":"outputAmount","type":"uint256"},{"name":"destinationChainId","type":"uint256"},{"name":"exclusiveRelayer","type":"address"},{"name":"quoteTimestamp","type":"uint32"},{"name":"fillDeadline","type":"uint32"},{"name":"exclusivityDeadline","type":"uint32"},{"name":"message","type":"bytes"}],"name":"depositV3","outputs":[],"stateMutability":"payable","type":"function"}]`

const depositGasLimit = 150_000

// supportedChains are the networks with deployed spoke pools.
var supportedChains = []swap.Chain{
	swap.Ethereum,
	swap.Optimism,
	swap.Polygon,
	swap.Base,
	swap.Arbitrum,
	swap.ZkSync,
	swap.Linea,
}

type Provider struct {
	provider swap.ProviderType
	client   *Client
}

func NewProvider(endpoint string, httpClient *http.Client) *Provider {
	return &Provider{
		provider: swap.ProviderType{
			ID:       swap.ProviderAcross,
			Name:     "Across",
			Protocol: "across",
			Mode:     swap.ModeBridge,
		},
		client: NewClient(endpoint, httpClient),
	}
}

func (p *Provider) Provider() swap.ProviderType {
	return p.provider
}

func (p *Provider) SupportedChains() []swap.Chain {
	chains := make([]swap.Chain, len(supportedChains))
	copy(chains, supportedChains)
	return chains
}

type routeData struct {
	SpokePool           string `json:"spoke_pool"`
	InputToken          string `json:"input_token"`
	OutputToken         string `json:"output_token"`
	OutputAmount        string `json:"output_amount"`
	DestinationChainID  int64  `json:"destination_chain_id"`
	ExclusiveRelayer    string `json:"exclusive_relayer"`
	QuoteTimestamp      uint32 `json:"quote_timestamp"`
	FillDeadline        uint32 `json:"fill_deadline"`
	ExclusivityDeadline uint32 `json:"exclusivity_deadline"`
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	if req.Mode == swap.ExactOut {
		return nil, fmt.Errorf("%w: across quotes exact-in only", swap.ErrNotImplemented)
	}

	fromChain := req.FromAsset.Chain()
	toChain := req.ToAsset.Chain()
	originID := fromChain.EVMChainID()
	destinationID := toChain.EVMChainID()
	if originID == nil || destinationID == nil {
		return nil, fmt.Errorf("%w: across bridges EVM chains only", swap.ErrNotSupportedChain)
	}
	if err := addr.Validate(toChain, req.DestinationAddress); err != nil {
		return nil, err
	}

	// spoke pools move ERC20s; native legs ride as the wrapped token
	inputToken, err := addr.TokenAddress(req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	outputToken, err := addr.TokenAddress(req.ToAsset.ID)
	if err != nil {
		return nil, err
	}

	fees, err := p.client.SuggestedFees(ctx, inputToken, outputToken, originID.Int64(), destinationID.Int64(), req.FromValue, req.DestinationAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}
	if fees.IsAmountTooLow {
		return nil, fmt.Errorf("%w: below bridge minimum %s", swap.ErrInputAmountTooSmall, fees.Limits.MinDeposit)
	}

	relayFee, ok := new(big.Int).SetString(fees.TotalRelayFee.Total, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad relay fee %q", swap.ErrComputeQuote, fees.TotalRelayFee.Total)
	}
	value := req.Value()
	outputAmount := new(big.Int).Sub(value, relayFee)
	if outputAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: relay fee exceeds input", swap.ErrInputAmountTooSmall)
	}

	quoteTimestamp, err := strconv.ParseUint(fees.Timestamp, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad quote timestamp %q", swap.ErrComputeQuote, fees.Timestamp)
	}
	fillDeadline, err := strconv.ParseUint(fees.FillDeadline, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad fill deadline %q", swap.ErrComputeQuote, fees.FillDeadline)
	}

	var eta uint32 = 60
	if secs, err := strconv.ParseUint(fees.ExpectedFillTimeSec, 10, 32); err == nil {
		eta = uint32(secs)
	}

	route, err := json.Marshal(routeData{
		SpokePool:           fees.SpokePoolAddress,
		InputToken:          inputToken,
		OutputToken:         outputToken,
		OutputAmount:        outputAmount.String(),
		DestinationChainID:  destinationID.Int64(),
		ExclusiveRelayer:    fees.ExclusiveRelayer,
		QuoteTimestamp:      uint32(quoteTimestamp),
		FillDeadline:        uint32(fillDeadline),
		ExclusivityDeadline: uint32(fees.ExclusivityDeadline),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrComputeQuote, err)
	}

	// relayers fill the exact output; slippage does not apply to the fill,
	// so the quote carries a zero tolerance to match the equal minimum
	return &swap.Quote{
		Request:    *req,
		Provider:   p.provider,
		FromValue:  value,
		ToValue:    outputAmount,
		ToMinValue: new(big.Int).Set(outputAmount),
		EtaSeconds: eta,
		RouteData:  string(route),
	}, nil
}

func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	var route routeData
	if err := json.Unmarshal([]byte(quote.RouteData), &route); err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrInvalidRoute, err)
	}
	if route.SpokePool == "" || route.OutputAmount == "" {
		return nil, fmt.Errorf("%w: missing spoke pool or output amount", swap.ErrInvalidRoute)
	}

	parsed, err := abi.JSON(strings.NewReader(depositV3ABI))
	if err != nil {
		return nil, err
	}

	depositor, err := addr.DecodeEVM(quote.Request.WalletAddress)
	if err != nil {
		return nil, err
	}
	recipient, err := addr.DecodeEVM(quote.Request.DestinationAddress)
	if err != nil {
		return nil, err
	}
	inputToken, err := addr.DecodeEVM(route.InputToken)
	if err != nil {
		return nil, err
	}
	outputToken, err := addr.DecodeEVM(route.OutputToken)
	if err != nil {
		return nil, err
	}
	exclusiveRelayer, err := addr.DecodeEVM(route.ExclusiveRelayer)
	if err != nil {
		return nil, err
	}

	outputAmount, ok := new(big.Int).SetString(route.OutputAmount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad output amount %q", swap.ErrInvalidRoute, route.OutputAmount)
	}

	data, err := parsed.Pack("depositV3",
		depositor,
		recipient,
		inputToken,
		outputToken,
		quote.FromValue,
		outputAmount,
		big.NewInt(route.DestinationChainID),
		exclusiveRelayer,
		route.QuoteTimestamp,
		route.FillDeadline,
		route.ExclusivityDeadline,
		[]byte{},
	)
	if err != nil {
		return nil, fmt.Errorf("packing depositV3: %w", err)
	}

	asset := quote.Request.FromAsset.ID
	value := new(big.Int)
	if asset.IsNative() {
		// native deposits carry msg.value; the pool wraps internally
		value = new(big.Int).Set(quote.FromValue)
	}

	quoteData := &swap.QuoteData{
		To:       route.SpokePool,
		Value:    value,
		Data:     data,
		GasLimit: depositGasLimit,
	}
	if !asset.IsNative() {
		quoteData.Approval = &swap.ApprovalData{
			Token:   route.InputToken,
			Spender: route.SpokePool,
			Value:   new(big.Int).Set(quote.FromValue),
		}
	}
	return quoteData, nil
}

// GetSwapStatus resolves a deposit transaction hash. Deposits that pass the
// fill deadline unfilled are refunded on the origin chain.
func (p *Provider) GetSwapStatus(ctx context.Context, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	chainID := chain.EVMChainID()
	if chainID == nil {
		return swap.StatusPending, fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, chain)
	}

	status, err := p.client.DepositStatus(ctx, chainID.Int64(), identifier)
	if err != nil {
		return swap.StatusPending, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	switch status.Status {
	case "filled":
		return swap.StatusCompleted, nil
	case "expired", "refunded":
		return swap.StatusRefunded, nil
	default:
		return swap.StatusPending, nil
	}
}
