// Package chainflip routes swaps through the Chainflip state chain. Pricing
// comes from the public quote API; execution opens a deposit channel through
// a broker, and the user funds the channel address.
package chainflip

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

const erc20TransferABI = `[{"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

// refundRetryBlocks is how long the state chain retries at the limit price
// before refunding the deposit.
const refundRetryBlocks = 150

type Provider struct {
	provider swap.ProviderType
	client   *Client
	broker   *Broker
}

func NewProvider(endpoint, brokerEndpoint string, httpClient *http.Client) (*Provider, error) {
	var broker *Broker
	if brokerEndpoint != "" {
		var err error
		broker, err = NewBroker(brokerEndpoint)
		if err != nil {
			return nil, err
		}
	}
	return &Provider{
		provider: swap.ProviderType{
			ID:       swap.ProviderChainflip,
			Name:     "Chainflip",
			Protocol: "chainflip",
			Mode:     swap.ModeBridge,
		},
		client: NewClient(endpoint, httpClient),
		broker: broker,
	}, nil
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

type routeData struct {
	Src        Asset      `json:"src"`
	Dest       Asset      `json:"dest"`
	Commission uint32     `json:"commission_bps,omitempty"`
	DCA        *DCAParams `json:"dca,omitempty"`
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	if req.Mode == swap.ExactOut {
		return nil, fmt.Errorf("%w: chainflip quotes exact-in only", swap.ErrNotImplemented)
	}

	src, err := chainflipAsset(req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	dest, err := chainflipAsset(req.ToAsset.ID)
	if err != nil {
		return nil, err
	}
	if err := addr.Validate(req.ToAsset.Chain(), req.DestinationAddress); err != nil {
		return nil, err
	}

	var commission uint32
	if req.Options.Fee != nil {
		commission = req.Options.Fee.EVMBridge.Bps
	}

	quotes, err := p.client.GetQuotes(ctx, src, dest, req.FromValue, commission)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	// the API returns REGULAR and possibly DCA variants; take the best egress
	var best *QuoteResponse
	var bestEgress *big.Int
	for i := range quotes {
		egress, ok := new(big.Int).SetString(quotes[i].EgressAmount, 10)
		if !ok || egress.Sign() <= 0 {
			continue
		}
		if best == nil || egress.Cmp(bestEgress) > 0 {
			best = &quotes[i]
			bestEgress = egress
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no usable chainflip quote", swap.ErrNoQuoteAvailable)
	}

	route, err := json.Marshal(routeData{
		Src:        src,
		Dest:       dest,
		Commission: commission,
		DCA:        best.DCAParams,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrComputeQuote, err)
	}

	slippageBps := req.SlippageBps()
	return &swap.Quote{
		Request:     *req,
		Provider:    p.provider,
		FromValue:   req.Value(),
		ToValue:     bestEgress,
		ToMinValue:  swap.MinimumOutput(bestEgress, slippageBps),
		SlippageBps: slippageBps,
		EtaSeconds:  uint32(best.EstimatedDurationS),
		RouteData:   string(route),
	}, nil
}

// GetQuoteData opens a deposit channel and renders the funding payment. The
// channel enforces the limit price on-chain: below it for long enough, the
// deposit refunds to the wallet address.
func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	if p.broker == nil {
		return nil, fmt.Errorf("%w: no broker configured", swap.ErrNotImplemented)
	}

	var route routeData
	if err := json.Unmarshal([]byte(quote.RouteData), &route); err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrInvalidRoute, err)
	}
	if route.Src.Chain == "" || route.Dest.Chain == "" {
		return nil, fmt.Errorf("%w: missing route assets", swap.ErrInvalidRoute)
	}

	refund := RefundParams{
		RetryDuration: refundRetryBlocks,
		RefundAddress: quote.Request.WalletAddress,
		MinPrice:      minPrice(quote.ToMinValue, quote.FromValue),
	}
	var dca *DCAChannelParams
	if route.DCA != nil {
		dca = &DCAChannelParams{
			NumberOfChunks: route.DCA.NumberOfChunks,
			ChunkInterval:  route.DCA.ChunkIntervalBlocks,
		}
	}

	channel, err := p.broker.RequestDepositAddress(ctx, route.Src, route.Dest, quote.Request.DestinationAddress, route.Commission, refund, dca)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	fromAsset := quote.Request.FromAsset.ID
	if fromAsset.Chain.IsEVM() && !fromAsset.IsNative() {
		return erc20DepositData(fromAsset.Contract, channel.Address, quote.FromValue)
	}

	return &swap.QuoteData{
		To:    channel.Address,
		Value: new(big.Int).Set(quote.FromValue),
	}, nil
}

func erc20DepositData(token, deposit string, amount *big.Int) (*swap.QuoteData, error) {
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
		To:    token,
		Value: new(big.Int),
		Data:  data,
	}, nil
}

// GetSwapStatus resolves a deposit channel identifier in the explorer's
// "issuedBlock-sourceChain-channelId" form.
func (p *Provider) GetSwapStatus(ctx context.Context, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	status, err := p.client.GetSwapStatus(ctx, identifier)
	if err != nil {
		return swap.StatusPending, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	switch status.State {
	case "COMPLETED", "SENT":
		return swap.StatusCompleted, nil
	case "FAILED":
		return swap.StatusFailed, nil
	case "REFUNDED":
		return swap.StatusRefunded, nil
	default:
		return swap.StatusPending, nil
	}
}
