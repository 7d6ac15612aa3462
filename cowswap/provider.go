// Package cowswap places intent orders on the CoW Protocol order book. The
// engine never holds keys, so orders use the presign scheme: the swap
// transaction is a setPreSignature call on the settlement contract and the
// order book matches the order once it lands.
package cowswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

type Provider struct {
	provider swap.ProviderType
	endpoint string
	client   *Client
}

func NewProvider(endpoint string, httpClient *http.Client) *Provider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Provider{
		provider: swap.ProviderType{
			ID:       swap.ProviderCowSwap,
			Name:     "CoW Swap",
			Protocol: "cowswap",
			Mode:     swap.ModeOnChain,
		},
		endpoint: endpoint,
		client:   NewClient(httpClient),
	}
}

func (p *Provider) Provider() swap.ProviderType {
	return p.provider
}

func (p *Provider) SupportedChains() []swap.Chain {
	chains := make([]swap.Chain, 0, len(networkSlugs))
	for c := range networkSlugs {
		chains = append(chains, c)
	}
	return chains
}

func (p *Provider) apiBase(chain swap.Chain) (string, error) {
	slug, ok := networkSlugs[chain]
	if !ok {
		return "", fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, chain)
	}
	return fmt.Sprintf("%s/%s/api/v1", p.endpoint, slug), nil
}

// appData is the order metadata document. Its keccak256 hash is part of the
// order; the order book requires the document and hash to match exactly, so
// the same serialization must be used for quote and submission.
type appData struct {
	AppCode  string `json:"appCode"`
	Metadata struct {
		PartnerFee *partnerFee `json:"partnerFee,omitempty"`
	} `json:"metadata"`
	Version string `json:"version"`
}

type partnerFee struct {
	Bps       uint32 `json:"bps"`
	Recipient string `json:"recipient"`
}

func buildAppData(fee *swap.ReferralFees) (doc string, hash string, err error) {
	data := appData{AppCode: appCode, Version: appDataVersion}
	if fee != nil && fee.EVM.Bps > 0 && fee.EVM.Address != "" {
		if _, err := addr.DecodeEVM(fee.EVM.Address); err != nil {
			return "", "", err
		}
		data.Metadata.PartnerFee = &partnerFee{Bps: fee.EVM.Bps, Recipient: fee.EVM.Address}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", "", err
	}
	return string(raw), crypto.Keccak256Hash(raw).Hex(), nil
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	apiBase, err := p.apiBase(req.FromAsset.Chain())
	if err != nil {
		return nil, err
	}
	if _, err := addr.DecodeEVM(req.DestinationAddress); err != nil {
		return nil, err
	}

	// native sells trade as the wrapped token; the order book has no
	// unwrapped sell side
	sellToken, err := addr.TokenAddress(req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	buyToken := nativeBuyToken
	if !req.ToAsset.ID.IsNative() {
		if _, err := addr.DecodeEVM(req.ToAsset.ID.Contract); err != nil {
			return nil, err
		}
		buyToken = req.ToAsset.ID.Contract
	}

	doc, hash, err := buildAppData(req.Options.Fee)
	if err != nil {
		return nil, err
	}

	quoteReq := QuoteRequest{
		SellToken:     sellToken,
		BuyToken:      buyToken,
		Receiver:      req.DestinationAddress,
		From:          req.WalletAddress,
		AppData:       doc,
		AppDataHash:   hash,
		SigningScheme: "presign",
	}
	switch req.Mode {
	case swap.ExactIn:
		quoteReq.Kind = "sell"
		quoteReq.SellAmountBeforeFee = req.FromValue
	case swap.ExactOut:
		quoteReq.Kind = "buy"
		quoteReq.BuyAmountAfterFee = req.FromValue
	}

	result, err := p.client.GetQuote(ctx, apiBase, quoteReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	sellAmount, ok := new(big.Int).SetString(result.Quote.SellAmount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad sellAmount %q", swap.ErrComputeQuote, result.Quote.SellAmount)
	}
	buyAmount, ok := new(big.Int).SetString(result.Quote.BuyAmount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad buyAmount %q", swap.ErrComputeQuote, result.Quote.BuyAmount)
	}
	feeAmount, ok := new(big.Int).SetString(result.Quote.FeeAmount, 10)
	if !ok {
		feeAmount = new(big.Int)
	}

	slippageBps := req.SlippageBps()

	var fromValue, toValue, toMinValue *big.Int
	switch req.Mode {
	case swap.ExactOut:
		// output is fixed; slippage widens the input side instead
		fromValue = new(big.Int).Add(sellAmount, feeAmount)
		toValue = buyAmount
		toMinValue = new(big.Int).Set(buyAmount)
	default:
		fromValue = req.Value()
		toValue = buyAmount
		toMinValue = swap.MinimumOutput(buyAmount, slippageBps)
	}

	route, err := json.Marshal(result.Quote)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrComputeQuote, err)
	}

	return &swap.Quote{
		Request:     *req,
		Provider:    p.provider,
		FromValue:   fromValue,
		ToValue:     toValue,
		ToMinValue:  toMinValue,
		SlippageBps: slippageBps,
		EtaSeconds:  60,
		RouteData:   string(route),
	}, nil
}

func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	apiBase, err := p.apiBase(quote.Request.FromAsset.Chain())
	if err != nil {
		return nil, err
	}

	var order OrderParams
	if err := json.Unmarshal([]byte(quote.RouteData), &order); err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrInvalidRoute, err)
	}
	if order.SellToken == "" || order.BuyToken == "" {
		return nil, fmt.Errorf("%w: missing order parameters", swap.ErrInvalidRoute)
	}

	// sell orders are submitted at the slippage-adjusted limit so solvers
	// have matching room; anything better comes back as surplus
	if order.Kind == "sell" && quote.ToMinValue != nil {
		order.BuyAmount = quote.ToMinValue.String()
	}
	if min := uint32(time.Now().Unix() + orderValidity); order.ValidTo < min {
		order.ValidTo = min
	}

	orderUID, err := p.client.SubmitPresignOrder(ctx, apiBase, order, quote.Request.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	parsed, err := abi.JSON(strings.NewReader(setPreSignatureABI))
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack("setPreSignature", common.FromHex(orderUID), true)
	if err != nil {
		return nil, fmt.Errorf("packing setPreSignature: %w", err)
	}

	sellAmount, ok := new(big.Int).SetString(order.SellAmount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad sellAmount %q", swap.ErrInvalidRoute, order.SellAmount)
	}
	feeAmount, ok := new(big.Int).SetString(order.FeeAmount, 10)
	if !ok {
		feeAmount = new(big.Int)
	}

	return &swap.QuoteData{
		To:    SettlementContract,
		Value: new(big.Int),
		Data:  data,
		Approval: &swap.ApprovalData{
			Token:   order.SellToken,
			Spender: VaultRelayer,
			Value:   new(big.Int).Add(sellAmount, feeAmount),
		},
	}, nil
}

// GetSwapStatus resolves an order UID against the order book. Cancelled and
// expired orders never traded, so funds were never pulled.
func (p *Provider) GetSwapStatus(ctx context.Context, chain swap.Chain, identifier string) (swap.SwapStatus, error) {
	apiBase, err := p.apiBase(chain)
	if err != nil {
		return swap.StatusPending, err
	}

	status, err := p.client.OrderStatus(ctx, apiBase, identifier)
	if err != nil {
		return swap.StatusPending, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	switch status {
	case "fulfilled":
		return swap.StatusCompleted, nil
	case "cancelled", "expired":
		return swap.StatusFailed, nil
	default:
		return swap.StatusPending, nil
	}
}
