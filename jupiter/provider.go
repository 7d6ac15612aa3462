// Package jupiter routes Solana swaps through the Jupiter aggregator. The
// swap payload is an unsigned versioned transaction built server-side; the
// engine returns it base64-encoded for the host's signer.
package jupiter

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gagliardetto/solana-go"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

// referralProgram is Jupiter's referral fee program. Fee token accounts are
// PDAs of the referral account and the output mint.
const referralProgram = "REFER4ZgmyYx9c6He5XfaTMiGfdLwRnkV4RPp9t9iF3"

type Provider struct {
	provider swap.ProviderType
	client   *Client
}

func NewProvider(endpoint string, httpClient *http.Client) *Provider {
	return &Provider{
		provider: swap.ProviderType{
			ID:       swap.ProviderJupiter,
			Name:     "Jupiter",
			Protocol: "jupiter",
			Mode:     swap.ModeOnChain,
		},
		client: NewClient(endpoint, httpClient),
	}
}

func (p *Provider) Provider() swap.ProviderType {
	return p.provider
}

func (p *Provider) SupportedChains() []swap.Chain {
	return []swap.Chain{swap.Solana}
}

func (p *Provider) GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.Quote, error) {
	if req.Mode == swap.ExactOut {
		return nil, fmt.Errorf("%w: jupiter quotes exact-in only", swap.ErrNotImplemented)
	}
	if req.FromAsset.Chain() != swap.Solana {
		return nil, fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, req.FromAsset.Chain())
	}
	if err := addr.Validate(swap.Solana, req.DestinationAddress); err != nil {
		return nil, err
	}

	// native SOL trades as the WSOL mint; the route wraps and unwraps
	inputMint, err := addr.TokenAddress(req.FromAsset.ID)
	if err != nil {
		return nil, err
	}
	outputMint, err := addr.TokenAddress(req.ToAsset.ID)
	if err != nil {
		return nil, err
	}

	var feeBps uint32
	if req.Options.Fee != nil {
		feeBps = req.Options.Fee.Solana.Bps
	}

	slippageBps := req.SlippageBps()
	quote, raw, err := p.client.GetQuote(ctx, inputMint, outputMint, req.FromValue, slippageBps, feeBps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}

	toValue, ok := new(big.Int).SetString(quote.OutAmount, 10)
	if !ok || toValue.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bad outAmount %q", swap.ErrComputeQuote, quote.OutAmount)
	}
	minOut, ok := new(big.Int).SetString(quote.OtherAmountThreshold, 10)
	if !ok {
		minOut = swap.MinimumOutput(toValue, slippageBps)
	}

	return &swap.Quote{
		Request:     *req,
		Provider:    p.provider,
		FromValue:   req.Value(),
		ToValue:     toValue,
		ToMinValue:  minOut,
		SlippageBps: slippageBps,
		EtaSeconds:  5,
		RouteData:   string(raw),
	}, nil
}

// GetQuoteData asks Jupiter to assemble the transaction for the quoted route.
// Data holds the base64-encoded unsigned transaction; there is no To or
// Value, Solana transactions are self-contained.
func (p *Provider) GetQuoteData(ctx context.Context, quote *swap.Quote) (*swap.QuoteData, error) {
	if quote.RouteData == "" {
		return nil, fmt.Errorf("%w: missing route", swap.ErrInvalidRoute)
	}

	swapReq := SwapRequest{
		UserPublicKey:           quote.Request.WalletAddress,
		QuoteResponse:           []byte(quote.RouteData),
		WrapAndUnwrapSol:        true,
		DynamicComputeUnitLimit: true,
	}

	if fee := quote.Request.Options.Fee; fee != nil && fee.Solana.Bps > 0 && fee.Solana.Address != "" {
		outputMint, err := addr.TokenAddress(quote.Request.ToAsset.ID)
		if err != nil {
			return nil, err
		}
		feeAccount, err := referralTokenAccount(fee.Solana.Address, outputMint)
		if err != nil {
			return nil, err
		}
		swapReq.FeeAccount = feeAccount
	}

	resp, err := p.client.BuildSwap(ctx, swapReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrNetwork, err)
	}
	if resp.SwapTransaction == "" {
		return nil, fmt.Errorf("%w: empty swap transaction", swap.ErrComputeQuote)
	}

	return &swap.QuoteData{
		Value: new(big.Int),
		Data:  []byte(resp.SwapTransaction),
	}, nil
}

// referralTokenAccount derives the referral program's fee token account for
// a referral key and mint.
func referralTokenAccount(referral, mint string) (string, error) {
	program, err := solana.PublicKeyFromBase58(referralProgram)
	if err != nil {
		return "", err
	}
	referralKey, err := solana.PublicKeyFromBase58(referral)
	if err != nil {
		return "", fmt.Errorf("%w: %v", swap.ErrInvalidAddress, err)
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", swap.ErrInvalidAddress, err)
	}

	account, _, err := solana.FindProgramAddress([][]byte{
		[]byte("referral_ata"),
		referralKey.Bytes(),
		mintKey.Bytes(),
	}, program)
	if err != nil {
		return "", fmt.Errorf("deriving referral account: %w", err)
	}
	return account.String(), nil
}
