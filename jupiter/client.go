package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const DefaultEndpoint = "https://lite-api.jup.ag"

// QuoteResponse is Jupiter's route quote. The full document is echoed back
// in the swap request, so unmapped fields must survive a round trip.
type QuoteResponse struct {
	InputMint            string          `json:"inputMint"`
	InAmount             string          `json:"inAmount"`
	OutputMint           string          `json:"outputMint"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	PlatformFee          json.RawMessage `json:"platformFee,omitempty"`
	RoutePlan            json.RawMessage `json:"routePlan"`
	ContextSlot          uint64          `json:"contextSlot,omitempty"`
	TimeTaken            float64         `json:"timeTaken,omitempty"`
}

// SwapRequest is the POST body for /swap/v1/swap.
type SwapRequest struct {
	UserPublicKey             string          `json:"userPublicKey"`
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	FeeAccount                string          `json:"feeAccount,omitempty"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports interface{}     `json:"prioritizationFeeLamports,omitempty"`
}

// SwapResponse carries the unsigned transaction, base64 encoded.
type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// GetQuote prices a route. Returns both the decoded quote and the raw body;
// the raw body goes back to Jupiter verbatim when building the transaction.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint, amount string, slippageBps, platformFeeBps uint32) (*QuoteResponse, json.RawMessage, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", amount)
	params.Set("slippageBps", fmt.Sprintf("%d", slippageBps))
	if platformFeeBps > 0 {
		params.Set("platformFeeBps", fmt.Sprintf("%d", platformFeeBps))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/swap/v1/quote?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("requesting quote: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("jupiter returned %d: %s", resp.StatusCode, string(body))
	}

	var quote QuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, nil, fmt.Errorf("parsing quote: %w", err)
	}
	return &quote, body, nil
}

// BuildSwap turns a quote into an unsigned transaction.
func (c *Client) BuildSwap(ctx context.Context, swapReq SwapRequest) (*SwapResponse, error) {
	payload, err := json.Marshal(swapReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap/v1/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting swap transaction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter returned %d: %s", resp.StatusCode, string(body))
	}

	var result SwapResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing swap response: %w", err)
	}
	return &result, nil
}
