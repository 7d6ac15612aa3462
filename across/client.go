package across

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const DefaultEndpoint = "https://app.across.to/api"

// SuggestedFeesResponse is the relevant subset of /suggested-fees.
type SuggestedFeesResponse struct {
	TotalRelayFee struct {
		Pct   string `json:"pct"`
		Total string `json:"total"`
	} `json:"totalRelayFee"`
	Timestamp           string `json:"timestamp"`
	IsAmountTooLow      bool   `json:"isAmountTooLow"`
	SpokePoolAddress    string `json:"spokePoolAddress"`
	ExclusiveRelayer    string `json:"exclusiveRelayer"`
	ExclusivityDeadline int64  `json:"exclusivityDeadline"`
	FillDeadline        string `json:"fillDeadline"`
	ExpectedFillTimeSec string `json:"estimatedFillTimeSec"`
	Limits              struct {
		MinDeposit string `json:"minDeposit"`
		MaxDeposit string `json:"maxDeposit"`
	} `json:"limits"`
}

// DepositStatusResponse is the /deposit/status document.
type DepositStatusResponse struct {
	Status          string `json:"status"`
	FillTx          string `json:"fillTx"`
	DepositRefundTx string `json:"depositRefundTxHash"`
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

// SuggestedFees prices a bridge transfer between two chains.
func (c *Client) SuggestedFees(ctx context.Context, inputToken, outputToken string, originChainID, destinationChainID int64, amount, recipient string) (*SuggestedFeesResponse, error) {
	params := url.Values{}
	params.Set("inputToken", inputToken)
	params.Set("outputToken", outputToken)
	params.Set("originChainId", fmt.Sprintf("%d", originChainID))
	params.Set("destinationChainId", fmt.Sprintf("%d", destinationChainID))
	params.Set("amount", amount)
	params.Set("recipient", recipient)

	var fees SuggestedFeesResponse
	if err := c.get(ctx, fmt.Sprintf("%s/suggested-fees?%s", c.baseURL, params.Encode()), &fees); err != nil {
		return nil, err
	}
	return &fees, nil
}

// DepositStatus resolves a deposit transaction hash on the origin chain.
func (c *Client) DepositStatus(ctx context.Context, originChainID int64, depositTxHash string) (*DepositStatusResponse, error) {
	params := url.Values{}
	params.Set("originChainId", fmt.Sprintf("%d", originChainID))
	params.Set("depositTxHash", depositTxHash)

	var status DepositStatusResponse
	if err := c.get(ctx, fmt.Sprintf("%s/deposit/status?%s", c.baseURL, params.Encode()), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) get(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("across API returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
