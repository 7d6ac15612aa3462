package nearintents

import (
	"context"
	"fmt"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
)

const quoteDeadline = time.Hour

// Client wraps the 1Click SDK with bearer auth and the request plumbing the
// adapter needs.
type Client struct {
	api   *oneclick.APIClient
	token string
}

func NewClient(jwtToken string) *Client {
	return &Client{
		api:   oneclick.NewAPIClient(oneclick.NewConfiguration()),
		token: jwtToken,
	}
}

func (c *Client) authContext(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.token)
}

// quoteParams carries everything 1Click needs to price a swap.
type quoteParams struct {
	OriginAsset      string
	DestinationAsset string
	Amount           string
	Recipient        string
	RefundTo         string
	SlippageBps      uint32
	FeeRecipient     string
	FeeBps           uint32
}

// GetQuote requests a quote. With dry set no deposit address is allocated;
// a wet quote reserves one and starts the deadline clock.
func (c *Client) GetQuote(ctx context.Context, params quoteParams, dry bool) (*oneclick.QuoteResponse, error) {
	req := oneclick.NewQuoteRequest(
		dry,
		"EXACT_INPUT",
		float32(params.SlippageBps),
		params.OriginAsset,
		"ORIGIN_CHAIN",
		params.DestinationAsset,
		params.Amount,
		params.RefundTo,
		"ORIGIN_CHAIN",
		params.Recipient,
		"DESTINATION_CHAIN",
		time.Now().Add(quoteDeadline),
	)
	if params.FeeBps > 0 && params.FeeRecipient != "" {
		req.SetAppFees([]oneclick.AppFee{
			*oneclick.NewAppFee(params.FeeRecipient, float32(params.FeeBps)),
		})
	}

	resp, httpResp, err := c.api.OneClickAPI.GetQuote(c.authContext(ctx)).QuoteRequest(*req).Execute()
	if err != nil {
		return nil, fmt.Errorf("requesting quote: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("1click API returned %d", httpResp.StatusCode)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}
	return resp, nil
}

// GetExecutionStatus resolves the swap state for a deposit address.
func (c *Client) GetExecutionStatus(ctx context.Context, depositAddress string) (*oneclick.GetExecutionStatusResponse, error) {
	resp, httpResp, err := c.api.OneClickAPI.GetExecutionStatus(c.authContext(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching execution status: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("1click API returned %d", httpResp.StatusCode)
	}
	return resp, nil
}
