package thorchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type QuoteResponse struct {
	InboundAddress      string    `json:"inbound_address"`
	Router              string    `json:"router"`
	Expiry              int64     `json:"expiry"`
	Memo                string    `json:"memo"`
	ExpectedAmountOut   string    `json:"expected_amount_out"`
	DustThreshold       string    `json:"dust_threshold"`
	RecommendedMinIn    string    `json:"recommended_min_amount_in"`
	RecommendedGasRate  string    `json:"recommended_gas_rate"`
	GasRateUnits        string    `json:"gas_rate_units"`
	Fees                QuoteFees `json:"fees"`
	OutboundDelayBlocks int64     `json:"outbound_delay_blocks"`
	OutboundDelaySecs   int64     `json:"outbound_delay_seconds"`
	StreamingSwapBlocks int64     `json:"streaming_swap_blocks"`
	Warning             string    `json:"warning"`
	Notes               string    `json:"notes"`
}

type QuoteFees struct {
	Asset       string `json:"asset"`
	Affiliate   string `json:"affiliate"`
	Outbound    string `json:"outbound"`
	Liquidity   string `json:"liquidity"`
	Total       string `json:"total"`
	SlippageBps int    `json:"slippage_bps"`
	TotalBps    int    `json:"total_bps"`
}

type InboundAddress struct {
	Chain         string `json:"chain"`
	Address       string `json:"address"`
	Router        string `json:"router"`
	Halted        bool   `json:"halted"`
	GasRate       string `json:"gas_rate"`
	GasRateUnits  string `json:"gas_rate_units"`
	DustThreshold string `json:"dust_threshold"`
}

type TxStage struct {
	Completed bool `json:"completed"`
}

type TxStatusResponse struct {
	Stages struct {
		InboundObserved            TxStage  `json:"inbound_observed"`
		InboundConfirmationCounted TxStage  `json:"inbound_confirmation_counted"`
		InboundFinalised           TxStage  `json:"inbound_finalised"`
		SwapFinalised              *TxStage `json:"swap_finalised"`
		OutboundSigned             *TxStage `json:"outbound_signed"`
	} `json:"stages"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	mu         sync.Mutex
	lastReq    time.Time
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// rateLimit enforces 1 request per second; ninerealms throttles hard. The
// slot is reserved under the lock, the wait happens outside it so concurrent
// callers queue up without blocking each other and a cancelled context
// abandons the wait.
func (c *Client) rateLimit(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastReq.Add(time.Second)
	if next.Before(now) {
		next = now
	}
	c.lastReq = next
	c.mu.Unlock()

	wait := next.Sub(now)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) GetQuote(ctx context.Context, fromAsset, toAsset, amount, destination, affiliate string, affiliateBps uint32) (*QuoteResponse, error) {
	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("from_asset", fromAsset)
	params.Set("to_asset", toAsset)
	params.Set("amount", amount)
	params.Set("destination", destination)
	params.Set("streaming_interval", streamingInterval)
	params.Set("streaming_quantity", streamingQuantity)
	if affiliate != "" && affiliateBps > 0 {
		params.Set("affiliate", affiliate)
		params.Set("affiliate_bps", fmt.Sprintf("%d", affiliateBps))
	}

	var quote QuoteResponse
	if err := c.get(ctx, fmt.Sprintf("%s/thorchain/quote/swap?%s", c.baseURL, params.Encode()), &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) GetInboundAddresses(ctx context.Context) ([]InboundAddress, error) {
	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	var addrs []InboundAddress
	if err := c.get(ctx, fmt.Sprintf("%s/thorchain/inbound_addresses", c.baseURL), &addrs); err != nil {
		return nil, err
	}
	return addrs, nil
}

func (c *Client) GetTxStatus(ctx context.Context, txHash string) (*TxStatusResponse, error) {
	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	hash := strings.TrimPrefix(txHash, "0x")

	var status TxStatusResponse
	if err := c.get(ctx, fmt.Sprintf("%s/thorchain/tx/status/%s", c.baseURL, hash), &status); err != nil {
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
		return fmt.Errorf("thornode returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
