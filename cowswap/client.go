package cowswap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client speaks the CoW Protocol order book API for one network.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// QuoteRequest is the POST body for /api/v1/quote.
type QuoteRequest struct {
	SellToken           string `json:"sellToken"`
	BuyToken            string `json:"buyToken"`
	Receiver            string `json:"receiver"`
	SellAmountBeforeFee string `json:"sellAmountBeforeFee,omitempty"`
	BuyAmountAfterFee   string `json:"buyAmountAfterFee,omitempty"`
	Kind                string `json:"kind"`
	From                string `json:"from"`
	AppData             string `json:"appData"`
	AppDataHash         string `json:"appDataHash"`
	SigningScheme       string `json:"signingScheme"`
}

// OrderParams is the quoted order embedded in a quote response and reused
// verbatim for submission.
type OrderParams struct {
	SellToken         string `json:"sellToken"`
	BuyToken          string `json:"buyToken"`
	Receiver          string `json:"receiver"`
	SellAmount        string `json:"sellAmount"`
	BuyAmount         string `json:"buyAmount"`
	ValidTo           uint32 `json:"validTo"`
	AppData           string `json:"appData"`
	AppDataHash       string `json:"appDataHash,omitempty"`
	FeeAmount         string `json:"feeAmount"`
	Kind              string `json:"kind"`
	PartiallyFillable bool   `json:"partiallyFillable"`
	SellTokenBalance  string `json:"sellTokenBalance"`
	BuyTokenBalance   string `json:"buyTokenBalance"`
}

// QuoteResult is the response from /api/v1/quote.
type QuoteResult struct {
	Quote      OrderParams `json:"quote"`
	From       string      `json:"from"`
	Expiration string      `json:"expiration"`
	ID         int64       `json:"id"`
}

// OrderSubmission is the POST body for /api/v1/orders.
type OrderSubmission struct {
	OrderParams
	SigningScheme string `json:"signingScheme"`
	Signature     string `json:"signature"`
	From          string `json:"from"`
}

// GetQuote requests a quote from the order book.
func (c *Client) GetQuote(ctx context.Context, apiBase string, req QuoteRequest) (*QuoteResult, error) {
	var result QuoteResult
	if err := c.post(ctx, apiBase+"/quote", req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitPresignOrder places an order with the presign signing scheme. The
// order only becomes live once the owner calls setPreSignature on the
// settlement contract. Returns the order UID.
func (c *Client) SubmitPresignOrder(ctx context.Context, apiBase string, order OrderParams, from string) (string, error) {
	submission := OrderSubmission{
		OrderParams:   order,
		SigningScheme: "presign",
		Signature:     "0x",
		From:          from,
	}

	var orderUID string
	if err := c.post(ctx, apiBase+"/orders", submission, http.StatusCreated, &orderUID); err != nil {
		return "", err
	}
	return orderUID, nil
}

// OrderStatus fetches the order book status for an order UID. One of:
// "presignaturePending", "open", "fulfilled", "cancelled", "expired".
func (c *Client) OrderStatus(ctx context.Context, apiBase, orderUID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/orders/%s", apiBase, orderUID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching order status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("order status API returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding order status: %w", err)
	}
	return result.Status, nil
}

func (c *Client) post(ctx context.Context, url string, payload interface{}, wantStatus int, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
