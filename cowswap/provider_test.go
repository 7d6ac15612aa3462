package cowswap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumenwallet/swapper/swap"
)

func TestBuildAppData(t *testing.T) {
	doc, hash, err := buildAppData(nil)
	if err != nil {
		t.Fatalf("buildAppData: %v", err)
	}
	if !strings.Contains(doc, appCode) {
		t.Errorf("doc missing app code: %s", doc)
	}
	if strings.Contains(doc, "partnerFee") {
		t.Errorf("no fee configured but doc has partnerFee: %s", doc)
	}
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		t.Errorf("hash = %q", hash)
	}

	// deterministic: same input, same hash
	_, hash2, _ := buildAppData(nil)
	if hash != hash2 {
		t.Errorf("hash not deterministic: %s vs %s", hash, hash2)
	}

	fees := &swap.ReferralFees{EVM: swap.ReferralFee{Address: "0x1111111111111111111111111111111111111111", Bps: 50}}
	feeDoc, feeHash, err := buildAppData(fees)
	if err != nil {
		t.Fatalf("buildAppData with fee: %v", err)
	}
	if !strings.Contains(feeDoc, "partnerFee") {
		t.Errorf("fee doc missing partnerFee: %s", feeDoc)
	}
	if feeHash == hash {
		t.Error("fee doc hashed identically to plain doc")
	}

	bad := &swap.ReferralFees{EVM: swap.ReferralFee{Address: "nope", Bps: 50}}
	if _, _, err := buildAppData(bad); !errors.Is(err, swap.ErrInvalidAddress) {
		t.Errorf("bad recipient: %v, want ErrInvalidAddress", err)
	}
}

func newQuoteServer(t *testing.T, quote OrderParams) (*Provider, *QuoteRequest) {
	t.Helper()
	var captured QuoteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/quote"):
			json.NewDecoder(r.Body).Decode(&captured)
			json.NewEncoder(w).Encode(QuoteResult{Quote: quote})
		case strings.HasSuffix(r.URL.Path, "/orders"):
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode("0xorderuid")
		}
	}))
	t.Cleanup(server.Close)
	return NewProvider(server.URL, server.Client()), &captured
}

func sellRequest(t *testing.T) *swap.QuoteRequest {
	t.Helper()
	from, err := swap.NewQuoteAsset("ethereum.ETH", 18)
	if err != nil {
		t.Fatal(err)
	}
	to, err := swap.NewQuoteAsset("ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6)
	if err != nil {
		t.Fatal(err)
	}
	return &swap.QuoteRequest{
		WalletAddress:      "0x1111111111111111111111111111111111111111",
		DestinationAddress: "0x1111111111111111111111111111111111111111",
		FromAsset:          from,
		ToAsset:            to,
		FromValue:          "1000000000000000000",
	}
}

func TestGetQuoteSell(t *testing.T) {
	provider, captured := newQuoteServer(t, OrderParams{
		SellToken:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		BuyToken:   "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		SellAmount: "999000000000000000",
		BuyAmount:  "3000000000",
		FeeAmount:  "1000000000000000",
		Kind:       "sell",
	})

	quote, err := provider.GetQuote(context.Background(), sellRequest(t))
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	// native sell leg is quoted as WETH
	if captured.SellToken != "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2" {
		t.Errorf("sellToken = %s, want WETH", captured.SellToken)
	}
	if captured.Kind != "sell" {
		t.Errorf("kind = %s", captured.Kind)
	}
	if captured.SigningScheme != "presign" {
		t.Errorf("signingScheme = %s", captured.SigningScheme)
	}

	if quote.FromValue.String() != "1000000000000000000" {
		t.Errorf("FromValue = %s, want the request amount", quote.FromValue)
	}
	if quote.ToValue.String() != "3000000000" {
		t.Errorf("ToValue = %s", quote.ToValue)
	}
	if quote.ToMinValue.Cmp(quote.ToValue) >= 0 {
		t.Errorf("ToMinValue %s not below ToValue %s", quote.ToMinValue, quote.ToValue)
	}
}

func TestGetQuoteBuy(t *testing.T) {
	provider, captured := newQuoteServer(t, OrderParams{
		SellToken:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		BuyToken:   "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		SellAmount: "1000000000000000000",
		BuyAmount:  "3000000000",
		FeeAmount:  "2000000000000000",
		Kind:       "buy",
	})

	req := sellRequest(t)
	req.Mode = swap.ExactOut
	req.FromValue = "3000000000"

	quote, err := provider.GetQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if captured.Kind != "buy" {
		t.Errorf("kind = %s, want buy", captured.Kind)
	}
	// required input includes the protocol fee
	if quote.FromValue.String() != "1002000000000000000" {
		t.Errorf("FromValue = %s, want sell+fee", quote.FromValue)
	}
	// output side is fixed for exact-out
	if quote.ToMinValue.Cmp(quote.ToValue) != 0 {
		t.Errorf("exact-out ToMinValue %s != ToValue %s", quote.ToMinValue, quote.ToValue)
	}
}

func TestGetQuoteDataSubmitsPresignOrder(t *testing.T) {
	provider, _ := newQuoteServer(t, OrderParams{
		SellToken:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		BuyToken:   "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		SellAmount: "999000000000000000",
		BuyAmount:  "3000000000",
		FeeAmount:  "1000000000000000",
		Kind:       "sell",
	})
	quote, err := provider.GetQuote(context.Background(), sellRequest(t))
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	data, err := provider.GetQuoteData(context.Background(), quote)
	if err != nil {
		t.Fatalf("GetQuoteData: %v", err)
	}
	if data.To != SettlementContract {
		t.Errorf("To = %s, want settlement contract", data.To)
	}
	if data.Value.Sign() != 0 {
		t.Errorf("Value = %s, want 0", data.Value)
	}
	if len(data.Data) < 4 {
		t.Error("setPreSignature calldata missing")
	}
	if data.Approval == nil {
		t.Fatal("sell token approval missing")
	}
	if data.Approval.Spender != VaultRelayer {
		t.Errorf("approval spender = %s, want vault relayer", data.Approval.Spender)
	}
}

func TestGetSwapStatus(t *testing.T) {
	tests := []struct {
		apiStatus string
		want      swap.SwapStatus
	}{
		{"fulfilled", swap.StatusCompleted},
		{"cancelled", swap.StatusFailed},
		{"expired", swap.StatusFailed},
		{"open", swap.StatusPending},
		{"presignaturePending", swap.StatusPending},
	}

	for _, test := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": test.apiStatus})
		}))
		provider := NewProvider(server.URL, server.Client())
		got, err := provider.GetSwapStatus(context.Background(), swap.Ethereum, "0xorderuid")
		server.Close()
		if err != nil {
			t.Fatalf("%s: %v", test.apiStatus, err)
		}
		if got != test.want {
			t.Errorf("%s: status = %v, want %v", test.apiStatus, got, test.want)
		}
	}
}

func TestUnsupportedChain(t *testing.T) {
	provider := NewProvider("", http.DefaultClient)
	req := sellRequest(t)
	from, _ := swap.NewQuoteAsset("linea.ETH", 18)
	req.FromAsset = from
	if _, err := provider.GetQuote(context.Background(), req); !errors.Is(err, swap.ErrNotSupportedChain) {
		t.Errorf("linea: %v, want ErrNotSupportedChain", err)
	}
}
