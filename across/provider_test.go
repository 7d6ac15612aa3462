package across

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/lumenwallet/swapper/swap"
)

func feesServer(t *testing.T, fees SuggestedFeesResponse, status DepositStatusResponse) (*Provider, *url.Values) {
	t.Helper()
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/suggested-fees"):
			captured = r.URL.Query()
			json.NewEncoder(w).Encode(fees)
		case strings.HasSuffix(r.URL.Path, "/deposit/status"):
			json.NewEncoder(w).Encode(status)
		}
	}))
	t.Cleanup(server.Close)
	return NewProvider(server.URL, server.Client()), &captured
}

func bridgeRequest(t *testing.T) *swap.QuoteRequest {
	t.Helper()
	from, err := swap.NewQuoteAsset("ethereum.ETH", 18)
	if err != nil {
		t.Fatal(err)
	}
	to, err := swap.NewQuoteAsset("base.ETH", 18)
	if err != nil {
		t.Fatal(err)
	}
	return &swap.QuoteRequest{
		WalletAddress:      "0x1111111111111111111111111111111111111111",
		DestinationAddress: "0x2222222222222222222222222222222222222222",
		FromAsset:          from,
		ToAsset:            to,
		FromValue:          "1000000000000000000",
	}
}

func validFees() SuggestedFeesResponse {
	var fees SuggestedFeesResponse
	fees.TotalRelayFee.Total = "4000000000000000" // 0.004 ETH
	fees.Timestamp = "1700000000"
	fees.FillDeadline = "1700020000"
	fees.SpokePoolAddress = "0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5"
	fees.ExclusiveRelayer = "0x0000000000000000000000000000000000000000"
	fees.ExpectedFillTimeSec = "12"
	return fees
}

func TestGetQuoteBridging(t *testing.T) {
	provider, captured := feesServer(t, validFees(), DepositStatusResponse{})

	quote, err := provider.GetQuote(context.Background(), bridgeRequest(t))
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	// both legs quoted as the wrapped token
	weth := "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	if captured.Get("inputToken") != weth {
		t.Errorf("inputToken = %s, want WETH", captured.Get("inputToken"))
	}
	if captured.Get("originChainId") != "1" || captured.Get("destinationChainId") != "8453" {
		t.Errorf("chain ids = %s -> %s", captured.Get("originChainId"), captured.Get("destinationChainId"))
	}

	// output is input minus the relay fee, and relayers fill it exactly
	if quote.ToValue.String() != "996000000000000000" {
		t.Errorf("ToValue = %s", quote.ToValue)
	}
	if quote.ToMinValue.Cmp(quote.ToValue) != 0 {
		t.Errorf("bridge fills are exact; ToMinValue = %s", quote.ToMinValue)
	}
	// an exact fill carries no tolerance: min == value only with zero bps
	if quote.SlippageBps != 0 {
		t.Errorf("SlippageBps = %d, want 0 for exact fills", quote.SlippageBps)
	}
	if quote.EtaSeconds != 12 {
		t.Errorf("EtaSeconds = %d", quote.EtaSeconds)
	}
}

func TestGetQuoteAmountTooLow(t *testing.T) {
	fees := validFees()
	fees.IsAmountTooLow = true
	fees.Limits.MinDeposit = "100000000000000000"
	provider, _ := feesServer(t, fees, DepositStatusResponse{})

	if _, err := provider.GetQuote(context.Background(), bridgeRequest(t)); !errors.Is(err, swap.ErrInputAmountTooSmall) {
		t.Errorf("amount too low: %v, want ErrInputAmountTooSmall", err)
	}
}

func TestGetQuoteNonEVMChain(t *testing.T) {
	provider, _ := feesServer(t, validFees(), DepositStatusResponse{})
	req := bridgeRequest(t)
	to, _ := swap.NewQuoteAsset("solana.SOL", 9)
	req.ToAsset = to
	if _, err := provider.GetQuote(context.Background(), req); !errors.Is(err, swap.ErrNotSupportedChain) {
		t.Errorf("solana leg: %v, want ErrNotSupportedChain", err)
	}
}

func TestGetQuoteDataNativeDeposit(t *testing.T) {
	provider, _ := feesServer(t, validFees(), DepositStatusResponse{})

	quote, err := provider.GetQuote(context.Background(), bridgeRequest(t))
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	data, err := provider.GetQuoteData(context.Background(), quote)
	if err != nil {
		t.Fatalf("GetQuoteData: %v", err)
	}

	if data.To != "0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5" {
		t.Errorf("To = %s, want spoke pool", data.To)
	}
	// native deposits carry msg.value
	if data.Value.Cmp(big.NewInt(1e18)) != 0 {
		t.Errorf("Value = %s", data.Value)
	}
	if len(data.Data) < 4 {
		t.Error("depositV3 calldata missing")
	}
	if data.Approval != nil {
		t.Error("native deposit needs no approval")
	}
}

func TestGetQuoteDataTokenDeposit(t *testing.T) {
	provider, _ := feesServer(t, validFees(), DepositStatusResponse{})

	req := bridgeRequest(t)
	usdc := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	from, _ := swap.NewQuoteAsset("ethereum.USDC-"+usdc, 6)
	toUSDC, _ := swap.NewQuoteAsset("base.USDC-0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", 6)
	req.FromAsset = from
	req.ToAsset = toUSDC
	req.FromValue = "5000000000"

	fees := validFees()
	fees.TotalRelayFee.Total = "1000000"
	provider, _ = feesServer(t, fees, DepositStatusResponse{})

	quote, err := provider.GetQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	data, err := provider.GetQuoteData(context.Background(), quote)
	if err != nil {
		t.Fatalf("GetQuoteData: %v", err)
	}
	if data.Value.Sign() != 0 {
		t.Errorf("token deposit Value = %s, want 0", data.Value)
	}
	if data.Approval == nil {
		t.Fatal("token deposit requires approval")
	}
	if data.Approval.Token != usdc {
		t.Errorf("approval token = %s", data.Approval.Token)
	}
	if data.Approval.Spender != "0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5" {
		t.Errorf("approval spender = %s", data.Approval.Spender)
	}
}

func TestGetSwapStatus(t *testing.T) {
	tests := []struct {
		apiStatus string
		want      swap.SwapStatus
	}{
		{"filled", swap.StatusCompleted},
		{"expired", swap.StatusRefunded},
		{"refunded", swap.StatusRefunded},
		{"pending", swap.StatusPending},
	}

	for _, test := range tests {
		provider, _ := feesServer(t, SuggestedFeesResponse{}, DepositStatusResponse{Status: test.apiStatus})
		got, err := provider.GetSwapStatus(context.Background(), swap.Ethereum, "0xdeposit")
		if err != nil {
			t.Fatalf("%s: %v", test.apiStatus, err)
		}
		if got != test.want {
			t.Errorf("%s: status = %v, want %v", test.apiStatus, got, test.want)
		}
	}
}
