package thorchain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lumenwallet/swapper/swap"
)

func TestThorAssetName(t *testing.T) {
	tests := []struct {
		asset   string
		want    string
		wantErr bool
	}{
		{"ethereum.ETH", "ETH.ETH", false},
		{"bitcoin.BTC", "BTC.BTC", false},
		{"dogecoin.DOGE", "DOGE.DOGE", false},
		{"thorchain.RUNE", "THOR.RUNE", false},
		{"cosmos.ATOM", "GAIA.ATOM", false},
		{
			"ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"ETH.USDC-0XA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48",
			false,
		},
		{"solana.SOL", "", true},
	}

	for _, test := range tests {
		asset, err := swap.ParseAssetID(test.asset)
		if err != nil {
			t.Fatal(err)
		}
		got, err := thorAssetName(asset)
		if test.wantErr {
			if err == nil {
				t.Errorf("thorAssetName(%s): no error", test.asset)
			}
			continue
		}
		if err != nil {
			t.Errorf("thorAssetName(%s): %v", test.asset, err)
			continue
		}
		if got != test.want {
			t.Errorf("thorAssetName(%s) = %q, want %q", test.asset, got, test.want)
		}
	}
}

func TestRescale(t *testing.T) {
	tests := []struct {
		value string
		from  int32
		to    int32
		want  string
	}{
		{"1000000000000000000", 18, 8, "100000000"}, // 1 ETH to thor units
		{"100000000", 8, 18, "1000000000000000000"},
		{"12345678", 8, 8, "12345678"},
		{"1", 18, 8, "0"}, // floors excess precision
		{"150000000", 8, 6, "1500000"},
	}
	for _, test := range tests {
		value, _ := new(big.Int).SetString(test.value, 10)
		if got := rescale(value, test.from, test.to); got.String() != test.want {
			t.Errorf("rescale(%s, %d, %d) = %s, want %s", test.value, test.from, test.to, got, test.want)
		}
	}
}

// testServer serves thornode quote, inbound and status endpoints with
// scripted documents, recording quote query parameters.
func testServer(t *testing.T, quote QuoteResponse, inbound []InboundAddress, status TxStatusResponse) (*Provider, *url.Values) {
	t.Helper()
	var quoteParams url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/thorchain/quote/swap":
			quoteParams = r.URL.Query()
			json.NewEncoder(w).Encode(quote)
		case "/thorchain/inbound_addresses":
			json.NewEncoder(w).Encode(inbound)
		default: // /thorchain/tx/status/...
			json.NewEncoder(w).Encode(status)
		}
	}))
	t.Cleanup(server.Close)
	return NewProvider(server.URL, server.Client()), &quoteParams
}

func btcToEthRequest(t *testing.T, value string) *swap.QuoteRequest {
	t.Helper()
	from, err := swap.NewQuoteAsset("bitcoin.BTC", 8)
	if err != nil {
		t.Fatal(err)
	}
	to, err := swap.NewQuoteAsset("ethereum.ETH", 18)
	if err != nil {
		t.Fatal(err)
	}
	return &swap.QuoteRequest{
		WalletAddress:      "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		DestinationAddress: "0x1111111111111111111111111111111111111111",
		FromAsset:          from,
		ToAsset:            to,
		FromValue:          value,
	}
}

func TestGetQuoteMemoDeposit(t *testing.T) {
	memo := "=:ETH.ETH:0x1111111111111111111111111111111111111111"
	provider, params := testServer(t,
		QuoteResponse{
			InboundAddress:    "bc1qinboundvault0000000000000000000000000",
			Memo:              memo,
			ExpectedAmountOut: "150000000", // 1.5 ETH in 1e8
			OutboundDelaySecs: 720,
		},
		[]InboundAddress{{Chain: "BTC", Address: "bc1qinboundvault", DustThreshold: "10000"}},
		TxStatusResponse{},
	)

	req := btcToEthRequest(t, "10000000") // 0.1 BTC
	req.Options.Fee = &swap.ReferralFees{Thorchain: swap.ReferralFee{Address: "tr", Bps: 50}}

	quote, err := provider.GetQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	// output rescaled from thor 1e8 to ETH 1e18
	if quote.ToValue.String() != "1500000000000000000" {
		t.Errorf("ToValue = %s, want 1.5e18", quote.ToValue)
	}
	if quote.ToMinValue.Cmp(quote.ToValue) >= 0 {
		t.Errorf("ToMinValue %s not below ToValue %s", quote.ToMinValue, quote.ToValue)
	}
	if quote.EtaSeconds != 720 {
		t.Errorf("EtaSeconds = %d, want 720", quote.EtaSeconds)
	}
	if params.Get("affiliate") != "tr" || params.Get("affiliate_bps") != "50" {
		t.Errorf("affiliate params = %v", params)
	}

	// non-EVM origin: the payload is a vault transfer carrying the memo
	data, err := provider.GetQuoteData(context.Background(), quote)
	if err != nil {
		t.Fatalf("GetQuoteData: %v", err)
	}
	if data.To != "bc1qinboundvault0000000000000000000000000" {
		t.Errorf("To = %s", data.To)
	}
	if string(data.Data) != memo {
		t.Errorf("Data = %q, want memo", data.Data)
	}
	if data.Value.String() != "10000000" {
		t.Errorf("Value = %s, want full input", data.Value)
	}
	if data.Approval != nil {
		t.Error("memo deposits need no approval")
	}
}

func TestGetQuoteDustThreshold(t *testing.T) {
	provider, _ := testServer(t,
		QuoteResponse{InboundAddress: "x", Memo: "m", ExpectedAmountOut: "1"},
		[]InboundAddress{{Chain: "BTC", DustThreshold: "10000"}},
		TxStatusResponse{},
	)

	// 0.00005 BTC, below the 10000 sat threshold
	_, err := provider.GetQuote(context.Background(), btcToEthRequest(t, "5000"))
	if !errors.Is(err, swap.ErrInputAmountTooSmall) {
		t.Errorf("below dust: %v, want ErrInputAmountTooSmall", err)
	}
}

func TestGetQuoteHaltedInbound(t *testing.T) {
	provider, _ := testServer(t,
		QuoteResponse{InboundAddress: "x", Memo: "m", ExpectedAmountOut: "1"},
		[]InboundAddress{{Chain: "BTC", Halted: true, DustThreshold: "10000"}},
		TxStatusResponse{},
	)

	_, err := provider.GetQuote(context.Background(), btcToEthRequest(t, "10000000"))
	if !errors.Is(err, swap.ErrNoQuoteAvailable) {
		t.Errorf("halted chain: %v, want ErrNoQuoteAvailable", err)
	}
}

func TestGetQuoteExactOutUnsupported(t *testing.T) {
	provider, _ := testServer(t, QuoteResponse{}, nil, TxStatusResponse{})
	req := btcToEthRequest(t, "10000000")
	req.Mode = swap.ExactOut
	if _, err := provider.GetQuote(context.Background(), req); !errors.Is(err, swap.ErrNotImplemented) {
		t.Errorf("exact out: %v, want ErrNotImplemented", err)
	}
}

func TestEVMDepositData(t *testing.T) {
	provider, _ := testServer(t, QuoteResponse{}, nil, TxStatusResponse{})

	from, _ := swap.NewQuoteAsset("ethereum.ETH", 18)
	to, _ := swap.NewQuoteAsset("bitcoin.BTC", 8)
	quote := &swap.Quote{
		Request: swap.QuoteRequest{
			WalletAddress:      "0x1111111111111111111111111111111111111111",
			DestinationAddress: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			FromAsset:          from,
			ToAsset:            to,
			FromValue:          "1000000000000000000",
		},
		FromValue: big.NewInt(1e18),
	}
	route, _ := json.Marshal(routeData{
		InboundAddress: "0x2222222222222222222222222222222222222222",
		Router:         "0x3333333333333333333333333333333333333333",
		Memo:           "=:BTC.BTC:bc1q...",
		Expiry:         0,
	})
	quote.RouteData = string(route)

	data, err := provider.GetQuoteData(context.Background(), quote)
	if err != nil {
		t.Fatalf("GetQuoteData: %v", err)
	}
	if data.To != "0x3333333333333333333333333333333333333333" {
		t.Errorf("To = %s, want router", data.To)
	}
	// native deposit rides on msg.value
	if data.Value.Cmp(big.NewInt(1e18)) != 0 {
		t.Errorf("Value = %s, want 1e18", data.Value)
	}
	if len(data.Data) < 4 {
		t.Error("calldata missing")
	}
	if data.Approval != nil {
		t.Error("native deposit needs no approval")
	}
	if data.GasLimit == 0 {
		t.Error("gas limit not set")
	}
}

func TestEVMDepositDataToken(t *testing.T) {
	provider, _ := testServer(t, QuoteResponse{}, nil, TxStatusResponse{})

	from, _ := swap.NewQuoteAsset("ethereum.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6)
	to, _ := swap.NewQuoteAsset("bitcoin.BTC", 8)
	quote := &swap.Quote{
		Request: swap.QuoteRequest{
			WalletAddress:      "0x1111111111111111111111111111111111111111",
			DestinationAddress: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
			FromAsset:          from,
			ToAsset:            to,
			FromValue:          "5000000",
		},
		FromValue: big.NewInt(5000000),
	}
	route, _ := json.Marshal(routeData{
		InboundAddress: "0x2222222222222222222222222222222222222222",
		Router:         "0x3333333333333333333333333333333333333333",
		Memo:           "=:BTC.BTC:bc1q...",
	})
	quote.RouteData = string(route)

	data, err := provider.GetQuoteData(context.Background(), quote)
	if err != nil {
		t.Fatalf("GetQuoteData: %v", err)
	}
	// tokens move via transferFrom, not msg.value
	if data.Value.Sign() != 0 {
		t.Errorf("Value = %s, want 0", data.Value)
	}
	if data.Approval == nil {
		t.Fatal("token deposit requires approval")
	}
	if data.Approval.Spender != "0x3333333333333333333333333333333333333333" {
		t.Errorf("approval spender = %s, want router", data.Approval.Spender)
	}
	if data.Approval.Value.Cmp(big.NewInt(5000000)) != 0 {
		t.Errorf("approval value = %s", data.Approval.Value)
	}
}

func TestGetSwapStatus(t *testing.T) {
	completed := TxStage{Completed: true}
	pending := TxStage{Completed: false}

	tests := []struct {
		name   string
		stages TxStatusResponse
		want   swap.SwapStatus
	}{
		{"outbound signed", withStages(nil, &completed), swap.StatusCompleted},
		{"outbound pending", withStages(&completed, &pending), swap.StatusPending},
		{"native swap finalised", withStages(&completed, nil), swap.StatusCompleted},
		{"nothing yet", withStages(nil, nil), swap.StatusPending},
	}

	for _, test := range tests {
		provider, _ := testServer(t, QuoteResponse{}, nil, test.stages)
		got, err := provider.GetSwapStatus(context.Background(), swap.Bitcoin, "ABCD")
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("%s: status = %v, want %v", test.name, got, test.want)
		}
	}
}

func withStages(swapFinalised, outboundSigned *TxStage) TxStatusResponse {
	var status TxStatusResponse
	status.Stages.SwapFinalised = swapFinalised
	status.Stages.OutboundSigned = outboundSigned
	return status
}

func TestRateLimitHonorsContext(t *testing.T) {
	client := NewClient("", http.DefaultClient)

	// the first slot is immediate
	if err := client.rateLimit(context.Background()); err != nil {
		t.Fatalf("first slot: %v", err)
	}

	// the second slot is a second out; a cancelled context must not sit
	// through that wait
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := client.rateLimit(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled wait: %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("cancelled wait blocked for %s", elapsed)
	}
}
