package approval

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/lumenwallet/swapper/swap"
)

// Permit2Contract is the canonical Permit2 deployment, same on all chains.
const Permit2Contract = "0x000000000022D473030F116dDEE9F6B43aC78BA3"

const (
	// permit granted to the spender, ~30 days
	permitExpiration = 30 * 24 * time.Hour
	// window the caller has to sign and submit
	permitSigDeadline = 30 * time.Minute
)

const permit2AllowanceABI = `[{"inputs":[{"name":"owner","type":"address"},{"name":"token","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"amount","type":"uint160"},{"name":"expiration","type":"uint48"},{"name":"nonce","type":"uint48"}],"stateMutability":"view","type":"function"}]`

var permit2ABI abi.ABI

func init() {
	var err error
	permit2ABI, err = abi.JSON(strings.NewReader(permit2AllowanceABI))
	if err != nil {
		panic(err)
	}
}

// permit2Data reads the owner's current Permit2 nonce for (token, spender)
// and assembles the payload the caller must sign as typed data.
func (e *Engine) permit2Data(ctx context.Context, chain swap.Chain, owner, token, spender common.Address, value *big.Int) (*swap.Permit2Data, error) {
	client, ok := e.clients[chain]
	if !ok {
		return nil, fmt.Errorf("%w: no RPC client for %s", swap.ErrNotSupportedChain, chain)
	}

	permit2Addr := common.HexToAddress(Permit2Contract)
	data, err := permit2ABI.Pack("allowance", owner, token, spender)
	if err != nil {
		return nil, fmt.Errorf("packing permit2 allowance call: %w", err)
	}

	output, err := client.CallContract(ctx, ethereum.CallMsg{To: &permit2Addr, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reading permit2 allowance: %v", swap.ErrNetwork, err)
	}

	values, err := permit2ABI.Unpack("allowance", output)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding permit2 allowance: %v", swap.ErrComputeQuote, err)
	}
	nonce, ok := values[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected permit2 nonce type", swap.ErrComputeQuote)
	}

	return &swap.Permit2Data{
		Token:           token.Hex(),
		Spender:         spender.Hex(),
		Value:           new(big.Int).Set(value),
		Permit2Contract: Permit2Contract,
		Nonce:           nonce.Uint64(),
		SigDeadline:     time.Now().Add(permitSigDeadline).Unix(),
	}, nil
}

// PermitSingleTypedData assembles the EIP-712 PermitSingle message for a
// Permit2 payload. The caller signs it; the engine never does.
func PermitSingleTypedData(p *swap.Permit2Data, chainID *big.Int) apitypes.TypedData {
	expiration := time.Unix(p.SigDeadline, 0).Add(permitExpiration).Unix()

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"PermitSingle": {
				{Name: "details", Type: "PermitDetails"},
				{Name: "spender", Type: "address"},
				{Name: "sigDeadline", Type: "uint256"},
			},
			"PermitDetails": {
				{Name: "token", Type: "address"},
				{Name: "amount", Type: "uint160"},
				{Name: "expiration", Type: "uint48"},
				{Name: "nonce", Type: "uint48"},
			},
		},
		PrimaryType: "PermitSingle",
		Domain: apitypes.TypedDataDomain{
			Name:              "Permit2",
			ChainId:           math.NewHexOrDecimal256(chainID.Int64()),
			VerifyingContract: p.Permit2Contract,
		},
		Message: apitypes.TypedDataMessage{
			"details": map[string]interface{}{
				"token":      p.Token,
				"amount":     p.Value.String(),
				"expiration": fmt.Sprintf("%d", expiration),
				"nonce":      fmt.Sprintf("%d", p.Nonce),
			},
			"spender":     p.Spender,
			"sigDeadline": fmt.Sprintf("%d", p.SigDeadline),
		},
	}
}
