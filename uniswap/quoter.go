package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lumenwallet/swapper/swap"
)

const quoterV2ABI = `[
{"inputs":[{"components":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"fee","type":"uint24"},{"name":"sqrtPriceLimitX96","type":"uint160"}],"name":"params","type":"tuple"}],"name":"quoteExactInputSingle","outputs":[{"name":"amountOut","type":"uint256"},{"name":"sqrtPriceX96After","type":"uint160"},{"name":"initializedTicksCrossed","type":"uint32"},{"name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"components":[{"name":"tokenIn","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amount","type":"uint256"},{"name":"fee","type":"uint24"},{"name":"sqrtPriceLimitX96","type":"uint160"}],"name":"params","type":"tuple"}],"name":"quoteExactOutputSingle","outputs":[{"name":"amountIn","type":"uint256"},{"name":"sqrtPriceX96After","type":"uint160"},{"name":"initializedTicksCrossed","type":"uint32"},{"name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}]`

var quoterABI abi.ABI

func init() {
	var err error
	quoterABI, err = abi.JSON(strings.NewReader(quoterV2ABI))
	if err != nil {
		panic(err)
	}
}

type quoteExactInputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

type quoteExactOutputParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Amount            *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// poolQuote is a single pool's answer for one fee tier.
type poolQuote struct {
	FeeTier     uint32
	Amount      *big.Int // out for exact-in, in for exact-out
	GasEstimate uint64
}

// quotePool probes one fee tier through QuoterV2. The quoter reverts for
// nonexistent pools; those tiers are skipped by the caller.
func quotePool(ctx context.Context, caller swap.EVMCaller, quoter common.Address, tokenIn, tokenOut common.Address, amount *big.Int, feeTier uint32, mode swap.Mode) (*poolQuote, error) {
	var data []byte
	var err error
	method := "quoteExactInputSingle"
	if mode == swap.ExactOut {
		method = "quoteExactOutputSingle"
		data, err = quoterABI.Pack(method, quoteExactOutputParams{
			TokenIn:           tokenIn,
			TokenOut:          tokenOut,
			Amount:            amount,
			Fee:               big.NewInt(int64(feeTier)),
			SqrtPriceLimitX96: new(big.Int),
		})
	} else {
		data, err = quoterABI.Pack(method, quoteExactInputParams{
			TokenIn:           tokenIn,
			TokenOut:          tokenOut,
			AmountIn:          amount,
			Fee:               big.NewInt(int64(feeTier)),
			SqrtPriceLimitX96: new(big.Int),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	ret, err := caller.CallContract(ctx, ethereum.CallMsg{To: &quoter, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	results, err := quoterABI.Unpack(method, ret)
	if err != nil || len(results) < 4 {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	quoted, ok := results[0].(*big.Int)
	if !ok || quoted.Sign() <= 0 {
		return nil, fmt.Errorf("empty pool quote")
	}
	gasEstimate, _ := results[3].(*big.Int)

	pq := &poolQuote{FeeTier: feeTier, Amount: quoted}
	if gasEstimate != nil && gasEstimate.IsUint64() {
		pq.GasEstimate = gasEstimate.Uint64()
	}
	return pq, nil
}

// bestPool probes every configured fee tier and keeps the best executable
// price: highest output for exact-in, lowest input for exact-out.
func bestPool(ctx context.Context, caller swap.EVMCaller, quoter common.Address, tokenIn, tokenOut common.Address, amount *big.Int, feeTiers []uint32, mode swap.Mode) (*poolQuote, error) {
	var best *poolQuote
	for _, tier := range feeTiers {
		pq, err := quotePool(ctx, caller, quoter, tokenIn, tokenOut, amount, tier, mode)
		if err != nil {
			continue
		}
		if best == nil {
			best = pq
			continue
		}
		if mode == swap.ExactOut {
			if pq.Amount.Cmp(best.Amount) < 0 {
				best = pq
			}
		} else if pq.Amount.Cmp(best.Amount) > 0 {
			best = pq
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no pool for pair", swap.ErrNoQuoteAvailable)
	}
	return best, nil
}
