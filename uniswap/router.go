package uniswap

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lumenwallet/swapper/swap"
)

// universal router command bytes
const (
	cmdV3SwapExactIn  = 0x00
	cmdV3SwapExactOut = 0x01
	cmdSweep          = 0x04
	cmdPayPortion     = 0x06
	cmdWrapETH        = 0x0b
	cmdUnwrapWETH     = 0x0c
)

// recipientRouter is the router's placeholder for its own address.
var recipientRouter = common.HexToAddress("0x0000000000000000000000000000000000000002")

const executeABI = `[{"inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"},{"name":"deadline","type":"uint256"}],"name":"execute","outputs":[],"stateMutability":"payable","type":"function"}]`

const executeDeadline = 30 * time.Minute

var (
	routerABI abi.ABI

	addressType abi.Type
	uint256Type abi.Type
	bytesType   abi.Type
	boolType    abi.Type
)

func init() {
	var err error
	routerABI, err = abi.JSON(strings.NewReader(executeABI))
	if err != nil {
		panic(err)
	}
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytesType, _ = abi.NewType("bytes", "", nil)
	boolType, _ = abi.NewType("bool", "", nil)
}

// v3Path encodes a single-hop path: tokenIn . fee(3 bytes) . tokenOut.
func v3Path(tokenIn, tokenOut common.Address, feeTier uint32) []byte {
	path := make([]byte, 0, 43)
	path = append(path, tokenIn.Bytes()...)
	path = append(path, byte(feeTier>>16), byte(feeTier>>8), byte(feeTier))
	path = append(path, tokenOut.Bytes()...)
	return path
}

// swapPlan is everything the calldata builder needs, resolved from the quote.
type swapPlan struct {
	TokenIn      common.Address
	TokenOut     common.Address
	FeeTier      uint32
	AmountIn     *big.Int // maximum input for exact-out
	AmountOut    *big.Int // minimum output for exact-in, exact amount for exact-out
	Recipient    common.Address
	Mode         swap.Mode
	NativeIn     bool
	NativeOut    bool
	FeeRecipient common.Address
	FeeBps       uint32
}

// encodeExecute assembles the universal router command stream for the plan.
//
// The output side routes through the router itself whenever a portion payout
// or an unwrap has to happen after the swap; otherwise it pays the recipient
// directly.
func encodeExecute(plan swapPlan) ([]byte, error) {
	var commands []byte
	var inputs [][]byte

	payerIsUser := true
	if plan.NativeIn {
		// wrap first; the router then pays the pool from its own balance
		input, err := abi.Arguments{{Type: addressType}, {Type: uint256Type}}.Pack(recipientRouter, plan.AmountIn)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmdWrapETH)
		inputs = append(inputs, input)
		payerIsUser = false
	}

	routeViaRouter := plan.NativeOut || plan.FeeBps > 0
	swapRecipient := plan.Recipient
	if routeViaRouter {
		swapRecipient = recipientRouter
	}

	swapArgs := abi.Arguments{
		{Type: addressType}, {Type: uint256Type}, {Type: uint256Type}, {Type: bytesType}, {Type: boolType},
	}
	switch plan.Mode {
	case swap.ExactOut:
		// exact-out paths are encoded output-first
		input, err := swapArgs.Pack(swapRecipient, plan.AmountOut, plan.AmountIn,
			v3Path(plan.TokenOut, plan.TokenIn, plan.FeeTier), payerIsUser)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmdV3SwapExactOut)
		inputs = append(inputs, input)
	default:
		input, err := swapArgs.Pack(swapRecipient, plan.AmountIn, plan.AmountOut,
			v3Path(plan.TokenIn, plan.TokenOut, plan.FeeTier), payerIsUser)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmdV3SwapExactIn)
		inputs = append(inputs, input)
	}

	if plan.FeeBps > 0 {
		input, err := abi.Arguments{{Type: addressType}, {Type: addressType}, {Type: uint256Type}}.
			Pack(plan.TokenOut, plan.FeeRecipient, big.NewInt(int64(plan.FeeBps)))
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmdPayPortion)
		inputs = append(inputs, input)
	}

	if routeViaRouter {
		// flush the router's remaining output to the recipient
		if plan.NativeOut {
			input, err := abi.Arguments{{Type: addressType}, {Type: uint256Type}}.Pack(plan.Recipient, new(big.Int))
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmdUnwrapWETH)
			inputs = append(inputs, input)
		} else {
			input, err := abi.Arguments{{Type: addressType}, {Type: addressType}, {Type: uint256Type}}.
				Pack(plan.TokenOut, plan.Recipient, new(big.Int))
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmdSweep)
			inputs = append(inputs, input)
		}
	}

	deadline := big.NewInt(time.Now().Add(executeDeadline).Unix())
	data, err := routerABI.Pack("execute", commands, inputs, deadline)
	if err != nil {
		return nil, fmt.Errorf("packing execute: %w", err)
	}
	return data, nil
}
