// Package approval determines the authorization a wallet needs before a swap
// contract may move its tokens: nothing, a standalone ERC20 approval, or a
// Permit2 typed-data payload to sign off-chain. The engine only reads chain
// state and assembles payloads; it never signs, sends, or caches results.
package approval

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lumenwallet/swapper/addr"
	"github.com/lumenwallet/swapper/swap"
)

const erc20AllowanceABI = `[{"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var erc20ABI abi.ABI

func init() {
	var err error
	erc20ABI, err = abi.JSON(strings.NewReader(erc20AllowanceABI))
	if err != nil {
		panic(err)
	}
}

// Engine reads allowances through per-chain read-only node clients.
type Engine struct {
	clients map[swap.Chain]swap.EVMCaller
	// permit2Chains marks chains where Permit2 authorization is offered
	// instead of a plain approval when the spender is the Permit2 contract.
	permit2Chains map[swap.Chain]bool
}

func NewEngine(clients map[swap.Chain]swap.EVMCaller) *Engine {
	permit2Chains := make(map[swap.Chain]bool)
	for chain := range clients {
		permit2Chains[chain] = true
	}
	return &Engine{clients: clients, permit2Chains: permit2Chains}
}

// CheckApproval compares the owner's current on-chain allowance against the
// required value. Re-running with no intervening allowance change yields the
// identical result.
func (e *Engine) CheckApproval(ctx context.Context, owner, token, spender string, value *big.Int, chain swap.Chain) (swap.ApprovalType, error) {
	if !chain.IsEVM() {
		// non-EVM execution models carry authorization inside the
		// transaction itself
		return swap.ApprovalType{}, nil
	}

	ownerAddr, err := addr.DecodeEVM(owner)
	if err != nil {
		return swap.ApprovalType{}, err
	}
	tokenAddr, err := addr.DecodeEVM(token)
	if err != nil {
		return swap.ApprovalType{}, err
	}
	spenderAddr, err := addr.DecodeEVM(spender)
	if err != nil {
		return swap.ApprovalType{}, err
	}
	if value == nil || value.Sign() <= 0 {
		return swap.ApprovalType{}, fmt.Errorf("%w: approval value must be positive", swap.ErrInvalidAmount)
	}

	allowance, err := e.Allowance(ctx, chain, ownerAddr, tokenAddr, spenderAddr)
	if err != nil {
		return swap.ApprovalType{}, err
	}
	if allowance.Cmp(value) >= 0 {
		return swap.ApprovalType{}, nil
	}

	if e.permit2Chains[chain] && strings.EqualFold(spender, Permit2Contract) {
		permit, err := e.permit2Data(ctx, chain, ownerAddr, tokenAddr, spenderAddr, value)
		if err != nil {
			return swap.ApprovalType{}, err
		}
		return swap.ApprovalType{Permit2: permit}, nil
	}

	return swap.ApprovalType{Approve: &swap.ApprovalData{
		Token:   token,
		Spender: spender,
		Value:   new(big.Int).Set(value),
	}}, nil
}

// Allowance reads ERC20 allowance(owner, spender) on the given chain.
func (e *Engine) Allowance(ctx context.Context, chain swap.Chain, owner, token, spender common.Address) (*big.Int, error) {
	client, ok := e.clients[chain]
	if !ok {
		return nil, fmt.Errorf("%w: no RPC client for %s", swap.ErrNotSupportedChain, chain)
	}

	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("packing allowance call: %w", err)
	}

	output, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reading allowance: %v", swap.ErrNetwork, err)
	}

	return new(big.Int).SetBytes(output), nil
}
