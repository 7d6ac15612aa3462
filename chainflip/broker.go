package chainflip

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rpc"
)

// RefundParams bounds the swap on the state chain: if the pool price drops
// below MinPrice for RetryDuration blocks, the deposit refunds to
// RefundAddress instead of executing.
type RefundParams struct {
	RetryDuration uint32                 `json:"retry_duration"`
	RefundAddress string                 `json:"refund_address"`
	MinPrice      *math.HexOrDecimal256  `json:"min_price"`
}

// DCAChannelParams is the broker-side spelling of DCA chunking.
type DCAChannelParams struct {
	NumberOfChunks uint32 `json:"number_of_chunks"`
	ChunkInterval  uint32 `json:"chunk_interval"`
}

// DepositChannel is an open swap deposit channel on the state chain.
type DepositChannel struct {
	Address               string `json:"address"`
	IssuedBlock           uint64 `json:"issued_block"`
	ChannelID             uint64 `json:"channel_id"`
	SourceChainExpiryBloc uint64 `json:"source_chain_expiry_block"`
}

// Broker opens deposit channels through a chainflip broker's JSON-RPC API.
type Broker struct {
	rpc *rpc.Client
}

func NewBroker(endpoint string) (*Broker, error) {
	client, err := rpc.Dial(endpoint)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}
	return &Broker{rpc: client}, nil
}

// RequestDepositAddress opens a swap deposit channel and returns it.
func (b *Broker) RequestDepositAddress(ctx context.Context, src, dest Asset, destinationAddress string, commissionBps uint32, refund RefundParams, dca *DCAChannelParams) (*DepositChannel, error) {
	var channel DepositChannel
	err := b.rpc.CallContext(ctx, &channel, "broker_request_swap_deposit_address",
		src,
		dest,
		destinationAddress,
		commissionBps,
		nil, // channel metadata (CCM), unused
		nil, // boost fee
		nil, // affiliate fees
		refund,
		dca,
	)
	if err != nil {
		return nil, fmt.Errorf("requesting deposit channel: %w", err)
	}
	if channel.Address == "" {
		return nil, fmt.Errorf("broker returned empty deposit address")
	}
	return &channel, nil
}

// minPrice encodes a limit price the way the state chain compares them:
// output over input as a 128.128 fixed-point ratio of smallest units.
func minPrice(minOutput, input *big.Int) *math.HexOrDecimal256 {
	price := new(big.Int).Lsh(minOutput, 128)
	price.Div(price, input)
	return (*math.HexOrDecimal256)(price)
}
