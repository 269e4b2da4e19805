package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"txcourier/internal/chain"
)

// Request is one signable transaction in the making. It is assembled fresh
// for every submission; requests are never reused because the nonce must
// advance.
type Request struct {
	From     common.Address
	To       *common.Address
	Nonce    uint64
	Value    *big.Int
	ChainID  *big.Int
	GasLimit uint64 // 0 means estimate at submit time
	Data     []byte

	// Exactly one pricing shape is populated, chosen by the network's
	// priority-fee flag.
	GasPrice  *big.Int
	GasTipCap *big.Int
	GasFeeCap *big.Int
}

// Dynamic reports whether the request carries priority-fee pricing.
func (r *Request) Dynamic() bool {
	return r.GasTipCap != nil && r.GasFeeCap != nil
}

// Builder assembles complete transaction requests from live chain state.
type Builder struct {
	client  ChainClient
	fees    *Estimator
	network chain.Network
	from    common.Address
}

func NewBuilder(client ChainClient, fees *Estimator, network chain.Network, from common.Address) *Builder {
	return &Builder{client: client, fees: fees, network: network, from: from}
}

// Build fetches the sender's pending nonce and the live chain id, then fills
// the pricing shape the network supports. Any lookup failure surfaces as a
// chain-communication error.
func (b *Builder) Build(ctx context.Context, to *common.Address, value *big.Int, data []byte) (*Request, error) {
	if value == nil {
		value = big.NewInt(0)
	}
	nonce, err := b.client.PendingNonceAt(ctx, b.from)
	if err != nil {
		return nil, chainErr("prepare transaction", err)
	}
	chainID, err := b.client.ChainID(ctx)
	if err != nil {
		return nil, chainErr("prepare transaction", err)
	}
	req := &Request{
		From:    b.from,
		To:      to,
		Nonce:   nonce,
		Value:   new(big.Int).Set(value),
		ChainID: chainID,
		Data:    data,
	}
	if b.network.EIP1559 {
		tip, maxFee, err := b.fees.DynamicFees(ctx)
		if err != nil {
			return nil, chainErr("prepare transaction", err)
		}
		req.GasTipCap = tip
		req.GasFeeCap = maxFee
	} else {
		price, err := b.fees.LegacyGasPrice(ctx)
		if err != nil {
			return nil, chainErr("prepare transaction", err)
		}
		req.GasPrice = price
	}
	return req, nil
}
