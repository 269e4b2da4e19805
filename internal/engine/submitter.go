package engine

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"txcourier/internal/keys"
)

// Submitter signs assembled requests and broadcasts them.
type Submitter struct {
	client  ChainClient
	account *keys.Account
	log     *slog.Logger
	gasMult float64
}

func NewSubmitter(client ChainClient, account *keys.Account, log *slog.Logger, gasMult float64) *Submitter {
	if gasMult <= 0 {
		gasMult = defaultSafetyMultiplier
	}
	return &Submitter{client: client, account: account, log: log, gasMult: gasMult}
}

// Submit estimates gas when the request carries none, signs and broadcasts.
// A broadcast rejection whose normalized message is the node's "already
// known" signal means a peer already accepted the transaction: Submit logs it
// and reports success with a zero hash. The raw signed envelope is discarded;
// only the hash is kept for polling.
func (s *Submitter) Submit(ctx context.Context, req *Request) (common.Hash, error) {
	if req.GasLimit == 0 {
		gas, err := s.client.EstimateGas(ctx, callMsg(req))
		if err != nil {
			return common.Hash{}, chainErr("estimate gas", err)
		}
		req.GasLimit = scaleGas(gas, s.gasMult)
	}

	signed, err := s.account.SignTx(materialize(req), req.ChainID)
	if err != nil {
		return common.Hash{}, chainErr("sign transaction", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		if normalizeError(err) == msgAlreadyKnown {
			s.log.Warn("node reported an error but the transaction was accepted",
				"from", req.From.Hex(), "nonce", req.Nonce)
			return common.Hash{}, nil
		}
		return common.Hash{}, chainErr("send transaction", err)
	}
	return signed.Hash(), nil
}

func materialize(req *Request) *types.Transaction {
	if req.Dynamic() {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   req.ChainID,
			Nonce:     req.Nonce,
			GasTipCap: req.GasTipCap,
			GasFeeCap: req.GasFeeCap,
			Gas:       req.GasLimit,
			To:        req.To,
			Value:     req.Value,
			Data:      req.Data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		GasPrice: req.GasPrice,
		Gas:      req.GasLimit,
		To:       req.To,
		Value:    req.Value,
		Data:     req.Data,
	})
}

func callMsg(req *Request) ethereum.CallMsg {
	return ethereum.CallMsg{
		From:      req.From,
		To:        req.To,
		Value:     req.Value,
		Data:      req.Data,
		GasPrice:  req.GasPrice,
		GasTipCap: req.GasTipCap,
		GasFeeCap: req.GasFeeCap,
	}
}

func scaleGas(gas uint64, mult float64) uint64 {
	if mult <= 0 {
		return gas
	}
	adjusted := uint64(float64(gas) * mult)
	if adjusted < gas {
		return gas
	}
	return adjusted
}
