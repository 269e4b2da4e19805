// Package erc20 provides read-only token queries over raw eth_call and the
// calldata for token transfers, outside the submission engine's core path.
package erc20

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	selectorBalanceOf = mustSelector("0x70a08231")
	selectorDecimals  = mustSelector("0x313ce567")
	selectorTransfer  = mustSelector("0xa9059cbb")
)

// Caller is the raw request surface the queries need. *rpc.Client
// satisfies it.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

func BalanceOf(ctx context.Context, caller Caller, token, owner common.Address) (*big.Int, error) {
	data := append([]byte{}, selectorBalanceOf...)
	data = append(data, encodeAddress(owner)...)
	out, err := call(ctx, caller, token, data)
	if err != nil {
		return nil, err
	}
	return decodeHexBig(out)
}

func Decimals(ctx context.Context, caller Caller, token common.Address) (uint8, error) {
	out, err := call(ctx, caller, token, append([]byte{}, selectorDecimals...))
	if err != nil {
		return 0, err
	}
	v, err := decodeHexBig(out)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || v.BitLen() > 8 {
		return 0, fmt.Errorf("decimals out of range: %s", v.String())
	}
	return uint8(v.Uint64()), nil
}

// TransferData builds the calldata for transfer(address,uint256).
func TransferData(to common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, errors.New("amount must be non-negative")
	}
	data := append([]byte{}, selectorTransfer...)
	data = append(data, encodeAddress(to)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data, nil
}

func call(ctx context.Context, caller Caller, to common.Address, data []byte) (string, error) {
	if caller == nil {
		return "", errors.New("rpc caller is nil")
	}
	msg := map[string]string{
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}
	var out string
	if err := caller.CallContext(ctx, &out, "eth_call", msg, "latest"); err != nil {
		return "", err
	}
	return out, nil
}

func encodeAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func mustSelector(hex string) []byte {
	b, err := hexutil.Decode(hex)
	if err != nil {
		panic(err)
	}
	if len(b) != 4 {
		panic("selector must be 4 bytes")
	}
	return b
}
