package erc20

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	result string
	err    error

	method string
	args   []interface{}
}

func (f *fakeCaller) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	f.method = method
	f.args = args
	if f.err != nil {
		return f.err
	}
	*(result.(*string)) = f.result
	return nil
}

func word(v *big.Int) string {
	return hexutil.Encode(common.LeftPadBytes(v.Bytes(), 32))
}

var (
	testToken = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testOwner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func TestBalanceOf(t *testing.T) {
	caller := &fakeCaller{result: word(big.NewInt(123_456))}

	bal, err := BalanceOf(context.Background(), caller, testToken, testOwner)
	require.NoError(t, err)
	require.Equal(t, "123456", bal.String())

	require.Equal(t, "eth_call", caller.method)
	msg := caller.args[0].(map[string]string)
	require.Equal(t, testToken.Hex(), msg["to"])
	require.Equal(t,
		"0x70a08231"+word(new(big.Int).SetBytes(testOwner.Bytes()))[2:],
		msg["data"])
	require.Equal(t, "latest", caller.args[1])
}

func TestBalanceOfQueryError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}
	_, err := BalanceOf(context.Background(), caller, testToken, testOwner)
	require.ErrorContains(t, err, "connection refused")

	_, err = BalanceOf(context.Background(), nil, testToken, testOwner)
	require.Error(t, err)
}

func TestDecimals(t *testing.T) {
	caller := &fakeCaller{result: word(big.NewInt(18))}

	dec, err := Decimals(context.Background(), caller, testToken)
	require.NoError(t, err)
	require.Equal(t, uint8(18), dec)

	msg := caller.args[0].(map[string]string)
	require.Equal(t, "0x313ce567", msg["data"])
}

func TestDecimalsOutOfRange(t *testing.T) {
	caller := &fakeCaller{result: word(big.NewInt(300))}
	_, err := Decimals(context.Background(), caller, testToken)
	require.ErrorContains(t, err, "out of range")
}

func TestTransferData(t *testing.T) {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := TransferData(to, big.NewInt(1_000_000))
	require.NoError(t, err)
	require.Equal(t,
		"0xa9059cbb"+word(new(big.Int).SetBytes(to.Bytes()))[2:]+word(big.NewInt(1_000_000))[2:],
		hexutil.Encode(data))

	_, err = TransferData(to, nil)
	require.Error(t, err)
	_, err = TransferData(to, big.NewInt(-1))
	require.Error(t, err)
}
