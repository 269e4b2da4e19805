package engine

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"txcourier/internal/chain"
)

func newTestBuilder(client ChainClient, eip1559 bool) *Builder {
	network := chain.Network{Name: "testnet", ChainID: 1337, EIP1559: eip1559}
	from := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	return NewBuilder(client, NewEstimator(client, 0), network, from)
}

func TestBuildDynamicShape(t *testing.T) {
	client := &fakeClient{
		chainID:  big.NewInt(1337),
		nonce:    5,
		gasPrice: big.NewInt(100),
		rewards:  [][]*big.Int{{big.NewInt(4)}},
	}
	b := newTestBuilder(client, true)

	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	req, err := b.Build(context.Background(), &to, big.NewInt(10), nil)
	require.NoError(t, err)

	require.True(t, req.Dynamic())
	require.Nil(t, req.GasPrice)
	require.Equal(t, "4", req.GasTipCap.String())
	require.Equal(t, "156", req.GasFeeCap.String())
	require.Equal(t, uint64(5), req.Nonce)
	require.Equal(t, "1337", req.ChainID.String())
	require.Zero(t, req.GasLimit)
}

func TestBuildLegacyShape(t *testing.T) {
	client := &fakeClient{
		chainID:  big.NewInt(61),
		nonce:    8,
		gasPrice: big.NewInt(100),
	}
	b := newTestBuilder(client, false)

	req, err := b.Build(context.Background(), nil, nil, nil)
	require.NoError(t, err)

	require.False(t, req.Dynamic())
	require.Nil(t, req.GasTipCap)
	require.Nil(t, req.GasFeeCap)
	require.Equal(t, "150", req.GasPrice.String())
	require.Equal(t, "0", req.Value.String())
}

func TestBuildNonceLookupFailure(t *testing.T) {
	client := &fakeClient{nonceErr: errors.New("connection refused")}
	b := newTestBuilder(client, true)

	_, err := b.Build(context.Background(), nil, big.NewInt(1), nil)
	var chainError *ChainError
	require.ErrorAs(t, err, &chainError)
	require.Contains(t, chainError.Msg, "connection refused")
}

func TestBuildFeeLookupFailure(t *testing.T) {
	client := &fakeClient{
		chainID: big.NewInt(1337),
		histErr: errors.New("fee_history not supported"),
	}
	b := newTestBuilder(client, true)

	_, err := b.Build(context.Background(), nil, big.NewInt(1), nil)
	var chainError *ChainError
	require.ErrorAs(t, err, &chainError)
}
