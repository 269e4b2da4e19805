package keys

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// Well-known Anvil/Hardhat development key, account 0.
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestFromHexDerivesAddress(t *testing.T) {
	acct, err := FromHex(devKey)
	require.NoError(t, err)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", acct.Address().Hex())

	withPrefix, err := FromHex("0x" + devKey)
	require.NoError(t, err)
	require.Equal(t, acct.Address(), withPrefix.Address())
}

func TestFromHexRejectsGarbage(t *testing.T) {
	_, err := FromHex("")
	require.Error(t, err)
	_, err = FromHex("nothex")
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TXCOURIER_TEST_KEY", devKey)
	acct, err := FromEnv("TXCOURIER_TEST_KEY")
	require.NoError(t, err)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", acct.Address().Hex())

	_, err = FromEnv("TXCOURIER_TEST_KEY_MISSING")
	require.Error(t, err)
}

func TestSignTxRecoversSender(t *testing.T) {
	acct, err := FromHex(devKey)
	require.NoError(t, err)

	chainID := big.NewInt(1337)
	to := acct.Address()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     3,
		Gas:       21000,
		GasFeeCap: big.NewInt(2_000_000_000),
		GasTipCap: big.NewInt(100_000_000),
		To:        &to,
		Value:     big.NewInt(1),
	})
	signed, err := acct.SignTx(tx, chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	require.Equal(t, acct.Address(), from)
}
