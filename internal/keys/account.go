package keys

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account holds one signing identity. The private key is kept opaque and must
// never appear in logs or errors.
type Account struct {
	address common.Address
	key     *ecdsa.PrivateKey
}

// FromHex builds an account from a hex-encoded secp256k1 private key, with or
// without the 0x prefix.
func FromHex(hexKey string) (*Account, error) {
	hexKey = strings.TrimSpace(hexKey)
	hexKey = strings.TrimPrefix(hexKey, "0x")
	if hexKey == "" {
		return nil, errors.New("private key is empty")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.New("invalid private key")
	}
	return &Account{
		address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}, nil
}

// FromEnv reads a hex private key from the named environment variable.
func FromEnv(envVar string) (*Account, error) {
	if envVar == "" {
		return nil, errors.New("private key env var is not set")
	}
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil, errors.New("private key env var " + envVar + " is empty")
	}
	return FromHex(raw)
}

func (a *Account) Address() common.Address {
	return a.address
}

// SignTx signs the transaction for the given chain id.
func (a *Account) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if a == nil || a.key == nil {
		return nil, errors.New("account has no private key")
	}
	if chainID == nil {
		return nil, errors.New("chain id is required")
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), a.key)
}
