package chain

import (
	"math/big"
	"strings"
)

// Network describes one EVM network the engine can submit to. Values come from
// configuration and are never mutated after construction.
type Network struct {
	Name     string
	ChainID  uint64
	RPCs     []string
	Explorer string
	EIP1559  bool
}

func (n Network) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(n.ChainID)
}

// TxURL returns the explorer link for a transaction hash, or an empty string
// when no explorer is configured.
func (n Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	base := strings.TrimSuffix(n.Explorer, "/")
	return base + "/tx/" + hash
}
