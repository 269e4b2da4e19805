package erc20

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a human decimal amount into token base units.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("amount is empty")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, errors.New("amount must be non-negative")
	}
	parts := strings.SplitN(amount, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > int(decimals) {
		return nil, fmt.Errorf("too many decimal places: %d > %d", len(fracPart), decimals)
	}
	fracPart = fracPart + strings.Repeat("0", int(decimals)-len(fracPart))
	combined := strings.TrimLeft(intPart+fracPart, "0")
	if combined == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, errors.New("invalid number format")
	}
	return v, nil
}

// NormalizeAmount renders base units as a float given the token's decimals.
func NormalizeAmount(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	f := new(big.Float).SetInt(amount)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(f, scale).Float64()
	return out
}

func decodeHexBig(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("hex value is empty")
	}
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		value = value[2:]
	}
	value = strings.TrimLeft(value, "0")
	if value == "" {
		return big.NewInt(0), nil
	}
	if len(value)%2 == 1 {
		value = "0" + value
	}
	v, ok := new(big.Int).SetString(value, 16)
	if !ok {
		return nil, errors.New("invalid hex number")
	}
	return v, nil
}
