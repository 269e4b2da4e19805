package engine

import (
	"context"
	"math/big"
)

const (
	feeHistoryBlocks     = 25
	feeHistoryPercentile = 20.0

	// Safety headroom applied to gas price, max fee and gas limit to reduce
	// underpriced / out-of-gas rejections.
	defaultSafetyMultiplier = 1.5
)

// Estimator derives gas pricing from live chain state. Nothing is cached:
// every call hits the endpoint so prices can never go stale between
// submissions.
type Estimator struct {
	client     ChainClient
	multiplier float64
}

func NewEstimator(client ChainClient, multiplier float64) *Estimator {
	if multiplier <= 0 {
		multiplier = defaultSafetyMultiplier
	}
	return &Estimator{client: client, multiplier: multiplier}
}

// LegacyGasPrice returns the suggested gas price scaled by the safety
// multiplier, for networks without priority-fee support.
func (e *Estimator) LegacyGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return mulFloat(price, e.multiplier), nil
}

// PriorityFee samples recent reward history at a low percentile and returns
// the mean of the non-zero samples, rounded to the nearest integer with ties
// going to the even neighbor. Blocks with no priority competition are
// skipped; an all-zero window yields 0.
func (e *Estimator) PriorityFee(ctx context.Context) (*big.Int, error) {
	hist, err := e.client.FeeHistory(ctx, feeHistoryBlocks, nil, []float64{feeHistoryPercentile})
	if err != nil {
		return nil, err
	}
	sum := new(big.Int)
	count := 0
	for _, rewards := range hist.Reward {
		if len(rewards) == 0 || rewards[0] == nil || rewards[0].Sign() == 0 {
			continue
		}
		sum.Add(sum, rewards[0])
		count++
	}
	if count == 0 {
		return big.NewInt(0), nil
	}
	return roundDiv(sum, int64(count)), nil
}

// DynamicFees returns the priority-fee pair for an EIP-1559 transaction:
// the tip from reward history and a max fee of (base + tip) scaled by the
// safety multiplier.
func (e *Estimator) DynamicFees(ctx context.Context) (tip, maxFee *big.Int, err error) {
	base, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, err
	}
	tip, err = e.PriorityFee(ctx)
	if err != nil {
		return nil, nil, err
	}
	maxFee = mulFloat(new(big.Int).Add(base, tip), e.multiplier)
	return tip, maxFee, nil
}

// GasLimitMultiplier reports the headroom factor for gas-limit scaling.
func (e *Estimator) GasLimitMultiplier() float64 {
	return e.multiplier
}

func mulFloat(v *big.Int, f float64) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	if f == 1.0 {
		return new(big.Int).Set(v)
	}
	r := new(big.Rat).SetInt(v)
	r.Mul(r, new(big.Rat).SetFloat64(f))
	out := new(big.Int)
	out.Div(r.Num(), r.Denom())
	return out
}

// roundDiv divides sum by n rounding to nearest, ties to even.
func roundDiv(sum *big.Int, n int64) *big.Int {
	den := big.NewInt(n)
	q, r := new(big.Int).QuoRem(sum, den, new(big.Int))
	switch r.Lsh(r, 1).Cmp(den) {
	case 1:
		q.Add(q, big.NewInt(1))
	case 0:
		if q.Bit(0) == 1 {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}
