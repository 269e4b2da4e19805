package engine

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriorityFeeMeanOfNonZero(t *testing.T) {
	client := &fakeClient{
		rewards: [][]*big.Int{
			{big.NewInt(5)},
			{big.NewInt(0)},
			{big.NewInt(3)},
			{big.NewInt(0)},
		},
	}
	est := NewEstimator(client, 0)

	tip, err := est.PriorityFee(context.Background())
	require.NoError(t, err)
	require.Equal(t, "4", tip.String())
}

func TestPriorityFeeAllZeroWindow(t *testing.T) {
	client := &fakeClient{
		rewards: [][]*big.Int{
			{big.NewInt(0)},
			{big.NewInt(0)},
			{big.NewInt(0)},
		},
	}
	est := NewEstimator(client, 0)

	tip, err := est.PriorityFee(context.Background())
	require.NoError(t, err)
	require.Zero(t, tip.Sign())
}

func TestPriorityFeeEmptyWindow(t *testing.T) {
	client := &fakeClient{rewards: [][]*big.Int{}}
	est := NewEstimator(client, 0)

	tip, err := est.PriorityFee(context.Background())
	require.NoError(t, err)
	require.Zero(t, tip.Sign())
}

func TestPriorityFeeRoundsToNearest(t *testing.T) {
	// mean of {3, 4} is 3.5, ties go to the even neighbor 4
	client := &fakeClient{
		rewards: [][]*big.Int{{big.NewInt(3)}, {big.NewInt(4)}},
	}
	est := NewEstimator(client, 0)

	tip, err := est.PriorityFee(context.Background())
	require.NoError(t, err)
	require.Equal(t, "4", tip.String())

	// mean of {3, 3, 4} is 3.33.., rounded down to 3
	client.rewards = [][]*big.Int{{big.NewInt(3)}, {big.NewInt(3)}, {big.NewInt(4)}}
	tip, err = est.PriorityFee(context.Background())
	require.NoError(t, err)
	require.Equal(t, "3", tip.String())

	// mean of {2, 3} is 2.5, ties go to the even neighbor 2
	client.rewards = [][]*big.Int{{big.NewInt(2)}, {big.NewInt(3)}}
	tip, err = est.PriorityFee(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2", tip.String())
}

func TestRoundDiv(t *testing.T) {
	require.Equal(t, "4", roundDiv(big.NewInt(8), 2).String())  // exact
	require.Equal(t, "4", roundDiv(big.NewInt(11), 3).String()) // 3.67 up
	require.Equal(t, "3", roundDiv(big.NewInt(10), 3).String()) // 3.33 down
	require.Equal(t, "2", roundDiv(big.NewInt(5), 2).String())  // 2.5 tie -> even
	require.Equal(t, "2", roundDiv(big.NewInt(3), 2).String())  // 1.5 tie -> even
}

func TestDynamicFeesComposition(t *testing.T) {
	client := &fakeClient{
		gasPrice: big.NewInt(100),
		rewards:  [][]*big.Int{{big.NewInt(5)}, {big.NewInt(0)}, {big.NewInt(3)}, {big.NewInt(0)}},
	}
	est := NewEstimator(client, 0)

	tip, maxFee, err := est.DynamicFees(context.Background())
	require.NoError(t, err)
	require.Equal(t, "4", tip.String())
	require.Equal(t, "156", maxFee.String())
}

func TestLegacyGasPriceMultiplier(t *testing.T) {
	client := &fakeClient{gasPrice: big.NewInt(1_000_000_000)}
	est := NewEstimator(client, 0)

	price, err := est.LegacyGasPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1500000000", price.String())
}

func TestMulFloat(t *testing.T) {
	require.Equal(t, "156", mulFloat(big.NewInt(104), 1.5).String())
	require.Equal(t, "104", mulFloat(big.NewInt(104), 1.0).String())
	require.Equal(t, "0", mulFloat(nil, 1.5).String())
}
