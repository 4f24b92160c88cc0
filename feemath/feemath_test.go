package feemath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligibleShareBps(t *testing.T) {
	// 60% locked against a 50% policy ceiling clamps to the ceiling.
	bps, err := EligibleShareBps(600_000, 1_000_000, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint16(5000), bps)

	// Below the ceiling the locked fraction rules.
	bps, err = EligibleShareBps(300_000, 1_000_000, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint16(3000), bps)

	// Zero allocation means nobody is eligible.
	bps, err = EligibleShareBps(600_000, 0, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), bps)

	// Locked above the allocation cannot exceed 100%.
	bps, err = EligibleShareBps(2_000_000, 1_000_000, BasisPointMax)
	require.NoError(t, err)
	assert.Equal(t, uint16(BasisPointMax), bps)
}

func TestEligibleShareBpsMonotone(t *testing.T) {
	const totalAllocation = 1_000_000
	prev := uint16(0)
	for locked := uint64(0); locked <= totalAllocation; locked += 37_501 {
		bps, err := EligibleShareBps(locked, totalAllocation, 9000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bps, prev, "share must not decrease as locked grows")
		assert.LessOrEqual(t, bps, uint16(9000))
		prev = bps
	}
}

func TestInvestorPoolAmount(t *testing.T) {
	amount, err := InvestorPoolAmount(10_000, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), amount)

	// Large remaining amounts must not overflow the intermediate.
	amount, err = InvestorPoolAmount(math.MaxUint64/2, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), amount)
}

func TestApplyDailyCap(t *testing.T) {
	// Scenario B: cap 10000, 9000 already out, 2000 requested.
	capped, excess, err := ApplyDailyCap(2000, 10_000, 9000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), capped)
	assert.Equal(t, uint64(1000), excess)

	// Cap of zero is unlimited.
	capped, excess, err = ApplyDailyCap(2000, 0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), capped)
	assert.Equal(t, uint64(0), excess)

	// Cap already exhausted clamps to zero.
	capped, excess, err = ApplyDailyCap(500, 1000, 1500)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), capped)
	assert.Equal(t, uint64(500), excess)
}

func TestApplyDailyCapNeverExceedsRemaining(t *testing.T) {
	for requested := uint64(0); requested < 5000; requested += 321 {
		for already := uint64(0); already < 3000; already += 777 {
			capped, excess, err := ApplyDailyCap(requested, 2000, already)
			require.NoError(t, err)
			if 2000 > already {
				assert.LessOrEqual(t, capped, 2000-already)
			} else {
				assert.Equal(t, uint64(0), capped)
			}
			assert.Equal(t, requested, capped+excess)
		}
	}
}

func TestProportionalDistributionExact(t *testing.T) {
	// Scenario C: weights divide the total evenly.
	payouts, paid, dust, err := ProportionalDistribution(600, []uint64{100, 200, 300}, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{100, 200, 300}, payouts)
	assert.Equal(t, uint64(600), paid)
	assert.Equal(t, uint64(0), dust)
}

func TestProportionalDistributionRounding(t *testing.T) {
	// Scenario D: 10 over three equal weights leaves one unit of dust.
	payouts, paid, dust, err := ProportionalDistribution(10, []uint64{1, 1, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 3, 3}, payouts)
	assert.Equal(t, uint64(9), paid)
	assert.Equal(t, uint64(1), dust)
}

func TestProportionalDistributionThreshold(t *testing.T) {
	// Scenario E: the small share falls below the threshold and is
	// withheld into dust.
	payouts, paid, dust, err := ProportionalDistribution(510, []uint64{10, 500}, 50)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 500}, payouts)
	assert.Equal(t, uint64(500), paid)
	assert.Equal(t, uint64(10), dust)
	assert.Equal(t, uint64(510), paid+dust)
}

func TestProportionalDistributionDegenerate(t *testing.T) {
	payouts, paid, dust, err := ProportionalDistribution(1234, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, payouts)
	assert.Equal(t, uint64(0), paid)
	assert.Equal(t, uint64(1234), dust)

	payouts, paid, dust, err = ProportionalDistribution(1234, []uint64{0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 0, 0}, payouts)
	assert.Equal(t, uint64(0), paid)
	assert.Equal(t, uint64(1234), dust)
}

func TestProportionalDistributionConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		total := rng.Uint64() % 1_000_000_000
		weights := make([]uint64, rng.Intn(20))
		for j := range weights {
			weights[j] = rng.Uint64() % 1_000_000
		}
		threshold := rng.Uint64() % 10_000

		payouts, paid, dust, err := ProportionalDistribution(total, weights, threshold)
		require.NoError(t, err)
		assert.Equal(t, total, paid+dust, "total_paid + dust must equal total_amount")

		var sum uint64
		for _, p := range payouts {
			sum += p
		}
		assert.Equal(t, paid, sum)
	}
}

func TestDayElapsed(t *testing.T) {
	assert.True(t, DayElapsed(0, SecondsPerDay))
	assert.True(t, DayElapsed(100, 100+SecondsPerDay+1))
	assert.False(t, DayElapsed(100, 100+SecondsPerDay-1))
}
