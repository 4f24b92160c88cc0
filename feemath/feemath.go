// Package feemath holds the pure payout arithmetic of the honorary
// fee distribution: the locked-fraction share curve, the daily cap and
// the proportional per-investor split with dust accounting. Nothing in
// this package touches persistent state.
package feemath

import (
	"github.com/starfndn/honoraryfee-go/safemath"
)

const (
	BasisPointMax = 10_000

	// SecondsPerDay is the crank cooldown between day opens.
	SecondsPerDay = 86_400
)

// EligibleShareBps returns the investor share of a day's distributable
// fees in basis points.
//
// f_locked(t) = lockedTotal(t) / totalAllocation, floored to bps, then
// clamped to maxShareBps. As allocations vest out, lockedTotal shrinks
// and the investor share decays with it; the policy ceiling is never
// exceeded. A zero totalAllocation yields 0.
func EligibleShareBps(lockedTotal, totalAllocation uint64, maxShareBps uint16) (uint16, error) {
	if totalAllocation == 0 {
		return 0, nil
	}
	fLockedBps, err := safemath.MulDiv(lockedTotal, BasisPointMax, totalAllocation)
	if err != nil {
		return 0, err
	}
	if fLockedBps > BasisPointMax {
		fLockedBps = BasisPointMax
	}
	if fLockedBps > uint64(maxShareBps) {
		return maxShareBps, nil
	}
	return uint16(fLockedBps), nil
}

// InvestorPoolAmount returns floor(remaining * eligibleBps / 10000),
// the slice of the remaining distributable amount owed to investors.
func InvestorPoolAmount(remaining uint64, eligibleBps uint16) (uint64, error) {
	return safemath.MulDiv(remaining, uint64(eligibleBps), BasisPointMax)
}

// ApplyDailyCap clamps a requested payout against what is left of the
// daily cap. A cap of 0 means unlimited. Returns the capped amount and
// the excess that was cut off.
func ApplyDailyCap(requested, dailyCap, alreadyDistributed uint64) (capped, excess uint64, err error) {
	if dailyCap == 0 {
		return requested, 0, nil
	}
	remainingCap := uint64(0)
	if dailyCap > alreadyDistributed {
		remainingCap = dailyCap - alreadyDistributed
	}
	capped = requested
	if capped > remainingCap {
		capped = remainingCap
	}
	excess, err = safemath.Sub(requested, capped)
	if err != nil {
		return 0, 0, err
	}
	return capped, excess, nil
}

// ProportionalDistribution splits total across weights by floor
// division. Shares below minThreshold are withheld and accumulated as
// dust; dust also absorbs the floor-rounding loss, so that
//
//	totalPaid + dust == total
//
// holds exactly for any input. An empty or all-zero weight list pays
// nobody and returns the full total as dust. The caller must fold the
// dust back into its carry-over so no value is stranded.
func ProportionalDistribution(total uint64, weights []uint64, minThreshold uint64) (payouts []uint64, totalPaid, dust uint64, err error) {
	if len(weights) == 0 {
		return nil, 0, total, nil
	}

	var totalWeight uint64
	for _, w := range weights {
		if totalWeight, err = safemath.Add(totalWeight, w); err != nil {
			return nil, 0, 0, err
		}
	}
	if totalWeight == 0 {
		return make([]uint64, len(weights)), 0, total, nil
	}

	payouts = make([]uint64, len(weights))
	for i, w := range weights {
		raw, err := safemath.MulDiv(total, w, totalWeight)
		if err != nil {
			return nil, 0, 0, err
		}
		if raw < minThreshold {
			// Withheld share; it stays out of totalPaid and therefore
			// lands in the dust term below.
			continue
		}
		payouts[i] = raw
		if totalPaid, err = safemath.Add(totalPaid, raw); err != nil {
			return nil, 0, 0, err
		}
	}

	// Dust covers both the withheld sub-threshold shares and the
	// floor-rounding loss.
	dust, err = safemath.Sub(total, totalPaid)
	if err != nil {
		return nil, 0, 0, err
	}
	return payouts, totalPaid, dust, nil
}

// DayElapsed reports whether the 24h cooldown has passed since lastTS.
func DayElapsed(lastTS, nowTS int64) bool {
	return nowTS >= lastTS+SecondsPerDay
}
