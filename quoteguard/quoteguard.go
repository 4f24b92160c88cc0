// Package quoteguard enforces the quote-only invariant of the
// honorary position: the position must be shaped so it can only ever
// accrue fees in the configured quote mint, and every actual claim is
// re-checked for base-side amounts because pool state drifts between
// the preflight and the claim.
package quoteguard

import (
	"errors"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrBaseFeesDetected   = errors.New("quoteguard: position range would accrue base token fees")
	ErrBaseFeesInClaim    = errors.New("quoteguard: base token fees detected in claim")
	ErrInvalidTokenOrder  = errors.New("quoteguard: invalid token order, quote mint not identified")
	ErrInvalidQuoteMint   = errors.New("quoteguard: quote mint does not belong to pool")
	ErrPoolNotInitialized = errors.New("quoteguard: pool not initialized")
)

// PoolInfo is the slice of cp-amm pool state the validator needs.
// Sqrt prices are Q64.64 fixed point, as stored on chain.
type PoolInfo struct {
	TokenAMint solana.PublicKey
	TokenBMint solana.PublicKey
	SqrtPrice  *big.Int
}

// PositionRange is a proposed position's price band, Q64.64.
type PositionRange struct {
	SqrtMinPrice *big.Int
	SqrtMaxPrice *big.Int
}

// ClaimedFees reports a fee claim broken down per pool side.
type ClaimedFees struct {
	TokenAAmount uint64
	TokenBAmount uint64
}

// QuoteIsTokenA reports which pool side carries the quote mint.
// ErrInvalidTokenOrder when the two mints are equal,
// ErrInvalidQuoteMint when neither side matches.
func QuoteIsTokenA(pool PoolInfo, quoteMint solana.PublicKey) (bool, error) {
	if pool.TokenAMint.Equals(pool.TokenBMint) {
		return false, ErrInvalidTokenOrder
	}
	switch {
	case pool.TokenAMint.Equals(quoteMint):
		return true, nil
	case pool.TokenBMint.Equals(quoteMint):
		return false, nil
	default:
		return false, ErrInvalidQuoteMint
	}
}

// ValidatePosition is the position-time check. A concentrated position
// accrues token A fees while price trades inside or above its band and
// token B fees while price trades inside or below it, so the band must
// sit entirely on the single-sided side of the current price:
//
//	quote = token A: the whole band below the current sqrt price
//	quote = token B: the whole band above the current sqrt price
//
// Anything else can hand the position base fees and is rejected.
func ValidatePosition(pool PoolInfo, rng PositionRange, quoteMint solana.PublicKey) error {
	if pool.SqrtPrice == nil || pool.SqrtPrice.Sign() <= 0 {
		return ErrPoolNotInitialized
	}
	if rng.SqrtMinPrice == nil || rng.SqrtMaxPrice == nil ||
		rng.SqrtMinPrice.Sign() <= 0 || rng.SqrtMaxPrice.Cmp(rng.SqrtMinPrice) <= 0 {
		return ErrBaseFeesDetected
	}

	quoteIsA, err := QuoteIsTokenA(pool, quoteMint)
	if err != nil {
		return err
	}

	if quoteIsA {
		// Band strictly below current price.
		if rng.SqrtMaxPrice.Cmp(pool.SqrtPrice) > 0 {
			return ErrBaseFeesDetected
		}
		return nil
	}
	// Band strictly above current price.
	if rng.SqrtMinPrice.Cmp(pool.SqrtPrice) < 0 {
		return ErrBaseFeesDetected
	}
	return nil
}

// ValidateClaim is the claim-time check: any nonzero amount on the
// base side aborts the distribution. It runs on every claim regardless
// of the position-time check.
func ValidateClaim(claim ClaimedFees, quoteIsTokenA bool) error {
	baseAmount := claim.TokenAAmount
	if quoteIsTokenA {
		baseAmount = claim.TokenBAmount
	}
	if baseAmount > 0 {
		return ErrBaseFeesInClaim
	}
	return nil
}

// QuoteAmount extracts the quote-side amount of a claim.
func QuoteAmount(claim ClaimedFees, quoteIsTokenA bool) uint64 {
	if quoteIsTokenA {
		return claim.TokenAAmount
	}
	return claim.TokenBAmount
}
