package quoteguard

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mintA = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintB = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func q64(v int64) *big.Int {
	return new(big.Int).Lsh(big.NewInt(v), 64)
}

func pool(sqrtPrice *big.Int) PoolInfo {
	return PoolInfo{TokenAMint: mintA, TokenBMint: mintB, SqrtPrice: sqrtPrice}
}

func TestQuoteIsTokenA(t *testing.T) {
	isA, err := QuoteIsTokenA(pool(q64(100)), mintA)
	require.NoError(t, err)
	assert.True(t, isA)

	isA, err = QuoteIsTokenA(pool(q64(100)), mintB)
	require.NoError(t, err)
	assert.False(t, isA)

	_, err = QuoteIsTokenA(pool(q64(100)), solana.SystemProgramID)
	assert.ErrorIs(t, err, ErrInvalidQuoteMint)

	_, err = QuoteIsTokenA(PoolInfo{TokenAMint: mintA, TokenBMint: mintA, SqrtPrice: q64(100)}, mintA)
	assert.ErrorIs(t, err, ErrInvalidTokenOrder)
}

func TestValidatePositionQuoteIsA(t *testing.T) {
	p := pool(q64(100))

	// Band entirely below price: accepted.
	err := ValidatePosition(p, PositionRange{SqrtMinPrice: q64(10), SqrtMaxPrice: q64(90)}, mintA)
	assert.NoError(t, err)

	// Band touching the current price exactly is still single-sided.
	err = ValidatePosition(p, PositionRange{SqrtMinPrice: q64(10), SqrtMaxPrice: q64(100)}, mintA)
	assert.NoError(t, err)

	// Band straddling the price: rejected.
	err = ValidatePosition(p, PositionRange{SqrtMinPrice: q64(90), SqrtMaxPrice: q64(110)}, mintA)
	assert.ErrorIs(t, err, ErrBaseFeesDetected)

	// Band entirely above: rejected, it would accrue token B.
	err = ValidatePosition(p, PositionRange{SqrtMinPrice: q64(110), SqrtMaxPrice: q64(120)}, mintA)
	assert.ErrorIs(t, err, ErrBaseFeesDetected)
}

func TestValidatePositionQuoteIsB(t *testing.T) {
	p := pool(q64(100))

	err := ValidatePosition(p, PositionRange{SqrtMinPrice: q64(110), SqrtMaxPrice: q64(120)}, mintB)
	assert.NoError(t, err)

	err = ValidatePosition(p, PositionRange{SqrtMinPrice: q64(90), SqrtMaxPrice: q64(110)}, mintB)
	assert.ErrorIs(t, err, ErrBaseFeesDetected)

	err = ValidatePosition(p, PositionRange{SqrtMinPrice: q64(10), SqrtMaxPrice: q64(90)}, mintB)
	assert.ErrorIs(t, err, ErrBaseFeesDetected)
}

func TestValidatePositionDegenerate(t *testing.T) {
	err := ValidatePosition(pool(nil), PositionRange{SqrtMinPrice: q64(1), SqrtMaxPrice: q64(2)}, mintA)
	assert.ErrorIs(t, err, ErrPoolNotInitialized)

	err = ValidatePosition(pool(big.NewInt(0)), PositionRange{SqrtMinPrice: q64(1), SqrtMaxPrice: q64(2)}, mintA)
	assert.ErrorIs(t, err, ErrPoolNotInitialized)

	// Inverted band.
	err = ValidatePosition(pool(q64(100)), PositionRange{SqrtMinPrice: q64(50), SqrtMaxPrice: q64(40)}, mintA)
	assert.ErrorIs(t, err, ErrBaseFeesDetected)

	// Missing band.
	err = ValidatePosition(pool(q64(100)), PositionRange{}, mintA)
	assert.ErrorIs(t, err, ErrBaseFeesDetected)
}

func TestValidateClaim(t *testing.T) {
	// Quote on side A: any token B amount is base fees.
	assert.NoError(t, ValidateClaim(ClaimedFees{TokenAAmount: 500}, true))
	assert.ErrorIs(t, ValidateClaim(ClaimedFees{TokenAAmount: 500, TokenBAmount: 1}, true), ErrBaseFeesInClaim)

	// Quote on side B: mirrored.
	assert.NoError(t, ValidateClaim(ClaimedFees{TokenBAmount: 500}, false))
	assert.ErrorIs(t, ValidateClaim(ClaimedFees{TokenAAmount: 1, TokenBAmount: 500}, false), ErrBaseFeesInClaim)

	// A claim of nothing is fine either way.
	assert.NoError(t, ValidateClaim(ClaimedFees{}, true))
}

func TestQuoteAmount(t *testing.T) {
	c := ClaimedFees{TokenAAmount: 7, TokenBAmount: 9}
	assert.Equal(t, uint64(7), QuoteAmount(c, true))
	assert.Equal(t, uint64(9), QuoteAmount(c, false))
}
