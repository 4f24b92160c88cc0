package cpamm

import (
	"bytes"
	"math/big"
	"testing"

	binary "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func encodeAccount(t *testing.T, name string, state interface{}) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(accountDiscriminator(name))
	require.NoError(t, binary.NewBorshEncoder(buf).Encode(state))
	return buf.Bytes()
}

func TestDecodePoolStateRoundTrip(t *testing.T) {
	want := PoolState{
		TokenAMint:  solanago.NewWallet().PublicKey(),
		TokenBMint:  solanago.NewWallet().PublicKey(),
		TokenAVault: solanago.NewWallet().PublicKey(),
		TokenBVault: solanago.NewWallet().PublicKey(),
		SqrtPrice:   binary.Uint128{Lo: 0, Hi: 5},
		TokenBFlag:  1,
	}

	got, err := DecodePoolState(encodeAccount(t, AccountKeyPool, want))
	require.NoError(t, err)
	require.Equal(t, want.TokenAMint, got.TokenAMint)
	require.Equal(t, want.TokenBMint, got.TokenBMint)
	require.Equal(t, want.TokenAVault, got.TokenAVault)
	require.Equal(t, want.SqrtPrice.BigInt(), got.SqrtPrice.BigInt())
	require.Equal(t, uint8(1), got.TokenBFlag)

	info := got.PoolInfo()
	require.Equal(t, want.TokenAMint, info.TokenAMint)
	require.Equal(t, new(big.Int).Lsh(big.NewInt(5), 64), info.SqrtPrice)
}

func TestDecodePositionStateRoundTrip(t *testing.T) {
	want := PositionState{
		Pool:        solanago.NewWallet().PublicKey(),
		NftMint:     solanago.NewWallet().PublicKey(),
		FeeAPending: 12345,
		FeeBPending: 67890,
	}

	got, err := DecodePositionState(encodeAccount(t, AccountKeyPosition, want))
	require.NoError(t, err)
	require.Equal(t, want.Pool, got.Pool)
	require.Equal(t, uint64(12345), got.FeeAPending)
	require.Equal(t, uint64(67890), got.FeeBPending)
}

func TestDecodeRejectsWrongDiscriminator(t *testing.T) {
	data := encodeAccount(t, AccountKeyPosition, PositionState{})
	_, err := DecodePoolState(data)
	require.Error(t, err)

	_, err = DecodePoolState([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestPriceFromSqrtPrice(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), ScaleOffset)

	require.True(t, PriceFromSqrtPrice(one, 6, 6).Equal(decimal.NewFromInt(1)))
	require.True(t, PriceFromSqrtPrice(new(big.Int).Mul(one, big.NewInt(2)), 6, 6).Equal(decimal.NewFromInt(4)))
	require.True(t, PriceFromSqrtPrice(one, 9, 6).Equal(decimal.NewFromInt(1000)))
	require.True(t, PriceFromSqrtPrice(nil, 6, 6).IsZero())
	require.True(t, PriceFromSqrtPrice(big.NewInt(0), 6, 6).IsZero())
}

func TestVaultPDAsAreDistinctAndStable(t *testing.T) {
	vault := solanago.MustPublicKeyFromBase58("8f1qgNaUnd9ZPBWhDBvUiXpa8KvKCMwHW6MSJSiPTsnY")
	quoteMint := solanago.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	owner1, _ := DerivePositionOwner(vault)
	owner2, _ := DerivePositionOwner(vault)
	require.Equal(t, owner1, owner2)

	policy, _ := DerivePolicy(vault)
	progress, _ := DeriveProgress(vault)
	treasury, _ := DeriveTreasury(vault, quoteMint)

	seen := map[solanago.PublicKey]bool{owner1: true}
	for _, key := range []solanago.PublicKey{policy, progress, treasury} {
		require.False(t, seen[key])
		seen[key] = true
	}

	require.False(t, DerivePoolAuthority().IsZero())
	require.False(t, DeriveEventAuthority().IsZero())
}
