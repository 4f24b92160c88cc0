package cpamm

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/starfndn/honoraryfee-go/quoteguard"
	solanax "github.com/starfndn/honoraryfee-go/solana"
)

type BaseFeeStruct struct {
	CliffFeeNumerator uint64
	FeeSchedulerMode  uint8
	Padding0          [5]uint8
	NumberOfPeriod    uint16
	PeriodFrequency   uint64
	ReductionFactor   uint64
	Padding1          uint64
}

type DynamicFeeStruct struct {
	Initialized              uint8
	Padding                  [7]uint8
	MaxVolatilityAccumulator uint32
	VariableFeeControl       uint32
	BinStep                  uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	LastUpdateTimestamp      uint64
	BinStepU128              binary.Uint128
	SqrtPriceReference       binary.Uint128
	VolatilityAccumulator    binary.Uint128
	VolatilityReference      binary.Uint128
}

type PoolFeesStruct struct {
	BaseFee            BaseFeeStruct
	ProtocolFeePercent uint8
	PartnerFeePercent  uint8
	ReferralFeePercent uint8
	Padding0           [5]uint8
	DynamicFee         DynamicFeeStruct
	Padding1           [2]uint64
}

// PoolState is the decoded prefix of a cp-amm pool account, up to and
// including the flag bytes; trailing reward and metric state is not
// needed here.
type PoolState struct {
	PoolFees         PoolFeesStruct
	TokenAMint       solanago.PublicKey
	TokenBMint       solanago.PublicKey
	TokenAVault      solanago.PublicKey
	TokenBVault      solanago.PublicKey
	WhitelistedVault solanago.PublicKey
	Partner          solanago.PublicKey
	Liquidity        binary.Uint128
	Padding          binary.Uint128
	ProtocolAFee     uint64
	ProtocolBFee     uint64
	PartnerAFee      uint64
	PartnerBFee      uint64
	SqrtMinPrice     binary.Uint128
	SqrtMaxPrice     binary.Uint128
	SqrtPrice        binary.Uint128
	ActivationPoint  uint64
	ActivationType   uint8
	PoolStatus       uint8
	TokenAFlag       uint8
	TokenBFlag       uint8
	CollectFeeMode   uint8
	PoolType         uint8
	Version          uint8
}

// PositionState is the decoded prefix of a cp-amm position account.
type PositionState struct {
	Pool                     solanago.PublicKey
	NftMint                  solanago.PublicKey
	FeeAPerTokenCheckpoint   [32]uint8
	FeeBPerTokenCheckpoint   [32]uint8
	FeeAPending              uint64
	FeeBPending              uint64
	UnlockedLiquidity        binary.Uint128
	VestedLiquidity          binary.Uint128
	PermanentLockedLiquidity binary.Uint128
}

func accountDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	return hash[:8]
}

func decodeAccount(name string, data []byte, out interface{}) error {
	if len(data) < 8 {
		return fmt.Errorf("cpamm: %s account too short", name)
	}
	if !bytes.Equal(data[:8], accountDiscriminator(name)) {
		return fmt.Errorf("cpamm: account discriminator mismatch, want %s", name)
	}
	return binary.NewBorshDecoder(data[8:]).Decode(out)
}

// DecodePoolState decodes a raw pool account.
func DecodePoolState(data []byte) (*PoolState, error) {
	pool := &PoolState{}
	if err := decodeAccount(AccountKeyPool, data, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// DecodePositionState decodes a raw position account.
func DecodePositionState(data []byte) (*PositionState, error) {
	position := &PositionState{}
	if err := decodeAccount(AccountKeyPosition, data, position); err != nil {
		return nil, err
	}
	return position, nil
}

func FetchPoolState(ctx context.Context, rpcClient *rpc.Client, pool solanago.PublicKey) (*PoolState, error) {
	out, err := solanax.GetAccountInfo(ctx, rpcClient, pool)
	if err != nil {
		return nil, err
	}
	return DecodePoolState(out.Value.Data.GetBinary())
}

func FetchPositionState(ctx context.Context, rpcClient *rpc.Client, position solanago.PublicKey) (*PositionState, error) {
	out, err := solanax.GetAccountInfo(ctx, rpcClient, position)
	if err != nil {
		return nil, err
	}
	return DecodePositionState(out.Value.Data.GetBinary())
}

// PoolPosition pairs a position account with its decoded state.
type PoolPosition struct {
	Address solanago.PublicKey
	State   *PositionState
}

// FindPositionsByPool lists every position opened on a pool, the
// honorary one included.
func FindPositionsByPool(ctx context.Context, rpcClient *rpc.Client, pool solanago.PublicKey) ([]*PoolPosition, error) {
	opt := solanax.GenProgramAccountFilter(AccountKeyPosition, pool, 8)

	outs, err := rpcClient.GetProgramAccountsWithOpts(ctx, ProgramID, opt)
	if err != nil {
		if err == rpc.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	var list []*PoolPosition
	for _, out := range outs {
		state, err := DecodePositionState(out.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		list = append(list, &PoolPosition{Address: out.Pubkey, State: state})
	}
	return list, nil
}

// PoolInfo exposes the slice of pool state the quote-only validator
// consumes.
func (p *PoolState) PoolInfo() quoteguard.PoolInfo {
	return quoteguard.PoolInfo{
		TokenAMint: p.TokenAMint,
		TokenBMint: p.TokenBMint,
		SqrtPrice:  p.SqrtPrice.BigInt(),
	}
}

// Range returns the pool's full price band as a position range; the
// honorary position normally uses a narrower band validated against
// the current price.
func (p *PoolState) Range() quoteguard.PositionRange {
	return quoteguard.PositionRange{
		SqrtMinPrice: p.SqrtMinPrice.BigInt(),
		SqrtMaxPrice: p.SqrtMaxPrice.BigInt(),
	}
}

// PriceFromSqrtPrice converts a Q64.64 sqrt price to a human price,
// price = (sqrtPrice >> 64)^2 * 10^(tokenADecimal-tokenBDecimal).
func PriceFromSqrtPrice(sqrtPrice *big.Int, tokenADecimal, tokenBDecimal int32) decimal.Decimal {
	if sqrtPrice == nil || sqrtPrice.Sign() == 0 {
		return decimal.Zero
	}
	one := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), ScaleOffset), 0)
	sqrt := decimal.NewFromBigInt(sqrtPrice, 0).Div(one)
	return sqrt.Mul(sqrt).Mul(decimal.New(1, tokenADecimal-tokenBDecimal))
}
