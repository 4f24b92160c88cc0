// Package streamflow reads investor vesting streams and turns them
// into still-locked amounts. The distribution engine only ever sees
// the locked balance per investor; all schedule math lives here.
package streamflow

import (
	"context"
	"errors"
	"sync"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/starfndn/honoraryfee-go/distributor"
	solanax "github.com/starfndn/honoraryfee-go/solana"
)

var (
	ErrInvalidStreamAccount = errors.New("streamflow: invalid stream account")
	ErrVaultNotRegistered   = errors.New("streamflow: vault not registered")
)

// ProgramID is the Streamflow protocol program.
var ProgramID = solana.MustPublicKeyFromBase58("strmRqUCoQUgGUan5YhzUZa6KqdzwX5L6FpUxfmKg5m")

// fetchChunk bounds one getMultipleAccounts call.
const fetchChunk = 100

// StreamState is the decoded prefix of a Streamflow stream contract.
// Streams are not anchor accounts; there is no discriminator, the
// leading magic number identifies the layout. Fields past the cliff
// amount are not needed and left undecoded.
type StreamState struct {
	Magic           uint64
	Version         uint8
	CreatedAt       uint64
	AmountWithdrawn uint64
	CanceledAt      uint64
	EndTime         uint64
	LastWithdrawnAt uint64

	Sender          solana.PublicKey
	SenderTokens    solana.PublicKey
	Recipient       solana.PublicKey
	RecipientTokens solana.PublicKey
	Mint            solana.PublicKey
	EscrowTokens    solana.PublicKey

	StreamflowTreasury       solana.PublicKey
	StreamflowTreasuryTokens solana.PublicKey
	StreamflowFeeTotal       uint64
	StreamflowFeeWithdrawn   uint64
	StreamflowFeePercent     uint32
	PartnerFeeTotal          uint64
	PartnerFeeWithdrawn      uint64
	PartnerFeePercent        uint32
	Partner                  solana.PublicKey
	PartnerTokens            solana.PublicKey

	StartTime          uint64
	NetAmountDeposited uint64
	Period             uint64
	AmountPerPeriod    uint64
	Cliff              uint64
	CliffAmount        uint64
}

// DecodeStream decodes a raw stream account.
func DecodeStream(data []byte) (*StreamState, error) {
	stream := &StreamState{}
	if err := binary.NewBorshDecoder(data).Decode(stream); err != nil {
		return nil, ErrInvalidStreamAccount
	}
	if stream.Magic == 0 || stream.NetAmountDeposited == 0 {
		return nil, ErrInvalidStreamAccount
	}
	return stream, nil
}

// LockedAt returns the still-locked amount at the given unix time.
// Before the cliff the whole deposit is locked; after it the cliff
// amount plus one release per elapsed period has vested. A canceled
// or ended stream has nothing locked.
func (s *StreamState) LockedAt(now int64) uint64 {
	unow := uint64(now)
	if now < 0 {
		unow = 0
	}

	if s.CanceledAt > 0 && unow >= s.CanceledAt {
		return 0
	}
	if s.EndTime > 0 && unow >= s.EndTime {
		return 0
	}
	if unow < s.Cliff {
		return s.NetAmountDeposited
	}

	vested := s.CliffAmount
	if s.Period > 0 && s.AmountPerPeriod > 0 {
		elapsed := (unow - s.Cliff) / s.Period
		perPeriod := elapsed * s.AmountPerPeriod
		if elapsed > 0 && perPeriod/elapsed != s.AmountPerPeriod {
			return 0 // release overflow means long past fully vested
		}
		vested += perPeriod
		if vested < perPeriod {
			return 0
		}
	}

	if vested >= s.NetAmountDeposited {
		return 0
	}
	return s.NetAmountDeposited - vested
}

// InvestorStream pairs a vesting stream with the quote token account
// its investor is paid into.
type InvestorStream struct {
	Stream       solana.PublicKey
	QuoteAccount solana.PublicKey
}

// LockedSource reads the registered streams of a vault over RPC and
// reports per-investor locked amounts. It implements
// distributor.LockedAmountSource.
type LockedSource struct {
	rpcClient *rpc.Client
	clock     distributor.Clock

	mu     sync.RWMutex
	vaults map[solana.PublicKey][]InvestorStream
}

func NewLockedSource(rpcClient *rpc.Client, clock distributor.Clock) *LockedSource {
	if clock == nil {
		clock = distributor.SystemClock{}
	}
	return &LockedSource{
		rpcClient: rpcClient,
		clock:     clock,
		vaults:    make(map[solana.PublicKey][]InvestorStream),
	}
}

// Register binds a vault to its investor streams. The order given here
// is the pagination order of every distribution day.
func (s *LockedSource) Register(vault solana.PublicKey, streams []InvestorStream) {
	s.mu.Lock()
	s.vaults[vault] = append([]InvestorStream(nil), streams...)
	s.mu.Unlock()
}

// Investors fetches every registered stream and computes its locked
// amount at the current time. Accounts are re-fetched on every call so
// pages within a day see vesting progress.
func (s *LockedSource) Investors(ctx context.Context, vault solana.PublicKey) ([]distributor.InvestorRecord, error) {
	s.mu.RLock()
	streams, ok := s.vaults[vault]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrVaultNotRegistered
	}
	if len(streams) == 0 {
		return nil, nil
	}

	now := s.clock.Now().Unix()
	records := make([]distributor.InvestorRecord, 0, len(streams))

	for start := 0; start < len(streams); start += fetchChunk {
		end := start + fetchChunk
		if end > len(streams) {
			end = len(streams)
		}
		chunk := streams[start:end]

		keys := make([]solana.PublicKey, len(chunk))
		for i, investor := range chunk {
			keys[i] = investor.Stream
		}

		out, err := solanax.GetMultipleAccountInfo(ctx, s.rpcClient, keys)
		if err != nil {
			return nil, err
		}

		for i, account := range out.Value {
			if account == nil {
				return nil, ErrInvalidStreamAccount
			}
			stream, err := DecodeStream(account.Data.GetBinary())
			if err != nil {
				return nil, err
			}
			records = append(records, distributor.InvestorRecord{
				Stream:       chunk[i].Stream,
				QuoteAccount: chunk[i].QuoteAccount,
				LockedAmount: stream.LockedAt(now),
			})
		}
	}
	return records, nil
}
