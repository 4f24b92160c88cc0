package distributor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/starfndn/honoraryfee-go/quoteguard"
)

// MaxPageSize bounds a single crank invocation. Mirrors the on-chain
// program's account-list limit.
const MaxPageSize = 100

// PolicyConfig is the immutable distribution policy of one vault.
type PolicyConfig struct {
	// InvestorFeeShareBps is the ceiling of the investor share of a
	// day's distributable fees, in basis points (0..10000).
	InvestorFeeShareBps uint16

	// DailyCap limits the amount charged against the day's pot for
	// investors, in quote tokens. The charge includes dust withheld by
	// MinPayoutThreshold, so withheld shares consume cap budget even
	// though they end up with the creator at day close. 0 means no cap.
	DailyCap uint64

	// MinPayoutThreshold withholds per-investor payouts below it.
	MinPayoutThreshold uint64

	// QuoteMint is the only mint this vault may ever realize fees in.
	QuoteMint solana.PublicKey

	// CreatorQuoteAccount receives the day-close remainder.
	CreatorQuoteAccount solana.PublicKey

	// TotalInvestorAllocation is Y0, the investor token allocation
	// fixed at genesis; denominator of the locked fraction.
	TotalInvestorAllocation uint64
}

// Progress is the resumable checkpoint of one vault's distribution
// day. It lives across unboundedly many crank invocations; the engine
// mutates a working copy and persists it only when an invocation
// succeeds end to end.
type Progress struct {
	// LastDistributionTS is the unix time of the most recent day open.
	LastDistributionTS int64

	// DailyClaimedTotal is the quote amount claimed for the
	// current day.
	DailyClaimedTotal uint64

	// DailyDistributed is the amount charged against the day's pot for
	// investors so far: payouts actually transferred plus the dust
	// booked back into CarryOver. Charging the dust here is what makes
	// the CarryOver fold an exact offset instead of double counting.
	DailyDistributed uint64

	// CarryOver is undistributed value rolled forward: a prior day's
	// leftovers plus the current day's accumulated page dust.
	CarryOver uint64

	// PaginationCursor is the index of the next investor to process.
	// Monotonically increasing within a day, reset to 0 at day open.
	PaginationCursor uint64

	// DayComplete is true only between the close of one day and the
	// open of the next.
	DayComplete bool
}

// InvestorRecord is one investor's view at crank time. Reconstructed
// fresh every page from the vesting source, never persisted here.
type InvestorRecord struct {
	// Stream is the vesting stream account the locked amount was read
	// from.
	Stream solana.PublicKey

	// QuoteAccount is the investor's quote token account.
	QuoteAccount solana.PublicKey

	// LockedAmount is the still-vesting portion of the investor's
	// allocation, as observed at call time.
	LockedAmount uint64
}

// PageReport summarizes what one crank invocation did.
type PageReport struct {
	DayOpened     bool
	DayClosed     bool
	ClaimedQuote  uint64
	PageStart     uint64
	PageEnd       uint64
	TotalPaid     uint64
	Dust          uint64
	CreatorAmount uint64
}

// ClaimResult is what a fee-claim collaborator hands back: the raw
// per-side amounts plus which side the quote mint sits on, so the
// claim-time validator can run.
type ClaimResult struct {
	Fees          quoteguard.ClaimedFees
	QuoteIsTokenA bool
}

// FeeClaimSource pulls accrued fees from the vault's honorary
// position into the treasury.
type FeeClaimSource interface {
	Claim(ctx context.Context, vault solana.PublicKey) (ClaimResult, error)
}

// LockedAmountSource returns the vault's full investor set with
// current locked balances. Called fresh every page; no caching.
type LockedAmountSource interface {
	Investors(ctx context.Context, vault solana.PublicKey) ([]InvestorRecord, error)
}

// TokenTransferor moves quote tokens out of the vault treasury.
// A transfer either fully succeeds or fully fails.
type TokenTransferor interface {
	Transfer(ctx context.Context, vault solana.PublicKey, to solana.PublicKey, amount uint64) error
}

// PolicyStore persists PolicyConfig records, one per vault.
type PolicyStore interface {
	Policy(ctx context.Context, vault solana.PublicKey) (PolicyConfig, error)
	SavePolicy(ctx context.Context, vault solana.PublicKey, policy PolicyConfig) error
}

// ProgressStore persists Progress checkpoints, one per vault. Save is
// called at most once per invocation, after all transfers succeeded.
type ProgressStore interface {
	Progress(ctx context.Context, vault solana.PublicKey) (Progress, error)
	SaveProgress(ctx context.Context, vault solana.PublicKey, progress Progress) error
}

// Clock abstracts time for the cooldown check.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
