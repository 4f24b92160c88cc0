// Package distributor implements the daily fee distribution crank:
// a permissionless, paginated state machine that claims quote fees
// once per 24h day, pays investors pro-rata to their still-locked
// allocations and pays the creator the remainder at day close.
//
// The engine owns no funds and performs no I/O of its own; claiming,
// locked-balance queries and transfers go through the collaborator
// interfaces in types.go, and the Progress checkpoint serializes
// concurrent crankers.
package distributor

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/starfndn/honoraryfee-go/feemath"
	"github.com/starfndn/honoraryfee-go/quoteguard"
	"github.com/starfndn/honoraryfee-go/safemath"
)

// Engine drives the distribution state machine for any number of
// vaults. Invocations against the same vault are serialized by a
// per-vault mutex; distinct vaults crank independently.
type Engine struct {
	policies PolicyStore
	progress ProgressStore
	claims   FeeClaimSource
	locked   LockedAmountSource
	transfer TokenTransferor
	clock    Clock
	log      *logrus.Logger

	locks vaultLocks
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the system clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(
	policies PolicyStore,
	progress ProgressStore,
	claims FeeClaimSource,
	locked LockedAmountSource,
	transfer TokenTransferor,
	opts ...Option,
) *Engine {
	e := &Engine{
		policies: policies,
		progress: progress,
		claims:   claims,
		locked:   locked,
		transfer: transfer,
		clock:    SystemClock{},
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitializeParams carries everything needed to set up a vault.
type InitializeParams struct {
	InvestorFeeShareBps     uint16
	DailyCap                uint64
	MinPayoutThreshold      uint64
	QuoteMint               solana.PublicKey
	CreatorQuoteAccount     solana.PublicKey
	TotalInvestorAllocation uint64

	// Pool and Position describe the honorary position to be vetted by
	// the position-time quote-only check.
	Pool     quoteguard.PoolInfo
	Position quoteguard.PositionRange
}

// Initialize creates the vault's policy and a fresh checkpoint. The
// checkpoint starts with DayComplete set and a zero timestamp, so the
// first crank opens day one immediately.
func (e *Engine) Initialize(ctx context.Context, vault solana.PublicKey, params InitializeParams) error {
	unlock := e.locks.acquire(vault)
	defer unlock()

	if params.InvestorFeeShareBps > feemath.BasisPointMax {
		return ErrInvalidShareBps
	}
	if _, err := e.policies.Policy(ctx, vault); err == nil {
		return ErrPolicyExists
	}

	if err := quoteguard.ValidatePosition(params.Pool, params.Position, params.QuoteMint); err != nil {
		return err
	}

	policy := PolicyConfig{
		InvestorFeeShareBps:     params.InvestorFeeShareBps,
		DailyCap:                params.DailyCap,
		MinPayoutThreshold:      params.MinPayoutThreshold,
		QuoteMint:               params.QuoteMint,
		CreatorQuoteAccount:     params.CreatorQuoteAccount,
		TotalInvestorAllocation: params.TotalInvestorAllocation,
	}
	if err := e.policies.SavePolicy(ctx, vault, policy); err != nil {
		return err
	}
	if err := e.progress.SaveProgress(ctx, vault, Progress{DayComplete: true}); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"vault":      vault,
		"quote_mint": params.QuoteMint,
		"share_bps":  params.InvestorFeeShareBps,
		"daily_cap":  params.DailyCap,
	}).Info("honorary position initialized")
	return nil
}

// Distribute runs one crank invocation: open a new day when due,
// process one page of investor payouts, close the day after the final
// page. Callable by anyone, any number of times. All effects of one
// invocation commit together; on any error the checkpoint is left
// untouched and the host is expected to roll back issued transfers.
func (e *Engine) Distribute(ctx context.Context, vault solana.PublicKey, pageSize int) (*PageReport, error) {
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, ErrInvalidPaginationCursor
	}

	unlock := e.locks.acquire(vault)
	defer unlock()

	policy, err := e.policies.Policy(ctx, vault)
	if err != nil {
		return nil, err
	}
	prog, err := e.progress.Progress(ctx, vault)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now().Unix()
	report := &PageReport{}

	// A new day is considered only when the previous one closed;
	// continuing an open day's pagination never re-checks the
	// cooldown.
	if prog.DayComplete {
		if !feemath.DayElapsed(prog.LastDistributionTS, now) {
			return nil, ErrCooldownNotElapsed
		}
		if err := e.openDay(ctx, vault, policy, &prog, now); err != nil {
			return nil, err
		}
		report.DayOpened = true
		report.ClaimedQuote = prog.DailyClaimedTotal
	}

	investors, err := e.locked.Investors(ctx, vault)
	if err != nil {
		return nil, err
	}
	total := uint64(len(investors))
	if prog.PaginationCursor > total {
		return nil, ErrInvalidPaginationCursor
	}

	if err := e.payPage(ctx, vault, policy, &prog, investors, uint64(pageSize), report); err != nil {
		return nil, err
	}

	if prog.PaginationCursor >= total {
		if err := e.closeDay(ctx, vault, policy, &prog, now, report); err != nil {
			return nil, err
		}
	}

	if err := e.progress.SaveProgress(ctx, vault, prog); err != nil {
		return nil, err
	}
	return report, nil
}

// openDay resets the page state, claims fees and records the claimed
// quote amount. The claim-time check runs on every claim regardless
// of the position-time check because external state can drift.
func (e *Engine) openDay(ctx context.Context, vault solana.PublicKey, policy PolicyConfig, prog *Progress, now int64) error {
	prog.LastDistributionTS = now
	prog.DailyDistributed = 0
	prog.PaginationCursor = 0
	prog.DayComplete = false
	prog.DailyClaimedTotal = 0

	claim, err := e.claims.Claim(ctx, vault)
	if err != nil {
		return err
	}
	if err := quoteguard.ValidateClaim(claim.Fees, claim.QuoteIsTokenA); err != nil {
		return err
	}
	prog.DailyClaimedTotal = quoteguard.QuoteAmount(claim.Fees, claim.QuoteIsTokenA)

	e.log.WithFields(logrus.Fields{
		"vault":      vault,
		"amount":     prog.DailyClaimedTotal,
		"quote_mint": policy.QuoteMint,
		"timestamp":  now,
	}).Info("quote fees claimed")
	return nil
}

// payPage distributes one page. The eligible share is derived from
// the locked total across the whole investor set, the cap applies to
// the day's cumulative charge, and the page's dust is folded into
// CarryOver while the full page allocation is charged against
// DailyDistributed, so the pot shrinks by exactly what was paid.
func (e *Engine) payPage(
	ctx context.Context,
	vault solana.PublicKey,
	policy PolicyConfig,
	prog *Progress,
	investors []InvestorRecord,
	pageSize uint64,
	report *PageReport,
) error {
	available, err := safemath.Add(prog.DailyClaimedTotal, prog.CarryOver)
	if err != nil {
		return err
	}
	remaining, err := safemath.Sub(available, prog.DailyDistributed)
	if err != nil {
		return err
	}

	pageStart := prog.PaginationCursor
	pageEnd := pageStart + pageSize
	if pageEnd > uint64(len(investors)) {
		pageEnd = uint64(len(investors))
	}
	page := investors[pageStart:pageEnd]
	report.PageStart = pageStart
	report.PageEnd = pageEnd

	if len(page) == 0 {
		prog.PaginationCursor = pageEnd
		return nil
	}

	var lockedTotal uint64
	for _, inv := range investors {
		if lockedTotal, err = safemath.Add(lockedTotal, inv.LockedAmount); err != nil {
			return err
		}
	}

	eligibleBps, err := feemath.EligibleShareBps(lockedTotal, policy.TotalInvestorAllocation, policy.InvestorFeeShareBps)
	if err != nil {
		return err
	}
	investorPool, err := feemath.InvestorPoolAmount(remaining, eligibleBps)
	if err != nil {
		return err
	}
	capped, _, err := feemath.ApplyDailyCap(investorPool, policy.DailyCap, prog.DailyDistributed)
	if err != nil {
		return err
	}

	weights := make([]uint64, len(page))
	for i, inv := range page {
		weights[i] = inv.LockedAmount
	}
	payouts, totalPaid, dust, err := feemath.ProportionalDistribution(capped, weights, policy.MinPayoutThreshold)
	if err != nil {
		return err
	}

	for i, payout := range payouts {
		if payout == 0 {
			continue
		}
		if err := e.transfer.Transfer(ctx, vault, page[i].QuoteAccount, payout); err != nil {
			return err
		}
	}

	// Charge the full page allocation and book the unpaid part back
	// into CarryOver; the two together reduce the pot by exactly
	// totalPaid.
	if prog.DailyDistributed, err = safemath.Add(prog.DailyDistributed, capped); err != nil {
		return err
	}
	if prog.CarryOver, err = safemath.Add(prog.CarryOver, dust); err != nil {
		return err
	}
	prog.PaginationCursor = pageEnd

	report.TotalPaid = totalPaid
	report.Dust = dust

	e.log.WithFields(logrus.Fields{
		"vault":             vault,
		"page_start":        pageStart,
		"page_end":          pageEnd,
		"total_distributed": totalPaid,
		"dust":              dust,
		"investor_count":    len(page),
	}).Info("investor payout page")
	return nil
}

// closeDay pays the whole remaining pot, accumulated dust included,
// to the creator and seals the day.
func (e *Engine) closeDay(ctx context.Context, vault solana.PublicKey, policy PolicyConfig, prog *Progress, now int64, report *PageReport) error {
	available, err := safemath.Add(prog.DailyClaimedTotal, prog.CarryOver)
	if err != nil {
		return err
	}
	creatorAmount, err := safemath.Sub(available, prog.DailyDistributed)
	if err != nil {
		return err
	}

	if creatorAmount > 0 {
		if err := e.transfer.Transfer(ctx, vault, policy.CreatorQuoteAccount, creatorAmount); err != nil {
			return err
		}
	}

	prog.DayComplete = true
	prog.CarryOver = 0

	report.DayClosed = true
	report.CreatorAmount = creatorAmount

	e.log.WithFields(logrus.Fields{
		"vault":               vault,
		"creator_amount":      creatorAmount,
		"total_claimed_today": prog.DailyClaimedTotal,
		"total_distributed":   prog.DailyDistributed,
		"timestamp":           now,
	}).Info("creator payout, day closed")
	return nil
}
