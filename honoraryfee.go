// Package honoraryfee wires the fee distribution engine to its
// production collaborators: the cp-amm fee claimer, the treasury
// transferor and the Streamflow locked-balance source.
package honoraryfee

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"

	"github.com/starfndn/honoraryfee-go/cpamm"
	"github.com/starfndn/honoraryfee-go/distributor"
	solanax "github.com/starfndn/honoraryfee-go/solana"
	"github.com/starfndn/honoraryfee-go/streamflow"
)

// ErrPositionNotOnPool is returned by Initialize when the registered
// honorary position is not among the pool's position accounts.
var ErrPositionNotOnPool = errors.New("honoraryfee: honorary position not found on pool")

// VaultSetup describes everything one vault needs before it can be
// initialized and cranked.
type VaultSetup struct {
	Pool               solana.PublicKey
	Position           solana.PublicKey
	PositionNftAccount solana.PublicKey

	// PositionOwner holds the position NFT and signs fee claims.
	PositionOwner *solana.Wallet

	// TreasuryAuthority owns the treasury token account and signs
	// payouts.
	TreasuryAuthority *solana.Wallet

	QuoteMint     solana.PublicKey
	QuoteDecimals uint8
	Treasury      solana.PublicKey

	// Streams lists the investor vesting streams in pagination order.
	Streams []streamflow.InvestorStream
}

// Client bundles the engine with its production adapters.
//
// Example:
//
// client := honoraryfee.NewClient(rpcClient, wsClient, payer, nil)
//
// client.RegisterVault(vault, setup)
//
// client.Initialize(ctx, vault, params)
//
// report, _ := client.Distribute(ctx, vault, 25)
type Client struct {
	Engine *distributor.Engine

	rpcClient  *rpc.Client
	claimer    *cpamm.FeeClaimer
	transferor *cpamm.TreasuryTransferor
	streams    *streamflow.LockedSource

	mu     sync.RWMutex
	setups map[solana.PublicKey]VaultSetup
}

func NewClient(rpcClient *rpc.Client, wsClient *ws.Client, payer *solana.Wallet, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}

	claimer := cpamm.NewFeeClaimer(rpcClient, wsClient, payer, log)
	transferor := cpamm.NewTreasuryTransferor(rpcClient, wsClient, payer, log)
	streams := streamflow.NewLockedSource(rpcClient, nil)
	store := distributor.NewMemoryStore()

	return &Client{
		Engine:     distributor.NewEngine(store, store, claimer, streams, transferor, distributor.WithLogger(log)),
		rpcClient:  rpcClient,
		claimer:    claimer,
		transferor: transferor,
		streams:    streams,
		setups:     make(map[solana.PublicKey]VaultSetup),
	}
}

// RegisterVault binds a vault's on-chain accounts to every adapter.
func (c *Client) RegisterVault(vault solana.PublicKey, setup VaultSetup) {
	c.mu.Lock()
	c.setups[vault] = setup
	c.mu.Unlock()

	c.claimer.Register(vault, cpamm.VaultAccounts{
		Pool:               setup.Pool,
		Position:           setup.Position,
		PositionNftAccount: setup.PositionNftAccount,
		Owner:              setup.PositionOwner,
		QuoteMint:          setup.QuoteMint,
		Treasury:           setup.Treasury,
	})
	c.transferor.Register(vault, cpamm.TreasuryConfig{
		Treasury:  setup.Treasury,
		Authority: setup.TreasuryAuthority,
		QuoteMint: setup.QuoteMint,
		Decimals:  setup.QuoteDecimals,
	})
	c.streams.Register(vault, setup.Streams)
}

// InitializeParams mirrors distributor.InitializeParams minus the pool
// snapshot, which is fetched live.
type InitializeParams struct {
	InvestorFeeShareBps     uint16
	DailyCap                uint64
	MinPayoutThreshold      uint64
	QuoteMint               solana.PublicKey
	CreatorQuoteAccount     solana.PublicKey
	TotalInvestorAllocation uint64
	Pool                    solana.PublicKey
}

// Initialize fetches the live pool state, checks that the registered
// honorary position actually exists on the pool, vets its range and
// creates the vault policy.
func (c *Client) Initialize(ctx context.Context, vault solana.PublicKey, params InitializeParams) error {
	c.mu.RLock()
	setup, ok := c.setups[vault]
	c.mu.RUnlock()
	if !ok {
		return cpamm.ErrVaultNotRegistered
	}

	pool, err := cpamm.FetchPoolState(ctx, c.rpcClient, params.Pool)
	if err != nil {
		return err
	}

	positions, err := cpamm.FindPositionsByPool(ctx, c.rpcClient, params.Pool)
	if err != nil {
		return err
	}
	if !positionOnPool(positions, setup.Position) {
		return ErrPositionNotOnPool
	}

	return c.Engine.Initialize(ctx, vault, distributor.InitializeParams{
		InvestorFeeShareBps:     params.InvestorFeeShareBps,
		DailyCap:                params.DailyCap,
		MinPayoutThreshold:      params.MinPayoutThreshold,
		QuoteMint:               params.QuoteMint,
		CreatorQuoteAccount:     params.CreatorQuoteAccount,
		TotalInvestorAllocation: params.TotalInvestorAllocation,
		Pool:                    pool.PoolInfo(),
		Position:                pool.Range(),
	})
}

// Distribute runs one crank invocation against the vault.
func (c *Client) Distribute(ctx context.Context, vault solana.PublicKey, pageSize int) (*distributor.PageReport, error) {
	return c.Engine.Distribute(ctx, vault, pageSize)
}

// TreasuryBalance reads the current quote balance of a treasury token
// account, 0 when the account does not exist yet.
func (c *Client) TreasuryBalance(ctx context.Context, treasury solana.PublicKey) (uint64, error) {
	return solanax.GetTokenBalance(ctx, c.rpcClient, treasury)
}

// positionOnPool reports whether the address is among the pool's
// position accounts.
func positionOnPool(positions []*cpamm.PoolPosition, position solana.PublicKey) bool {
	for _, p := range positions {
		if p.Address.Equals(position) {
			return true
		}
	}
	return false
}
