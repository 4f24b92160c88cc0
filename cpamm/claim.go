package cpamm

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"

	"github.com/starfndn/honoraryfee-go/distributor"
	"github.com/starfndn/honoraryfee-go/quoteguard"
	solanax "github.com/starfndn/honoraryfee-go/solana"
)

var ErrVaultNotRegistered = errors.New("cpamm: vault not registered")

// VaultAccounts ties one vault to its pool, honorary position and
// treasury on chain.
type VaultAccounts struct {
	Pool               solanago.PublicKey
	Position           solanago.PublicKey
	PositionNftAccount solanago.PublicKey

	// Owner signs the claim; it holds the position NFT.
	Owner *solanago.Wallet

	QuoteMint solanago.PublicKey

	// Treasury is the vault's quote token account; claimed quote fees
	// land here.
	Treasury solanago.PublicKey
}

// FeeClaimer claims the honorary position's accrued fees into the
// vault treasury. It implements distributor.FeeClaimSource.
type FeeClaimer struct {
	rpcClient *rpc.Client
	wsClient  *ws.Client
	payer     *solanago.Wallet
	log       *logrus.Logger

	mu     sync.RWMutex
	vaults map[solanago.PublicKey]VaultAccounts
}

func NewFeeClaimer(rpcClient *rpc.Client, wsClient *ws.Client, payer *solanago.Wallet, log *logrus.Logger) *FeeClaimer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FeeClaimer{
		rpcClient: rpcClient,
		wsClient:  wsClient,
		payer:     payer,
		log:       log,
		vaults:    make(map[solanago.PublicKey]VaultAccounts),
	}
}

// Register binds a vault to its on-chain accounts. Must be called
// before the vault is cranked.
func (c *FeeClaimer) Register(vault solanago.PublicKey, accounts VaultAccounts) {
	c.mu.Lock()
	c.vaults[vault] = accounts
	c.mu.Unlock()
}

func (c *FeeClaimer) accounts(vault solanago.PublicKey) (VaultAccounts, error) {
	c.mu.RLock()
	accounts, ok := c.vaults[vault]
	c.mu.RUnlock()
	if !ok {
		return VaultAccounts{}, ErrVaultNotRegistered
	}
	return accounts, nil
}

// Claim reads the position's pending fees, sends the claim transaction
// and reports the per-side amounts. Pending amounts are read before
// the claim so the report reflects exactly what the claim moves.
func (c *FeeClaimer) Claim(ctx context.Context, vault solanago.PublicKey) (distributor.ClaimResult, error) {
	accounts, err := c.accounts(vault)
	if err != nil {
		return distributor.ClaimResult{}, err
	}

	pool, err := FetchPoolState(ctx, c.rpcClient, accounts.Pool)
	if err != nil {
		return distributor.ClaimResult{}, err
	}

	position, err := FetchPositionState(ctx, c.rpcClient, accounts.Position)
	if err != nil {
		return distributor.ClaimResult{}, err
	}

	quoteIsTokenA, err := quoteguard.QuoteIsTokenA(pool.PoolInfo(), accounts.QuoteMint)
	if err != nil {
		return distributor.ClaimResult{}, err
	}

	result := distributor.ClaimResult{
		Fees: quoteguard.ClaimedFees{
			TokenAAmount: position.FeeAPending,
			TokenBAmount: position.FeeBPending,
		},
		QuoteIsTokenA: quoteIsTokenA,
	}

	if position.FeeAPending == 0 && position.FeeBPending == 0 {
		return result, nil
	}

	baseMint := pool.TokenBMint
	if !quoteIsTokenA {
		baseMint = pool.TokenAMint
	}

	var instructions []solanago.Instruction

	// The base-side account should only ever see zero amounts; it still
	// has to exist for the instruction to execute.
	baseAccount, err := solanax.PrepareTokenATA(ctx, c.rpcClient, accounts.Owner.PublicKey(), baseMint, c.payer.PublicKey(), &instructions)
	if err != nil {
		return distributor.ClaimResult{}, err
	}

	tokenAAccount, tokenBAccount := accounts.Treasury, baseAccount
	if !quoteIsTokenA {
		tokenAAccount, tokenBAccount = baseAccount, accounts.Treasury
	}

	claimIx := claimPositionFeeInstruction(
		accounts.Pool,
		accounts.Position,
		tokenAAccount,
		tokenBAccount,
		pool.TokenAVault,
		pool.TokenBVault,
		pool.TokenAMint,
		pool.TokenBMint,
		accounts.PositionNftAccount,
		accounts.Owner.PublicKey(),
		tokenProgramFromFlag(pool.TokenAFlag),
		tokenProgramFromFlag(pool.TokenBFlag),
	)
	instructions = append(instructions, claimIx)

	sig, err := solanax.SendTransaction(ctx, c.rpcClient, c.wsClient, instructions, c.payer.PublicKey(), func(key solanago.PublicKey) *solanago.PrivateKey {
		switch {
		case key.Equals(c.payer.PublicKey()):
			return &c.payer.PrivateKey
		case key.Equals(accounts.Owner.PublicKey()):
			return &accounts.Owner.PrivateKey
		default:
			return nil
		}
	})
	if err != nil {
		return distributor.ClaimResult{}, err
	}

	c.log.WithFields(logrus.Fields{
		"vault":     vault,
		"signature": sig,
		"fee_a":     position.FeeAPending,
		"fee_b":     position.FeeBPending,
	}).Info("claimed position fees")

	return result, nil
}

func tokenProgramFromFlag(flag uint8) solanago.PublicKey {
	if flag == 0 {
		return solanago.TokenProgramID
	}
	return solanago.Token2022ProgramID
}

func instructionDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("global:" + name))
	return hash[:8]
}

func claimPositionFeeInstruction(
	pool solanago.PublicKey,
	position solanago.PublicKey,
	tokenAAccount solanago.PublicKey,
	tokenBAccount solanago.PublicKey,
	tokenAVault solanago.PublicKey,
	tokenBVault solanago.PublicKey,
	tokenAMint solanago.PublicKey,
	tokenBMint solanago.PublicKey,
	positionNftAccount solanago.PublicKey,
	owner solanago.PublicKey,
	tokenAProgram solanago.PublicKey,
	tokenBProgram solanago.PublicKey,
) solanago.Instruction {
	accounts := solanago.AccountMetaSlice{
		solanago.Meta(DerivePoolAuthority()),
		solanago.Meta(pool).WRITE(),
		solanago.Meta(position).WRITE(),
		solanago.Meta(tokenAAccount).WRITE(),
		solanago.Meta(tokenBAccount).WRITE(),
		solanago.Meta(tokenAVault).WRITE(),
		solanago.Meta(tokenBVault).WRITE(),
		solanago.Meta(tokenAMint),
		solanago.Meta(tokenBMint),
		solanago.Meta(positionNftAccount),
		solanago.Meta(owner).SIGNER(),
		solanago.Meta(tokenAProgram),
		solanago.Meta(tokenBProgram),
		solanago.Meta(DeriveEventAuthority()),
		solanago.Meta(ProgramID),
	}
	return solanago.NewInstruction(ProgramID, accounts, instructionDiscriminator("claim_position_fee"))
}
