package cpamm

import (
	"context"
	"sync"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"

	"github.com/starfndn/honoraryfee-go/distributor"
	solanax "github.com/starfndn/honoraryfee-go/solana"
)

// TreasuryConfig ties one vault to the treasury it pays from.
type TreasuryConfig struct {
	Treasury solanago.PublicKey

	// Authority owns the treasury token account and signs every
	// outgoing transfer.
	Authority *solanago.Wallet

	QuoteMint solanago.PublicKey
	Decimals  uint8
}

// TreasuryTransferor moves quote tokens from a vault's treasury to
// investor and creator token accounts. It implements
// distributor.TokenTransferor.
type TreasuryTransferor struct {
	rpcClient *rpc.Client
	wsClient  *ws.Client
	payer     *solanago.Wallet
	log       *logrus.Logger

	mu     sync.RWMutex
	vaults map[solanago.PublicKey]TreasuryConfig
}

func NewTreasuryTransferor(rpcClient *rpc.Client, wsClient *ws.Client, payer *solanago.Wallet, log *logrus.Logger) *TreasuryTransferor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TreasuryTransferor{
		rpcClient: rpcClient,
		wsClient:  wsClient,
		payer:     payer,
		log:       log,
		vaults:    make(map[solanago.PublicKey]TreasuryConfig),
	}
}

// Register binds a vault to its treasury. Must be called before the
// vault is cranked.
func (t *TreasuryTransferor) Register(vault solanago.PublicKey, config TreasuryConfig) {
	t.mu.Lock()
	t.vaults[vault] = config
	t.mu.Unlock()
}

// Transfer sends amount from the vault treasury to the destination
// token account. The treasury is re-fetched and checked against the
// configured mint and authority before anything moves.
func (t *TreasuryTransferor) Transfer(ctx context.Context, vault solanago.PublicKey, to solanago.PublicKey, amount uint64) error {
	t.mu.RLock()
	config, ok := t.vaults[vault]
	t.mu.RUnlock()
	if !ok {
		return ErrVaultNotRegistered
	}

	treasury, err := solanax.GetTokenAccount(ctx, t.rpcClient, config.Treasury)
	if err != nil {
		return err
	}
	if !treasury.Mint.Equals(config.QuoteMint) || !treasury.Owner.Equals(config.Authority.PublicKey()) {
		return distributor.ErrInvalidTreasury
	}

	transferIx := solanax.TransferToAccountInstruction(
		config.Treasury,
		to,
		config.Authority.PublicKey(),
		config.QuoteMint,
		config.Decimals,
		amount,
	)

	sig, err := solanax.SendTransaction(ctx, t.rpcClient, t.wsClient, []solanago.Instruction{transferIx}, t.payer.PublicKey(), func(key solanago.PublicKey) *solanago.PrivateKey {
		switch {
		case key.Equals(t.payer.PublicKey()):
			return &t.payer.PrivateKey
		case key.Equals(config.Authority.PublicKey()):
			return &config.Authority.PrivateKey
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}

	t.log.WithFields(logrus.Fields{
		"vault":     vault,
		"to":        to,
		"amount":    amount,
		"signature": sig,
	}).Info("treasury payout sent")
	return nil
}
