// Command crank runs the permissionless distribution crank as a
// daemon: on a schedule it opens the vault's distribution day, pages
// through investor payouts and closes the day with the creator
// remainder.
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	honoraryfee "github.com/starfndn/honoraryfee-go"
	"github.com/starfndn/honoraryfee-go/distributor"
	"github.com/starfndn/honoraryfee-go/streamflow"
)

type config struct {
	RPCEndpoint string `env:"RPC_ENDPOINT" envDefault:"https://api.mainnet-beta.solana.com"`
	WSEndpoint  string `env:"WS_ENDPOINT" envDefault:"wss://api.mainnet-beta.solana.com"`

	PayerKey             string `env:"PAYER_KEY,required"`
	PositionOwnerKey     string `env:"POSITION_OWNER_KEY,required"`
	TreasuryAuthorityKey string `env:"TREASURY_AUTHORITY_KEY,required"`

	Vault               string `env:"VAULT,required"`
	Pool                string `env:"POOL,required"`
	Position            string `env:"POSITION,required"`
	PositionNftAccount  string `env:"POSITION_NFT_ACCOUNT,required"`
	QuoteMint           string `env:"QUOTE_MINT,required"`
	Treasury            string `env:"TREASURY,required"`
	CreatorQuoteAccount string `env:"CREATOR_QUOTE_ACCOUNT,required"`

	QuoteDecimals           uint8  `env:"QUOTE_DECIMALS" envDefault:"6"`
	InvestorFeeShareBps     uint16 `env:"INVESTOR_FEE_SHARE_BPS,required"`
	DailyCap                uint64 `env:"DAILY_CAP" envDefault:"0"`
	MinPayoutThreshold      uint64 `env:"MIN_PAYOUT_THRESHOLD" envDefault:"0"`
	TotalInvestorAllocation uint64 `env:"TOTAL_INVESTOR_ALLOCATION,required"`

	// InvestorStreams lists stream=quoteAccount pairs; the list order is
	// the pagination order.
	InvestorStreams []string `env:"INVESTOR_STREAMS,required" envSeparator:","`

	PageSize int    `env:"PAGE_SIZE" envDefault:"25"`
	CronSpec string `env:"CRON_SPEC" envDefault:"@every 5m"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	log := logrus.New()

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.WithError(err).Fatal("config parse failed")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("crank exited")
	}
}

func run(ctx context.Context, cfg config, log *logrus.Logger) error {
	payer, err := walletFromKey(cfg.PayerKey)
	if err != nil {
		return fmt.Errorf("payer key: %w", err)
	}
	positionOwner, err := walletFromKey(cfg.PositionOwnerKey)
	if err != nil {
		return fmt.Errorf("position owner key: %w", err)
	}
	treasuryAuthority, err := walletFromKey(cfg.TreasuryAuthorityKey)
	if err != nil {
		return fmt.Errorf("treasury authority key: %w", err)
	}

	keys, err := parseKeys(cfg)
	if err != nil {
		return err
	}

	rpcClient := rpc.New(cfg.RPCEndpoint)
	wsClient, err := ws.Connect(ctx, cfg.WSEndpoint)
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	defer wsClient.Close()

	streams, err := parseInvestorStreams(cfg.InvestorStreams)
	if err != nil {
		return err
	}

	client := honoraryfee.NewClient(rpcClient, wsClient, payer, log)
	client.RegisterVault(keys.vault, honoraryfee.VaultSetup{
		Pool:               keys.pool,
		Position:           keys.position,
		PositionNftAccount: keys.positionNftAccount,
		PositionOwner:      positionOwner,
		TreasuryAuthority:  treasuryAuthority,
		QuoteMint:          keys.quoteMint,
		QuoteDecimals:      cfg.QuoteDecimals,
		Treasury:           keys.treasury,
		Streams:            streams,
	})

	if err := initializeVault(ctx, client, cfg, keys); err != nil {
		return err
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CronSpec, func() {
		crankDay(ctx, client, keys.vault, cfg.PageSize, log)
	})
	if err != nil {
		return fmt.Errorf("cron spec: %w", err)
	}

	log.WithFields(logrus.Fields{
		"vault":     keys.vault,
		"page_size": cfg.PageSize,
		"schedule":  cfg.CronSpec,
	}).Info("crank started")

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	log.Info("crank stopped")
	return nil
}

// crankDay drives one scheduled attempt: page through the vault until
// the day closes or the engine reports nothing to do.
func crankDay(ctx context.Context, client *honoraryfee.Client, vault solana.PublicKey, pageSize int, log *logrus.Logger) {
	for {
		report, err := client.Distribute(ctx, vault, pageSize)
		if err != nil {
			if errors.Is(err, distributor.ErrCooldownNotElapsed) {
				log.Debug("distribution day not due yet")
				return
			}
			log.WithError(err).Error("crank invocation failed")
			return
		}
		if report.DayClosed {
			log.WithFields(logrus.Fields{
				"creator_amount": report.CreatorAmount,
				"claimed":        report.ClaimedQuote,
			}).Info("distribution day closed")
			return
		}
	}
}

// initializeVault sets up the vault policy on first run. The honorary
// position is verified against the live pool before anything is
// persisted.
func initializeVault(ctx context.Context, client *honoraryfee.Client, cfg config, keys vaultKeys) error {
	err := client.Initialize(ctx, keys.vault, honoraryfee.InitializeParams{
		InvestorFeeShareBps:     cfg.InvestorFeeShareBps,
		DailyCap:                cfg.DailyCap,
		MinPayoutThreshold:      cfg.MinPayoutThreshold,
		QuoteMint:               keys.quoteMint,
		CreatorQuoteAccount:     keys.creatorQuoteAccount,
		TotalInvestorAllocation: cfg.TotalInvestorAllocation,
		Pool:                    keys.pool,
	})
	if errors.Is(err, distributor.ErrPolicyExists) {
		return nil
	}
	return err
}

type vaultKeys struct {
	vault               solana.PublicKey
	pool                solana.PublicKey
	position            solana.PublicKey
	positionNftAccount  solana.PublicKey
	quoteMint           solana.PublicKey
	treasury            solana.PublicKey
	creatorQuoteAccount solana.PublicKey
}

func parseKeys(cfg config) (vaultKeys, error) {
	keys := vaultKeys{}
	for _, field := range []struct {
		name  string
		value string
		out   *solana.PublicKey
	}{
		{"VAULT", cfg.Vault, &keys.vault},
		{"POOL", cfg.Pool, &keys.pool},
		{"POSITION", cfg.Position, &keys.position},
		{"POSITION_NFT_ACCOUNT", cfg.PositionNftAccount, &keys.positionNftAccount},
		{"QUOTE_MINT", cfg.QuoteMint, &keys.quoteMint},
		{"TREASURY", cfg.Treasury, &keys.treasury},
		{"CREATOR_QUOTE_ACCOUNT", cfg.CreatorQuoteAccount, &keys.creatorQuoteAccount},
	} {
		key, err := solana.PublicKeyFromBase58(field.value)
		if err != nil {
			return vaultKeys{}, fmt.Errorf("%s: %w", field.name, err)
		}
		*field.out = key
	}
	return keys, nil
}

func parseInvestorStreams(pairs []string) ([]streamflow.InvestorStream, error) {
	streams := make([]streamflow.InvestorStream, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(strings.TrimSpace(pair), "=")
		if len(parts) != 2 {
			return nil, fmt.Errorf("investor stream %q: want stream=quoteAccount", pair)
		}
		stream, err := solana.PublicKeyFromBase58(parts[0])
		if err != nil {
			return nil, fmt.Errorf("investor stream %q: %w", pair, err)
		}
		quoteAccount, err := solana.PublicKeyFromBase58(parts[1])
		if err != nil {
			return nil, fmt.Errorf("investor stream %q: %w", pair, err)
		}
		streams = append(streams, streamflow.InvestorStream{Stream: stream, QuoteAccount: quoteAccount})
	}
	return streams, nil
}

func walletFromKey(key string) (*solana.Wallet, error) {
	privateKey, err := solana.PrivateKeyFromBase58(key)
	if err != nil {
		return nil, err
	}
	return &solana.Wallet{PrivateKey: privateKey}, nil
}
