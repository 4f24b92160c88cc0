package solana

import (
	"context"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenAccount is the decoded SPL token account state the adapters
// care about.
type TokenAccount struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
}

// tokenAccountLayout mirrors the SPL token account wire layout.
type tokenAccountLayout struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	DelegateOption  uint32
	Delegate        solana.PublicKey
	State           uint8
	IsNativeOption  uint32
	IsNative        uint64
	DelegatedAmount uint64
}

// DecodeTokenAccount decodes raw SPL token account data.
func DecodeTokenAccount(address solana.PublicKey, data []byte) (*TokenAccount, error) {
	raw := &tokenAccountLayout{}
	if err := binary.NewBinDecoder(data).Decode(raw); err != nil {
		return nil, err
	}
	return &TokenAccount{
		Address: address,
		Mint:    raw.Mint,
		Owner:   raw.Owner,
		Amount:  raw.Amount,
	}, nil
}

// GetTokenAccount fetches and decodes one SPL token account.
func GetTokenAccount(ctx context.Context, rpcClient *rpc.Client, address solana.PublicKey) (*TokenAccount, error) {
	out, err := GetAccountInfo(ctx, rpcClient, address)
	if err != nil {
		return nil, err
	}
	return DecodeTokenAccount(address, out.Value.Data.GetBinary())
}

// GetTokenBalance returns the raw amount held by a token account, or
// 0 when the account does not exist yet.
func GetTokenBalance(ctx context.Context, rpcClient *rpc.Client, address solana.PublicKey) (uint64, error) {
	account, err := GetTokenAccount(ctx, rpcClient, address)
	if err != nil {
		if err == rpc.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return account.Amount, nil
}
