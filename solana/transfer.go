package solana

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// TransferToAccountInstruction builds a transfer-checked from an
// existing source token account straight to an existing destination
// token account. Used when both sides are already known token
// accounts rather than owner wallets.
func TransferToAccountInstruction(
	source solana.PublicKey,
	destination solana.PublicKey,
	authority solana.PublicKey,
	mint solana.PublicKey,
	decimals uint8,
	amount uint64,
) solana.Instruction {
	return token.NewTransferCheckedInstruction(
		amount,
		decimals,
		source,
		mint,
		destination,
		authority,
		[]solana.PublicKey{},
	).Build()
}
