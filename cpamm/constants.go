// Package cpamm holds the production adapters against the DAMM v2
// (cp-amm) program: account decoding for the pool and position state,
// PDA derivation for the vault's accounts, and the fee-claim and
// treasury-transfer collaborators consumed by the distributor engine.
package cpamm

import solanago "github.com/gagliardetto/solana-go"

// ProgramID is the CP AMM program address.
var ProgramID = solanago.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")

// HonoraryFeeProgramID is the on-chain fee-router program whose
// policy/progress PDAs this engine mirrors.
var HonoraryFeeProgramID = solanago.MustPublicKeyFromBase58("AQUVRgoaGsoy2uGnzkSDBoEVEJox2XT6Vna3Y9xKKwFZ")

// Seeds of the vault PDAs.
const (
	VaultSeed         = "star_vault"
	PositionOwnerSeed = "investor_fee_pos_owner"
	PolicySeed        = "policy"
	ProgressSeed      = "progress"
	TreasurySeed      = "treasury"
)

// Anchor account names used for discriminator filters.
const (
	AccountKeyPool     = "Pool"
	AccountKeyPosition = "Position"
)

const (
	// ScaleOffset is the Q64.64 fixed point shift of sqrt prices.
	ScaleOffset = 64

	BasisPointMax = 10_000
)
