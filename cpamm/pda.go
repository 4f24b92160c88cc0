package cpamm

import (
	solanago "github.com/gagliardetto/solana-go"
)

func DerivePoolAuthority() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{[]byte("pool_authority")}, ProgramID)
	return pub
}

func DeriveEventAuthority() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{[]byte("__event_authority")}, ProgramID)
	return pub
}

// DerivePositionOwner returns the PDA owning the vault's honorary
// position.
func DerivePositionOwner(vault solanago.PublicKey) (solanago.PublicKey, uint8) {
	pub, bump, _ := solanago.FindProgramAddress([][]byte{
		[]byte(VaultSeed),
		vault.Bytes(),
		[]byte(PositionOwnerSeed),
	}, HonoraryFeeProgramID)
	return pub, bump
}

// DerivePolicy returns the vault's policy PDA.
func DerivePolicy(vault solanago.PublicKey) (solanago.PublicKey, uint8) {
	pub, bump, _ := solanago.FindProgramAddress([][]byte{
		[]byte(VaultSeed),
		vault.Bytes(),
		[]byte(PolicySeed),
	}, HonoraryFeeProgramID)
	return pub, bump
}

// DeriveProgress returns the vault's progress checkpoint PDA.
func DeriveProgress(vault solanago.PublicKey) (solanago.PublicKey, uint8) {
	pub, bump, _ := solanago.FindProgramAddress([][]byte{
		[]byte(VaultSeed),
		vault.Bytes(),
		[]byte(ProgressSeed),
	}, HonoraryFeeProgramID)
	return pub, bump
}

// DeriveTreasury returns the vault's quote treasury PDA.
func DeriveTreasury(vault, quoteMint solanago.PublicKey) (solanago.PublicKey, uint8) {
	pub, bump, _ := solanago.FindProgramAddress([][]byte{
		[]byte(VaultSeed),
		vault.Bytes(),
		[]byte(TreasurySeed),
		quoteMint.Bytes(),
	}, HonoraryFeeProgramID)
	return pub, bump
}
