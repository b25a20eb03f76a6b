package makidex_amm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed constants baked into the on-chain AMM program. The PDAs derived from
// them are the program's global config account and the authority that owns
// the pool vaults.
var (
	AmmConfigSeed    = []byte("amm_config_account_seed")
	AmmAuthoritySeed = []byte("amm authority")
)

// FindAmmConfigAddress derives the global AMM config PDA for the given
// program. Pure function of its inputs; identical inputs always yield the
// same (address, bump).
func FindAmmConfigAddress(program solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{AmmConfigSeed}, program)
}

// FindAmmAuthorityAddress derives the pool authority PDA that owns the AMM's
// vault token accounts.
func FindAmmAuthorityAddress(program solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{AmmAuthoritySeed}, program)
}

func findProgramAddress(seeds [][]byte, program solana.PublicKey) (solana.PublicKey, uint8, error) {
	if program.IsZero() {
		return solana.PublicKey{}, 0, &PreconditionError{Param: "program", Reason: "empty program id"}
	}
	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		// The library only fails here once every bump candidate landed on
		// the curve, which indicates corrupted seed material.
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrDerivationExhausted, err)
	}
	return addr, bump, nil
}

// FindAssociatedTokenAddress resolves the canonical token account address
// holding owner's balance of mint, derived under the SPL associated token
// program.
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if owner.IsZero() {
		return solana.PublicKey{}, &PreconditionError{Param: "owner", Reason: "empty public key"}
	}
	if mint.IsZero() {
		return solana.PublicKey{}, &PreconditionError{Param: "mint", Reason: "empty public key"}
	}
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrDerivationExhausted, err)
	}
	return addr, nil
}
