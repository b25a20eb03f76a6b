package makidex_amm

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators of the on-chain AMM program. The wire format is
// a single little-endian u8 tag followed by the (here empty) argument body,
// matching the program's own unpacking.
const (
	InstructionCreateConfigAccount uint8 = 14
	InstructionOwnerWithdraw       uint8 = 16
)

// encodeDiscriminator serializes an argument-less instruction payload.
func encodeDiscriminator(tag uint8) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).WriteUint8(tag); err != nil {
		return nil, fmt.Errorf("failed to encode instruction discriminator: %w", err)
	}
	return buf.Bytes(), nil
}

func requireKeys(params map[string]solana.PublicKey) error {
	for name, key := range params {
		if key.IsZero() {
			return &PreconditionError{Param: name, Reason: "empty public key"}
		}
	}
	return nil
}

// NewCreateConfigAccountInstruction builds the instruction that creates the
// program's global config account.
//
// Account order is a contract with the on-chain program and must not change:
//
//	0. ammConfig      (writable)   config PDA being created
//	1. adminKey       (read-only)  authorization by key match, NOT a signer
//	2. payer          (signer, writable) pays the rent for the new account
//	3. pnlOwner       (read-only)
//	4. system program
//	5. rent sysvar
//
// The admin account deliberately carries no signer flag: the program
// authorizes by comparing the key against its baked-in admin, the way the
// current deployment checks it. Do not "fix" this without confirming the
// on-chain authorization path.
func NewCreateConfigAccountInstruction(
	program solana.PublicKey,
	adminKey solana.PublicKey,
	payer solana.PublicKey,
	ammConfig solana.PublicKey,
	pnlOwner solana.PublicKey,
) (solana.Instruction, error) {
	if err := requireKeys(map[string]solana.PublicKey{
		"program":    program,
		"admin_key":  adminKey,
		"payer":      payer,
		"amm_config": ammConfig,
		"pnl_owner":  pnlOwner,
	}); err != nil {
		return nil, err
	}

	data, err := encodeDiscriminator(InstructionCreateConfigAccount)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		solana.Meta(ammConfig).WRITE(),
		solana.Meta(adminKey),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(pnlOwner),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}

	return solana.NewInstruction(program, accounts, data), nil
}

// NewOwnerWithdrawInstruction builds the instruction that drains a pool's
// residual liquidity into the withdrawer's token accounts.
//
// Account order mirrors the withdrawal accounting on-chain:
//
//	 0. ammPool         (writable)
//	 1. ammAuthority    (read-only)  vault owner PDA
//	 2. ammOpenOrders   (writable)
//	 3. ammCoinVault    (writable)
//	 4. ammPcVault      (writable)
//	 5. coinMint        (read-only)
//	 6. pcMint          (read-only)
//	 7. userCoinToken   (writable)   withdrawer's coin ATA
//	 8. userPcToken     (writable)   withdrawer's pc ATA
//	 9. withdrawer      (read-only)  ownership check only
//	10. ammTargetOrders (writable)
//	11. payer           (signer)
func NewOwnerWithdrawInstruction(
	program solana.PublicKey,
	ammPool solana.PublicKey,
	ammAuthority solana.PublicKey,
	ammOpenOrders solana.PublicKey,
	coinMint solana.PublicKey,
	pcMint solana.PublicKey,
	ammCoinVault solana.PublicKey,
	ammPcVault solana.PublicKey,
	userCoinToken solana.PublicKey,
	userPcToken solana.PublicKey,
	withdrawer solana.PublicKey,
	ammTargetOrders solana.PublicKey,
	payer solana.PublicKey,
) (solana.Instruction, error) {
	if err := requireKeys(map[string]solana.PublicKey{
		"program":           program,
		"amm_pool":          ammPool,
		"amm_authority":     ammAuthority,
		"amm_open_orders":   ammOpenOrders,
		"coin_mint":         coinMint,
		"pc_mint":           pcMint,
		"amm_coin_vault":    ammCoinVault,
		"amm_pc_vault":      ammPcVault,
		"user_coin_token":   userCoinToken,
		"user_pc_token":     userPcToken,
		"withdrawer":        withdrawer,
		"amm_target_orders": ammTargetOrders,
		"payer":             payer,
	}); err != nil {
		return nil, err
	}

	data, err := encodeDiscriminator(InstructionOwnerWithdraw)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		solana.Meta(ammPool).WRITE(),
		solana.Meta(ammAuthority),
		solana.Meta(ammOpenOrders).WRITE(),
		solana.Meta(ammCoinVault).WRITE(),
		solana.Meta(ammPcVault).WRITE(),
		solana.Meta(coinMint),
		solana.Meta(pcMint),
		solana.Meta(userCoinToken).WRITE(),
		solana.Meta(userPcToken).WRITE(),
		solana.Meta(withdrawer),
		solana.Meta(ammTargetOrders).WRITE(),
		solana.Meta(payer).SIGNER(),
	}

	return solana.NewInstruction(program, accounts, data), nil
}
