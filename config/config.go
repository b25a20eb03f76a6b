// Package config loads and validates the operator's settings file. The rest
// of the tool only ever sees a fully validated ClientConfig; every missing or
// malformed field is reported by name before any network call happens.
package config

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// ClientConfig is the validated form of the settings file. Address fields are
// parsed public keys; path and URL fields are non-empty strings.
type ClientConfig struct {
	// [Global]
	HTTPURL        string
	WSURL          string
	PayerPath      string
	AdminPath      string
	WithdrawerPath string
	AdminKey       solana.PublicKey
	AmmProgram     solana.PublicKey
	PnlOwner       solana.PublicKey
	Withdrawer     solana.PublicKey

	// [Withdraw]
	AmmPool         solana.PublicKey
	AmmOpenOrders   solana.PublicKey
	AmmCoinVault    solana.PublicKey
	AmmPcVault      solana.PublicKey
	AmmTargetOrders solana.PublicKey
	CoinMint        solana.PublicKey
	PcMint          solana.PublicKey
}

// ValidationError names a single settings field that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Reason)
}

// Load reads the INI settings file at path and validates every field,
// collecting all problems rather than stopping at the first one.
func Load(path string) (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	l := &loader{v: v}
	cfg := &ClientConfig{
		HTTPURL:        l.str("Global.http_url"),
		WSURL:          l.str("Global.ws_url"),
		PayerPath:      l.str("Global.payer_path"),
		AdminPath:      l.str("Global.admin_path"),
		WithdrawerPath: l.str("Global.withdrawer_path"),
		AdminKey:       l.pubkey("Global.admin_key"),
		AmmProgram:     l.pubkey("Global.amm_program"),
		PnlOwner:       l.pubkey("Global.pnl_owner"),
		Withdrawer:     l.pubkey("Global.withdrawer"),

		AmmPool:         l.pubkey("Withdraw.amm_pool"),
		AmmOpenOrders:   l.pubkey("Withdraw.amm_open_orders"),
		AmmCoinVault:    l.pubkey("Withdraw.amm_coin_vault"),
		AmmPcVault:      l.pubkey("Withdraw.amm_pc_vault"),
		AmmTargetOrders: l.pubkey("Withdraw.amm_target_orders"),
		CoinMint:        l.pubkey("Withdraw.coin_mint"),
		PcMint:          l.pubkey("Withdraw.pc_mint"),
	}

	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	return cfg, nil
}

type loader struct {
	v    *viper.Viper
	errs []error
}

func (l *loader) str(key string) string {
	val := l.v.GetString(key)
	if val == "" {
		l.errs = append(l.errs, &ValidationError{Field: key, Reason: "must not be empty"})
	}
	return val
}

func (l *loader) pubkey(key string) solana.PublicKey {
	val := l.v.GetString(key)
	if val == "" {
		l.errs = append(l.errs, &ValidationError{Field: key, Reason: "must not be empty"})
		return solana.PublicKey{}
	}
	pk, err := solana.PublicKeyFromBase58(val)
	if err != nil {
		l.errs = append(l.errs, &ValidationError{Field: key, Reason: fmt.Sprintf("not a valid public key: %v", err)})
		return solana.PublicKey{}
	}
	return pk
}
