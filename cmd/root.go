package cmd

import (
	"context"
	"fmt"
	"os"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"makidex-cli/config"
	makidex_amm "makidex-cli/solana"
)

var rootCmd = &cobra.Command{
	Use:   "makidex-cli",
	Short: "Administer the makidex AMM program on Solana.",
	Long: `Operator tool for the makidex AMM. It creates the program's global
config account and withdraws a pool's residual liquidity to the designated
withdrawer. Both operations are privileged and irreversible.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var createConfigCmd = &cobra.Command{
	Use:   "create-config-account",
	Short: "Create the program's global AMM config account.",
	RunE:  runCreateConfigAccount,
}

var ownerWithdrawCmd = &cobra.Command{
	Use:   "owner-withdraw-pool",
	Short: "Withdraw a pool's residual liquidity to the withdrawer's token accounts.",
	RunE:  runOwnerWithdrawPool,
}

func init() {
	rootCmd.AddCommand(createConfigCmd)
	rootCmd.AddCommand(ownerWithdrawCmd)
}

// Execute runs the command tree. The confirmed transaction signature is the
// only line written to stdout; everything else goes to stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf("❌ %v", err)))
		os.Exit(1)
	}
}

func printBanner() {
	banner := figure.NewFigure("MAKIDEX", "larry3d", true)
	fmt.Fprintln(os.Stderr, titleStyle.Render(banner.String()))
}

// loadPipeline loads the validated settings and all three keypairs, and
// builds the protocol client. The admin and withdrawer keys are loaded and
// checked even though the current on-chain contract only requires the payer
// signature, matching the deployed authorization model.
func loadPipeline() (*config.ClientConfig, *makidex_amm.Client, error) {
	cfg, err := config.Load(settingsPath())
	if err != nil {
		return nil, nil, err
	}

	payer, err := makidex_amm.LoadKeypairFile(cfg.PayerPath)
	if err != nil {
		return nil, nil, err
	}
	if _, err := makidex_amm.LoadKeypairFile(cfg.AdminPath); err != nil {
		return nil, nil, err
	}
	if _, err := makidex_amm.LoadKeypairFile(cfg.WithdrawerPath); err != nil {
		return nil, nil, err
	}

	client := makidex_amm.NewClient(rpcEndpoint(cfg), payer)
	return cfg, client, nil
}

func runCreateConfigAccount(cmd *cobra.Command, args []string) error {
	printBanner()
	log := logrus.WithField("command", "create-config-account")

	cfg, client, err := loadPipeline()
	if err != nil {
		return err
	}

	ammConfig, bump, err := makidex_amm.FindAmmConfigAddress(cfg.AmmProgram)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"amm_config": ammConfig.String(),
		"bump":       bump,
	}).Info("derived AMM config address")

	instruction, err := makidex_amm.NewCreateConfigAccountInstruction(
		cfg.AmmProgram,
		cfg.AdminKey,
		client.Payer.PublicKey(),
		ammConfig,
		cfg.PnlOwner,
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, promptStyle.Render("Submitting create-config-account transaction..."))
	sig, err := client.Submit(context.Background(), instruction, nil, true)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, successStyle.Render("✅ Config account created."))
	fmt.Println(sig.String())
	return nil
}

func runOwnerWithdrawPool(cmd *cobra.Command, args []string) error {
	printBanner()
	log := logrus.WithField("command", "owner-withdraw-pool")

	cfg, client, err := loadPipeline()
	if err != nil {
		return err
	}

	ammAuthority, bump, err := makidex_amm.FindAmmAuthorityAddress(cfg.AmmProgram)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"amm_authority": ammAuthority.String(),
		"bump":          bump,
	}).Info("derived AMM authority address")

	userCoinToken, err := makidex_amm.FindAssociatedTokenAddress(cfg.Withdrawer, cfg.CoinMint)
	if err != nil {
		return err
	}
	userPcToken, err := makidex_amm.FindAssociatedTokenAddress(cfg.Withdrawer, cfg.PcMint)
	if err != nil {
		return err
	}

	instruction, err := makidex_amm.NewOwnerWithdrawInstruction(
		cfg.AmmProgram,
		cfg.AmmPool,
		ammAuthority,
		cfg.AmmOpenOrders,
		cfg.CoinMint,
		cfg.PcMint,
		cfg.AmmCoinVault,
		cfg.AmmPcVault,
		userCoinToken,
		userPcToken,
		cfg.Withdrawer,
		cfg.AmmTargetOrders,
		client.Payer.PublicKey(),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, promptStyle.Render(fmt.Sprintf(
		"Submitting owner-withdraw transaction for pool %s...", cfg.AmmPool.String())))
	sig, err := client.Submit(context.Background(), instruction, nil, true)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, successStyle.Render("✅ Pool liquidity withdrawn."))
	fmt.Println(sig.String())
	return nil
}
