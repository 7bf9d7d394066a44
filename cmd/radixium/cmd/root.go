package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/fystack/radixium/pkg/client"
	"github.com/fystack/radixium/pkg/config"
	"github.com/fystack/radixium/pkg/keystore"
	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/txstore"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "radixium",
	Short: "Radix wallet client",
	Long:  "radixium drives a Radix wallet: balances, transfers, staking and transaction tracking against a remote node.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.SetEnvConfigPath(configPath)
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Environment, debug)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(validatorsCmd)
}

// newClient assembles a RadixClient from the loaded configuration. With
// login set the keystore password is prompted and a software wallet
// installed.
func newClient(ctx context.Context, login bool) (*client.RadixClient, error) {
	cfg := config.GetConfig()

	store, err := keystore.NewFileStore(cfg.KeystorePath)
	if err != nil {
		return nil, err
	}

	opts := client.Options{
		Nodes:        cfg.Nodes,
		NetworkID:    cfg.NetworkID,
		NetworkHRP:   cfg.NetworkHRP,
		Keystore:     store,
		PollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
	}

	c, err := client.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	if login {
		password, err := readPassword("Keystore password: ")
		if err != nil {
			return nil, err
		}
		if err := c.Login(password); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// openTxStore opens the local transaction cache at the configured path.
func openTxStore() (*txstore.Store, error) {
	return txstore.Open(config.DBPath(), nil)
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
