package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show token balances of the active account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}

		address := c.Wallet().ActiveAccount().Address
		balances, err := c.Node().TokenBalances(cmd.Context(), address)
		if err != nil {
			return err
		}

		fmt.Printf("Account %s\n", address)
		if len(balances.TokenBalances) == 0 {
			fmt.Println("  no balances")
			return nil
		}
		for _, balance := range balances.TokenBalances {
			fmt.Printf("  %-12s %s\n", balance.RRI.Name(), balance.Amount.String())
		}
		return nil
	},
}
