package cmd

import (
	"fmt"

	"github.com/fystack/radixium/pkg/tracker"
	"github.com/fystack/radixium/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	transferTo     string
	transferAmount string
	transferRRI    string
	transferYes    bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens to another account",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(transferAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", transferAmount, err)
		}

		c, err := newClient(cmd.Context(), true)
		if err != nil {
			return err
		}

		tracking, err := c.TransferTokens(cmd.Context(),
			types.AccountAddress(transferTo), amount, types.RRI(transferRRI),
			tracker.Options{SkipConfirmation: transferYes})
		if err != nil {
			return err
		}

		if !transferYes {
			confirmations, cancel := tracking.ConfirmationRequests()
			defer cancel()
			go func() {
				for request := range confirmations {
					fmt.Printf("About to sign %d bytes (%d instructions). Proceed? [y/N] ",
						request.Tx.ByteCount, request.Tx.InstructionCount)
					var answer string
					fmt.Scanln(&answer)
					if answer == "y" || answer == "Y" {
						request.Confirm()
					} else {
						tracking.Cancel()
					}
				}
			}()
		}

		events, cancelEvents := tracking.Events()
		defer cancelEvents()
		go func() {
			for ev := range events {
				if ev.IsError() {
					fmt.Printf("  ! %s: %v\n", ev.Phase, ev.Err)
					continue
				}
				fmt.Printf("  → %s\n", ev.Phase)
			}
		}()

		result := <-tracking.Completion()
		if result.Err != nil {
			return result.Err
		}
		fmt.Printf("Confirmed: %s\n", result.TxID)
		return nil
	},
}

func init() {
	transferCmd.Flags().StringVar(&transferTo, "to", "", "recipient account address")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "token amount")
	transferCmd.Flags().StringVar(&transferRRI, "rri", "", "resource identifier of the token")
	transferCmd.Flags().BoolVarP(&transferYes, "yes", "y", false, "skip the confirmation prompt")
	transferCmd.MarkFlagRequired("to")
	transferCmd.MarkFlagRequired("amount")
	transferCmd.MarkFlagRequired("rri")
}
