package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <txID>",
	Short: "Show the status of a submitted transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context(), false)
		if err != nil {
			return err
		}

		status, err := c.Node().TransactionStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", status.TxID, status.Status)
		return nil
	},
}
