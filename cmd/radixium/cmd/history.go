package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List locally cached submitted transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openTxStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no transactions recorded")
			return nil
		}
		for _, record := range records {
			fmt.Printf("%s  %-9s  %s  %s\n",
				record.SubmittedAt.Format("2006-01-02 15:04:05"),
				record.Status, record.TxID, record.Sender)
		}
		return nil
	},
}
