package cmd

import (
	"fmt"

	"github.com/fystack/radixium/pkg/config"
	"github.com/spf13/cobra"
)

var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List registered validators",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context(), false)
		if err != nil {
			return err
		}

		validators, err := c.Node().Validators(cmd.Context(), "", config.HistoryPageSize())
		if err != nil {
			return err
		}
		for _, v := range validators {
			fmt.Printf("%-30s  stake=%s  uptime=%s%%  %s\n",
				v.Name, v.TotalDelegated.String(), v.UptimePercent.String(), v.Address)
		}
		return nil
	},
}
