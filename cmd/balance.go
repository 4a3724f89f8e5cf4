package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet address and its AR balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Address: %s\n", a.address)
		fmt.Printf("AR Token Balance: %s\n", a.workflow.RefreshBalance(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
