package main

import (
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers <ra>",
	Short: "List the member organisations of a Registration Agency",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviders,
}

func runProviders(cmd *cobra.Command, args []string) error {
	ra, err := router.Agency(args[0])
	if err != nil {
		return err
	}
	return emit(cmd, ra.Providers(cmd.Context()))
}
