package main

import (
	"github.com/spf13/cobra"

	"doitip/internal/identifier"
)

var infoCmd = &cobra.Command{
	Use:   "info <doi>",
	Short: "Show the doi.org handle record for a DOI",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	id, err := identifier.RequireDOI(args[0])
	if err != nil {
		return err
	}
	doc, err := router.Handle(cmd.Context(), id)
	if err != nil {
		return lookupError(id, err)
	}
	return emit(cmd, doc)
}
