package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"doitip/internal/doira"
	"doitip/internal/identifier"
)

var raCmd = &cobra.Command{
	Use:   "ra <doi>",
	Short: "Show the doi.org Registration Agency record for a DOI",
	Args:  cobra.ExactArgs(1),
	RunE:  runRA,
}

func runRA(cmd *cobra.Command, args []string) error {
	id, err := identifier.RequireDOI(args[0])
	if err != nil {
		return err
	}
	doc, err := router.LookupRA(cmd.Context(), id)
	if err != nil {
		return lookupError(id, err)
	}
	return emit(cmd, doc)
}

// lookupError names the DOI when doi.org answers 404 without a JSON body.
func lookupError(id identifier.Identifier, err error) error {
	if doira.IsNotFound(err) {
		return fmt.Errorf("doi %s is not registered: %w", id, err)
	}
	return err
}
