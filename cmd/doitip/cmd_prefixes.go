package main

import (
	"github.com/spf13/cobra"
)

var prefixesCmd = &cobra.Command{
	Use:   "prefixes <ra>",
	Short: "List the DOI prefixes a Registration Agency has issued",
	Long: `Lists the prefixes known to a Registration Agency (crossref, datacite or
medra). Agencies without a public listing answer with a 501 payload.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrefixes,
}

func runPrefixes(cmd *cobra.Command, args []string) error {
	ra, err := router.Agency(args[0])
	if err != nil {
		return err
	}
	return emit(cmd, ra.Prefixes(cmd.Context()))
}
