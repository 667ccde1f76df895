package main

import (
	"github.com/spf13/cobra"

	"doitip/internal/identifier"
	"doitip/internal/logging"
)

var metaCmd = &cobra.Command{
	Use:   "meta <doi>",
	Short: "Fetch handle, prefix and metadata records from the DOI's Registration Agency",
	Long: `Looks up the Registration Agency for the DOI at doi.org, then queries that
agency for the handle record, the publisher of the DOI prefix and the
metadata record. The three lookups run in parallel and a failure in one is
reported in its own slot without affecting the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeta,
}

func runMeta(cmd *cobra.Command, args []string) error {
	id, err := identifier.RequireDOI(args[0])
	if err != nil {
		return err
	}
	ra, err := router.DOIRA(cmd.Context(), id)
	if err != nil {
		return err
	}
	logging.New("cli").Info("registration agency", "doi", id.String(), "ra", ra.Name())
	return emit(cmd, ra.Info(cmd.Context(), id))
}
