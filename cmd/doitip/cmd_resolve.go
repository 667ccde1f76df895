package main

import (
	"github.com/spf13/cobra"

	"doitip/internal/doira"
	"doitip/internal/format"
	"doitip/internal/identifier"
)

var resolveFlags struct {
	accept string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <doi>",
	Short: "Follow a DOI through doi.org and time every redirect hop",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveFlags.accept, "accept", "a", "*/*", "Accept header for the resolve requests")
}

// hopList renders a redirect chain as a table.
type hopList []doira.Hop

func (h hopList) Table(tb format.TableBuilder) {
	tb.Header("#", "Status", "Elapsed (ms)", "URL")
	for i, hop := range h {
		tb.Row(i+1, hop.Status, hop.ElapsedMS, hop.URL)
	}
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
	)
}

func runResolve(cmd *cobra.Command, args []string) error {
	id, err := identifier.RequireDOI(args[0])
	if err != nil {
		return err
	}
	hops, err := router.Resolve(cmd.Context(), id, resolveFlags.accept)
	if err != nil {
		return err
	}
	return emit(cmd, hopList(hops))
}
