package main

import (
	"github.com/spf13/cobra"

	"doitip/internal/format"
)

var rasCmd = &cobra.Command{
	Use:   "ras",
	Short: "List the names of the supported Registration Agencies",
	Long: `Lists the lowercase names accepted by the prefixes and providers
commands.`,
	Args: cobra.NoArgs,
	RunE: runRAs,
}

type raList []string

func (l raList) Table(tb format.TableBuilder) {
	tb.Header("Registration Agency")
	for _, name := range l {
		tb.Row(name)
	}
}

func runRAs(cmd *cobra.Command, _ []string) error {
	kinds := router.List()
	names := make(raList, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.Key())
	}
	return emit(cmd, names)
}
