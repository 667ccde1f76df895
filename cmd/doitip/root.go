// doitip resolves DOIs and queries the Registration Agencies behind them.
//
// Usage:
//
//	doitip resolve <doi> [-a <accept>]
//	doitip ra <doi>
//	doitip info <doi>
//	doitip meta <doi>
//	doitip prefixes <ra>
//	doitip providers <ra>
//	doitip ras
//	doitip serve
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"doitip/internal/config"
	"doitip/internal/doira"
	"doitip/internal/format"
	"doitip/internal/logging"
	"doitip/internal/tracing"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	output    string
	logLevel  string
	logFormat string
	timeout   time.Duration
}

// Set up by PersistentPreRunE for every command.
var (
	cfg    config.Config
	router *doira.Router
	traces *tracing.Provider
)

var rootCmd = &cobra.Command{
	Use:   "doitip",
	Short: "Resolve DOIs and query their Registration Agencies",
	Long: `doitip parses DOI strings, asks doi.org which Registration Agency
(Crossref, DataCite or mEDRA) governs them, and fetches handle, prefix and
metadata records from that agency's public API.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	d := config.Defaults()
	f := rootCmd.PersistentFlags()
	f.StringVarP(&rootFlags.config, "config", "c", "", "config file (default: "+config.DefaultPath()+")")
	f.StringVarP(&rootFlags.output, "output", "o", d.Output, "output format: json, yaml, table or markdown")
	f.StringVar(&rootFlags.logLevel, "log-level", d.Log.Level, "log level: debug, info, warn or error")
	f.StringVar(&rootFlags.logFormat, "log-format", d.Log.Format, "log format: text or json")
	f.DurationVar(&rootFlags.timeout, "timeout", d.Timeout, "timeout for each HTTP request")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(raCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(prefixesCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(rasCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	f := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"output":     "output",
		"log.level":  "log-level",
		"log.format": "log-format",
		"timeout":    "timeout",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	var err error
	cfg, err = config.Load(v, rootFlags.config)
	if err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	slog.SetDefault(slog.Default().With(slog.String("invocation", uuid.NewString())))

	traces, err = tracing.NewProvider(cmd.Context(), cfg.Tracing, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "doitip/" + version
	}
	client := doira.NewClient(
		doira.WithEndpoints(cfg.Endpoints),
		doira.WithTimeout(cfg.Timeout),
		doira.WithUserAgent(userAgent),
		doira.WithLogger(logging.New("doira")),
		doira.WithTracer(traces.Tracer()),
	)
	router = doira.NewRouter(client, doira.WithRACache(cfg.RACacheTTL))
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if traces == nil {
		return nil
	}
	return traces.Shutdown(cmd.Context())
}

// emit writes v to the command's stdout in the configured output format.
func emit(cmd *cobra.Command, v any) error {
	mode, err := format.ParseMode(cfg.Output)
	if err != nil {
		return err
	}
	return format.Write(cmd.OutOrStdout(), mode, v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
