package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ababil/ababil/conf"
	"github.com/ababil/ababil/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "ababil",
		Short: "Cross-boundary HTTP client shim",
		Long: `ababil performs single synchronous HTTP requests on behalf of callers in
other runtimes (through its C ABI or as a WebAssembly host) and reports the
outcome as JSON. This command runs the same code path from a terminal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return preRun()
		},
		SilenceUsage: true,
	}
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, cancel := mainContext(context.Background())
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	var exitErr *exitError
	switch {
	case errors.As(err, &exitErr):
		log.Debug(ctx, "Exiting with module exit code", "code", exitErr.code)
		cancel()
		os.Exit(int(exitErr.code))
	case err != nil:
		cancel()
		os.Exit(1)
	}
}

func mainContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func preRun() error {
	if err := conf.InitConfig(cfgFile); err != nil {
		return err
	}
	return conf.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "configfile", "c", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().String("loglevel", viper.GetString("loglevel"), "log level, possible values: fatal, error, warn, info, debug, trace")
	rootCmd.PersistentFlags().Duration("timeout", viper.GetDuration("httpclient.timeout"), "timeout for a whole exchange, 0 for none")
	rootCmd.PersistentFlags().Int("max-redirects", viper.GetInt("httpclient.maxredirects"), "redirects to follow, 0 to return the redirect response")

	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))
	_ = viper.BindPFlag("httpclient.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("httpclient.maxredirects", rootCmd.PersistentFlags().Lookup("max-redirects"))
}
