// Package commands implements the voiceice command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mohualzy/VoiceIce/internal/config"
	"github.com/mohualzy/VoiceIce/internal/printer"
)

var versionString = "dev"

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// Execute runs the command tree against the process streams.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// rootOptions is the state shared by every subcommand of one root.
type rootOptions struct {
	configFile string
	viper      *viper.Viper
	printer    *printer.Printer
	out        io.Writer
	errOut     io.Writer
}

// NewRootCmd builds a fresh command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	o := &rootOptions{
		viper:   viper.New(),
		printer: printer.New(out, errOut),
		out:     out,
		errOut:  errOut,
	}

	root := &cobra.Command{
		Use:   "voiceice",
		Short: "VoiceIce - reshape a voice by its temperature",
		Long: `VoiceIce stores uploads and recordings in a vault and renders them
through a temperature-controlled transform.

Below 1.0 a voice is cooled: slowed, lowered in pitch and low-passed.
Above 1.0 it is heated: sped up, raised in pitch and saturated.
Exactly 1.0 leaves it unchanged.`,
		Version: versionString,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "configuration file (default: voiceice.yaml in the user config dir)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to this file")
	flags.String("store", config.StoreDir, "vault persistence: none, dir or redis")
	flags.String("vault-dir", "", "directory for the dir store")
	flags.String("redis-addr", "", "address for the redis store")
	flags.String("cache-budget", "", "decode cache budget, e.g. 256MB (0 is unbounded)")
	flags.Bool("disk-cache", false, "keep decoded audio in a compressed disk tier")

	for key, flag := range map[string]string{
		config.KeyLogLevel:    "log-level",
		config.KeyLogFile:     "log-file",
		config.KeyStore:       "store",
		config.KeyVaultDir:    "vault-dir",
		config.KeyRedisAddr:   "redis-addr",
		config.KeyCacheBudget: "cache-budget",
		config.KeyCacheDisk:   "disk-cache",
	} {
		// Only explicitly set flags override config and environment.
		f := flags.Lookup(flag)
		if err := o.viper.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newRenderCmd(o),
		newRecordCmd(o),
		newVaultCmd(o),
		newReportCmd(o),
		newPlayCmd(o),
		newWatchCmd(o),
	)

	return root
}

// addTemperatureFlag registers the shared -t flag on cmd.
func addTemperatureFlag(cmd *cobra.Command) {
	cmd.Flags().Float64P("temperature", "t", 1.0, "temperature in [0.5, 2]")
}
