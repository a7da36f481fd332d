// Package cli implements the tiendanube command surface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Innovate-group/tiendanubecli/internal/config"
	"github.com/Innovate-group/tiendanubecli/internal/logging"
	"github.com/Innovate-group/tiendanubecli/internal/transfer"
)

var (
	flagDir     string
	flagEnvFile string
	flagVerbose bool

	rootCmd = &cobra.Command{
		Use:   "tiendanube",
		Short: "Sync Tiendanube theme files with your store over FTP",
		Long: `tiendanube keeps a local theme directory synchronized with the store's
FTP space. It can push or pull the whole theme, watch the directory and
mirror every change as you edit, and validate the theme's
config/settings.txt file.

Connection settings are read from a .env file in the theme directory
(created by "tiendanube init") and from FTP_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command and renders classified errors as a single
// readable line, with the underlying cause in verbose mode.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var cerr *transfer.ClassifiedError
		if errors.As(err, &cerr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cerr)
			if flagVerbose && cerr.Cause != nil {
				fmt.Fprintf(os.Stderr, "Caused by: %v\n", cerr.Cause)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", ".", "theme directory")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "credentials file (default is <dir>/.env)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
}

// newLogger builds the console logger honoring --verbose.
func newLogger() *zap.SugaredLogger {
	return logging.New(flagVerbose)
}

// buildService loads the configuration and wires a transfer service over
// a fresh connection manager. The caller owns the returned service and
// must call Shutdown.
func buildService(log *zap.SugaredLogger) (*transfer.Service, config.Settings, error) {
	settings, err := config.Load(flagDir, flagEnvFile)
	if err != nil {
		return nil, config.Settings{}, err
	}

	cfg := settings.FTP
	cfg.Debug = cfg.Debug || flagVerbose

	manager := transfer.NewConnManager(cfg, transfer.Dial, log)
	return transfer.NewService(manager, cfg, log), settings, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
