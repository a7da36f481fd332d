package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Innovate-group/tiendanubecli/internal/config"
	"github.com/Innovate-group/tiendanubecli/internal/transfer"
)

var flagInitSkipTest bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up FTP credentials for a theme directory",
	Long: `Walks through the store's FTP credentials and saves them to a .env
file in the theme directory. Existing values are offered as defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()
		defer log.Sync()

		// Best effort: an incomplete or absent .env still seeds defaults.
		defaults := transfer.Config{}
		if settings, err := config.Load(flagDir, flagEnvFile); err == nil {
			defaults = settings.FTP
		}

		cfg, err := runWizard(defaults)
		if err != nil {
			return err
		}

		path, err := config.Write(flagDir, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials to %s\n", path)

		if flagInitSkipTest {
			return nil
		}

		ctx, stop := signalContext()
		defer stop()

		manager := transfer.NewConnManager(cfg, transfer.Dial, log)
		service := transfer.NewService(manager, cfg, log)
		defer service.Shutdown()

		if err := service.TestConnection(ctx); err != nil {
			return fmt.Errorf("credentials saved, but the connection test failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s as %s\n", cfg.Host, cfg.User)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&flagInitSkipTest, "skip-test", false, "do not test the connection after saving")
	rootCmd.AddCommand(initCmd)
}
