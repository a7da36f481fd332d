package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the store's FTP server accepts the configured credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()
		defer log.Sync()

		service, settings, err := buildService(log)
		if err != nil {
			return err
		}
		defer service.Shutdown()

		ctx, stop := signalContext()
		defer stop()

		if err := service.TestConnection(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s as %s\n", settings.FTP.Host, settings.FTP.User)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
