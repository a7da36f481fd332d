package cli

import (
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the whole theme directory to the store",
	Long: `Recursively uploads every file under the theme directory to the
configured remote path. Files that fail after retries are logged and
skipped so one bad file does not stop the rest of the upload.`,
	Args: cobra.NoArgs,
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

		return service.UploadAll(ctx, settings.LocalDir, settings.RemoteDir)
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
