package cli

import (
	"github.com/spf13/cobra"

	"github.com/Innovate-group/tiendanubecli/internal/paths"
)

var pullCmd = &cobra.Command{
	Use:   "pull [remote-file]",
	Short: "Download the theme from the store",
	Long: `Without arguments, recursively downloads the whole remote theme into
the theme directory. With a remote file path, downloads just that file;
relative paths are resolved against the configured remote path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		service, settings, err := buildService(log)
		if err != nil {
			return err
		}
		defer service.Shutdown()

		ctx, stop := signalContext()
		defer stop()

		if len(args) == 0 {
			return service.DownloadAll(ctx, settings.RemoteDir, settings.LocalDir)
		}

		translator, err := paths.NewTranslator(settings.LocalDir, settings.RemoteDir)
		if err != nil {
			return err
		}
		remote := translator.ResolveRemote(args[0])
		local, err := translator.ToLocal(remote)
		if err != nil {
			return err
		}
		return service.DownloadFile(ctx, remote, local)
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
