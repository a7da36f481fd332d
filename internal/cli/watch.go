package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Innovate-group/tiendanubecli/internal/paths"
	"github.com/Innovate-group/tiendanubecli/internal/watcher"
)

var flagWatchPush bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the theme directory and mirror changes to the store",
	Long: `Watches the theme directory and uploads every saved file as you edit.
Created directories are mirrored, deleted files are removed remotely.
Individual failures are logged without ending the session. Stop with
Ctrl-C.`,
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

		if flagWatchPush {
			if err := service.UploadAll(ctx, settings.LocalDir, settings.RemoteDir); err != nil {
				return err
			}
		}

		translator, err := paths.NewTranslator(settings.LocalDir, settings.RemoteDir)
		if err != nil {
			return err
		}

		err = watcher.New(service, translator, log).Run(ctx)
		if errors.Is(err, context.Canceled) {
			log.Infow("watch session ended")
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().BoolVar(&flagWatchPush, "push", false, "upload the whole theme before watching")
	rootCmd.AddCommand(watchCmd)
}
