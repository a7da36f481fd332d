package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Innovate-group/tiendanubecli/internal/linter"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Lint the theme's settings file",
	Long: `Checks the theme settings file for malformed element declarations,
missing required properties and duplicate variable names. Defaults to
config/settings.txt under the theme directory when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(flagDir, "config", "settings.txt")
		if len(args) == 1 {
			target = args[0]
		}

		result, err := linter.ValidateFile(target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "%s: %s\n", target, issue)
		}
		if result.HasErrors() {
			return fmt.Errorf("%s has validation errors", target)
		}
		if len(result.Issues) == 0 {
			fmt.Fprintf(out, "%s is valid\n", target)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
