package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <name>...",
	Aliases: []string{"remove"},
	Short:   "Remove installed packages",
	Long: `Remove packages from the vendor directory. Plugins are also dropped from the
plugin registry.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	for _, name := range args {
		pkg, err := ws.repo.Find(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  - Removing %s (%s)\n", pkg.PrettyName, pkg.Version)
		if err := ws.manager.Uninstall(ws.repo, pkg); err != nil {
			return fmt.Errorf("removing %s: %w", pkg.PrettyName, err)
		}
	}
	return nil
}
