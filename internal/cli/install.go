package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <name[:constraint]>...",
	Short: "Install packages from the configured sources",
	Long: `Install one or more packages into the vendor directory. Each argument names a
package, optionally followed by a semver constraint (e.g. acme/foo:^1.2). The
highest matching version across all sources is installed. Packages of type
"plugin" are also recorded in the plugin registry; a plugin with invalid
metadata is removed again and the command fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	installed := 0
	for _, request := range args {
		cand, err := ws.resolve(request)
		if err != nil {
			return err
		}
		pkg := cand.Package

		if existing, err := ws.repo.Find(pkg.Name()); err == nil {
			if existing.Version == pkg.Version {
				fmt.Fprintf(out, "  - %s (%s) is already installed\n", pkg.PrettyName, pkg.Version)
				continue
			}
			return fmt.Errorf("%s %s is installed; use '%s update %s' to change versions",
				existing.PrettyName, existing.Version, rootCmd.Name(), request)
		}

		fmt.Fprintf(out, "  - Installing %s (%s)\n", pkg.PrettyName, pkg.Version)
		if err := ws.manager.Install(ws.repo, pkg); err != nil {
			return fmt.Errorf("installing %s: %w", pkg.PrettyName, err)
		}
		installed++
	}

	if installed > 0 {
		fmt.Fprintf(out, "✓ Installed %d package(s) into %s\n", installed, ws.vendorDir)
	}
	return nil
}
