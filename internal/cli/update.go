package cli

import (
	"fmt"

	"github.com/pawkit/pawx/internal/manifest"
	"github.com/pawkit/pawx/internal/source"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [name[:constraint]]...",
	Short: "Update installed packages",
	Long: `Move installed packages to the highest version available in the configured
sources that satisfies the given constraint. Without arguments every installed
package is updated. A constraint may also select an older version, in which
case the package is downgraded.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	requests := args
	if len(requests) == 0 {
		for _, pkg := range ws.repo.Packages() {
			requests = append(requests, pkg.Name())
		}
	}
	if len(requests) == 0 {
		fmt.Fprintln(out, "No packages installed.")
		return nil
	}

	changed := 0
	for _, request := range requests {
		req := source.ParseRequest(request)
		initial, err := ws.repo.Find(req.Name)
		if err != nil {
			return err
		}
		cand, err := ws.resolve(request)
		if err != nil {
			return err
		}
		target := cand.Package

		verb, err := updateVerb(initial, target)
		if err != nil {
			return err
		}
		if verb == "" {
			fmt.Fprintf(out, "  - %s is up to date (%s)\n", initial.PrettyName, initial.Version)
			continue
		}

		fmt.Fprintf(out, "  - %s %s (%s => %s)\n", verb, target.PrettyName, initial.Version, target.Version)
		if err := ws.manager.Update(ws.repo, initial, target); err != nil {
			return fmt.Errorf("updating %s: %w", target.PrettyName, err)
		}
		changed++
	}

	if changed > 0 {
		fmt.Fprintf(out, "✓ Updated %d package(s)\n", changed)
	}
	return nil
}

// updateVerb returns "Upgrading", "Downgrading" or "" when the versions are
// equal.
func updateVerb(initial, target *manifest.Package) (string, error) {
	cmp, err := manifest.CompareVersions(initial.Version, target.Version)
	if err != nil {
		return "", fmt.Errorf("comparing versions of %s: %w", initial.PrettyName, err)
	}
	switch {
	case cmp < 0:
		return "Upgrading", nil
	case cmp > 0:
		return "Downgrading", nil
	default:
		return "", nil
	}
}
