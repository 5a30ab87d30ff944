package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents an installed package for display.
type listEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
	Path    string `json:"path"`
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	entries := []listEntry{}
	for _, pkg := range ws.repo.Packages() {
		path, err := ws.manager.InstallPath(pkg)
		if err != nil {
			return err
		}
		entries = append(entries, listEntry{
			Name:    pkg.PrettyName,
			Version: pkg.Version,
			Type:    pkg.PackageType(),
			Path:    path,
		})
	}

	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling list: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No packages installed.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headingStyle.Render("NAME")+"\t"+headingStyle.Render("VERSION")+"\t"+headingStyle.Render("TYPE"))
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Version, e.Type)
	}
	return w.Flush()
}
