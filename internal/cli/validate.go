package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pawkit/pawx/internal/manifest"
	"github.com/pawkit/pawx/internal/plugin"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a package manifest",
	Long: `Validate a package.yaml (or a directory containing one) against the manifest
schema. For packages of type "plugin" the plugin metadata is checked as well,
using the package directory as the install directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, manifest.FileName)
	}
	out := cmd.OutOrStdout()

	result, err := manifest.ValidateFile(path)
	if err != nil {
		return err
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			fmt.Fprintln(out, problemStyle.Render("✗ "+issue.String()))
		}
		return fmt.Errorf("%s: %d schema issue(s)", path, len(result.Issues))
	}

	pkg, err := manifest.ParseFile(path)
	if err != nil {
		return err
	}

	if pkg.PackageType() == manifest.TypePlugin {
		extractor := plugin.NewExtractor(filepath.Dir(pkg.SourceDir), plugin.NewConsoleIO(cmd.ErrOrStderr()))
		rec, err := extractor.Extract(pkg, pkg.SourceDir)
		var invalid *plugin.InvalidPluginError
		if errors.As(err, &invalid) {
			fmt.Fprintln(out, problemStyle.Render("✗ "+invalid.Reason))
			return err
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  class:    %s\n  handle:   %s\n  basePath: %s\n", rec.Class, rec.Handle, rec.BasePath)
		for _, alias := range rec.Aliases {
			fmt.Fprintf(out, "  alias:    %s => %s\n", alias.Name, alias.Path)
		}
	}

	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ %s (%s) is valid", pkg.PrettyName, pkg.PackageType())))
	return nil
}
