package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pawkit/pawx/internal/plugin"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var pluginsJSON bool

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect the plugin registry",
	Long: `Inspect the plugin registry file (pawx/plugins.yaml inside the vendor
directory) that host applications read to load installed plugins.`,
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins",
	RunE:  runPluginsList,
}

var pluginsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the registry entry of a plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsShow,
}

var pluginsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that registered base paths and aliases exist",
	RunE:  runPluginsCheck,
}

var pluginsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the registry whenever it changes",
	RunE:  runPluginsWatch,
}

func init() {
	pluginsListCmd.Flags().BoolVar(&pluginsJSON, "json", false, "Output in JSON format")
	pluginsCmd.AddCommand(pluginsListCmd, pluginsShowCmd, pluginsCheckCmd, pluginsWatchCmd)
	rootCmd.AddCommand(pluginsCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	reg, err := ws.store.Cached()
	if err != nil {
		return err
	}
	return printRegistry(cmd.OutOrStdout(), reg, pluginsJSON)
}

func printRegistry(out io.Writer, reg plugin.Registry, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(reg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling registry: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(reg) == 0 {
		fmt.Fprintln(out, "No plugins registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headingStyle.Render("PACKAGE")+"\t"+headingStyle.Render("HANDLE")+"\t"+
		headingStyle.Render("VERSION")+"\t"+headingStyle.Render("CLASS"))
	for _, name := range sortedNames(reg) {
		rec := reg[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, rec.Handle, rec.Version, rec.Class)
	}
	return w.Flush()
}

func runPluginsShow(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	reg, err := ws.store.Cached()
	if err != nil {
		return err
	}

	// Registry keys are lowercase package names.
	name := strings.ToLower(strings.TrimSpace(args[0]))
	rec, ok := reg[name]
	if !ok {
		return fmt.Errorf("plugin %s is not registered", name)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render(name))
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return enc.Close()
}

func runPluginsCheck(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	reg, err := ws.store.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := 0
	for _, name := range sortedNames(reg) {
		rec := reg[name]
		if !dirExists(rec.BasePath) {
			fmt.Fprintln(out, problemStyle.Render(fmt.Sprintf("✗ %s: base path %s does not exist", name, rec.BasePath)))
			problems++
		}
		for _, alias := range rec.Aliases {
			if !dirExists(alias.Path) {
				fmt.Fprintln(out, problemStyle.Render(fmt.Sprintf("✗ %s: alias %s points to missing %s", name, alias.Name, alias.Path)))
				problems++
			}
		}
		if !plugin.ValidHandle(rec.Handle) {
			fmt.Fprintln(out, problemStyle.Render(fmt.Sprintf("✗ %s: invalid handle %q", name, rec.Handle)))
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found in %s", problems, ws.store.File())
	}
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ %d plugin(s) OK", len(reg))))
	return nil
}

func runPluginsWatch(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	show := func() {
		reg, err := ws.store.Cached()
		if err != nil {
			ws.log.WithError(err).Warn("reading plugin registry")
			return
		}
		_ = printRegistry(out, reg, false)
	}

	show()
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", ws.store.File())
	return ws.store.Watch(ctx, show)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func sortedNames(reg plugin.Registry) []string {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
