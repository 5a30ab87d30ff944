package cli

import (
	"github.com/pawkit/pawx/internal/branding"
	"github.com/pawkit/pawx/internal/config"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagVendorDir string
	flagSources   []string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs packages from local sources into a vendor directory and keeps
a registry of installed plugins (class, base path, handle and namespace aliases)
that host applications load at startup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagVendorDir, "vendor-dir", "", "Install root (default \"vendor\", or "+branding.EnvVar(config.KeyVendorDir)+")")
	flags.StringArrayVar(&flagSources, "source", nil, "Package source directory, optionally name=dir (repeatable)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
