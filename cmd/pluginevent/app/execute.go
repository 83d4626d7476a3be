package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/pluginevent/internal/cmd/output"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pluginevent",
		Short:   "Inspect and forward plugin events",
		Version: a.version,
		Long: `pluginevent builds, describes, and forwards the events that tool plugins
raise. Exportable event kinds can be written as envelopes for another tool
instance and imported back, where they are attributed to "External Tool".`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default is $HOME/.pluginevent.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "minimal output (warn logging)")
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "o", "", "output format: table, json, yaml")

	rootCmd.SetVersionTemplate("pluginevent {{.Version}}\n")

	rootCmd.AddCommand(
		a.newKindsCommand(),
		a.newDescribeCommand(),
		a.newExportCommand(),
		a.newImportCommand(),
		a.newRelayCommand(),
		a.newVersionCommand(),
	)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	if _, err := output.ParseFormat(a.format); err != nil {
		return err
	}
	return a.load()
}

// outputFormat returns the format for command output.
func (a *App) outputFormat() output.Format {
	return output.DetectFormat(a.format)
}
