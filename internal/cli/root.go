// Package cli wires the cobra command tree. Commands receive their
// collaborators through an explicitly built application context instead of
// package-level state.
package cli

import (
	"fmt"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/spf13/cobra"
)

// GlobalFlags carries the root-level flags shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	URL        string
	Timeout    int
	Debug      bool
	NoColor    bool
}

// NewRootCmd creates the root command and the flag set backing it. The
// returned GlobalFlags stay valid after execution so the caller can inspect
// them (e.g. for debug error reporting).
func NewRootCmd() (*cobra.Command, *GlobalFlags) {
	flags := &GlobalFlags{}

	cmd := &cobra.Command{
		Use:   "waypkg",
		Short: "Search, download and install historical packages from a flat-file archive",
		Long: `waypkg searches the Arch Linux Archive's flat package mirror through a
locally cached index, downloads historical package builds and installs
them through pacman.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// The root command takes no positionals of its own, so a mistyped
		// subcommand fails validation here and classifies as a usage error.
		// The RunE keeps the root runnable; cobra skips positional
		// validation for non-runnable commands.
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().StringVar(&flags.URL, "url", "", "archive base URL (overrides WAYPKG_URL and the config file)")
	cmd.PersistentFlags().IntVarP(&flags.Timeout, "timeout", "t", 0, "connection timeout in seconds")
	cmd.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable colored output")

	// Flag parse failures are usage errors, not operational ones.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errors.ErrUsage, err)
	})

	cmd.AddCommand(
		NewGetCmd(flags),
		NewListCmd(flags),
		NewInstallCmd(flags),
		NewCacheCmd(flags),
		NewConfigCmd(flags),
		NewVersionCmd(),
	)

	return cmd, flags
}

// usageArgs classifies positional-argument validation failures as usage
// errors so they map to the usage exit code.
func usageArgs(wrapped cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := wrapped(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrUsage, err)
		}
		return nil
	}
}
