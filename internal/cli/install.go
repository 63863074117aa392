package cli

import (
	"github.com/glorpus-work/waypkg/pkg/installer"
	"github.com/glorpus-work/waypkg/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd(g *GlobalFlags) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "install PATTERN [VERSION] [RELEASE]",
		Short: "Download and install matching packages",
		Long: `Search the archive index, stage the selected packages in a scratch
directory and hand the whole batch to pacman in a single invocation so
cross-package dependencies resolve correctly. Privileges are escalated
through sudo or su when not already running as root.`,
		Args: usageArgs(cobra.RangeArgs(1, 3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.buildApp()
			if err != nil {
				return err
			}
			pkgs, err := searchPackages(cmd.Context(), cmd, a, f, args)
			if err != nil || len(pkgs) == 0 {
				return err
			}
			orch := orchestrator.New(cmd.InOrStdin(), cmd.OutOrStdout(), a.log, installer.New(a.log))
			return orch.Install(cmd.Context(), pkgs, f.all)
		},
	}

	addSearchFlags(cmd, f)
	return cmd
}
