package cli

import (
	"github.com/glorpus-work/waypkg/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewGetCmd creates the get command.
func NewGetCmd(g *GlobalFlags) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "get PATTERN [VERSION] [RELEASE]",
		Short: "Download matching packages into the current directory",
		Long: `Search the archive index and download the selected packages into the
current working directory. A detached signature is downloaded alongside
each package when the archive carries one.`,
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
			orch := orchestrator.New(cmd.InOrStdin(), cmd.OutOrStdout(), a.log, nil)
			return orch.Get(cmd.Context(), pkgs, f.all)
		},
	}

	addSearchFlags(cmd, f)
	return cmd
}
