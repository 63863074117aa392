package cli

import (
	"github.com/glorpus-work/waypkg/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd(g *GlobalFlags) *cobra.Command {
	f := &searchFlags{}
	var long bool

	cmd := &cobra.Command{
		Use:   "list PATTERN [VERSION] [RELEASE]",
		Short: "List matching packages",
		Long: `Search the archive index and print every match, without prompting for a
selection. The long form resolves each package's artifact URL and adds
size, modification time and URL.`,
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
			return orch.List(cmd.Context(), pkgs, long)
		},
	}

	addSearchFlags(cmd, f)
	cmd.Flags().BoolVarP(&long, "long", "l", false, "long listing with size, modification time and URL")
	return cmd
}
