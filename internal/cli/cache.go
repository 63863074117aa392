package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with its subcommands.
func NewCacheCmd(g *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cached archive index",
	}

	cmd.AddCommand(
		newCacheInfoCmd(g),
		newCacheCleanCmd(g),
	)
	return cmd
}

func newCacheInfoCmd(g *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show path, size and age of the cached index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.buildApp()
			if err != nil {
				return err
			}
			info, err := a.manager.CacheInfo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path: %s\n", info.Path)
			fmt.Fprintf(out, "Size: %d bytes\n", info.Size)
			fmt.Fprintf(out, "Updated: %s (%s ago)\n",
				info.ModTime.Format("2006-01-02 15:04:05"), info.Age.Round(time.Second))
			return nil
		},
	}
}

func newCacheCleanCmd(g *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the cached index",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := g.buildApp()
			if err != nil {
				return err
			}
			if err := a.manager.CleanCache(); err != nil {
				return err
			}
			a.log.Info("index cache removed", "path", a.manager.IndexPath())
			return nil
		},
	}
}
