package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/glorpus-work/waypkg/internal/logger"
	"github.com/glorpus-work/waypkg/pkg/config"
	"github.com/glorpus-work/waypkg/pkg/index"
	"github.com/glorpus-work/waypkg/pkg/remote"
	"github.com/spf13/cobra"
)

// app bundles the collaborators a command needs, built once per invocation
// from config file, environment and flags.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	client  *remote.Client
	manager *index.Manager
}

// buildApp resolves the effective settings (flag > environment > config
// file > built-in default) and constructs the manager stack.
func (g *GlobalFlags) buildApp() (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	archiveURL := cfg.ArchiveURL
	if env := os.Getenv(config.EnvArchiveURL); env != "" {
		archiveURL = env
	}
	if g.URL != "" {
		archiveURL = g.URL
	}

	timeout := cfg.HTTPTimeout
	if g.Timeout > 0 {
		timeout = time.Duration(g.Timeout) * time.Second
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if g.Debug {
		level = slog.LevelDebug
	}
	log := logger.New(os.Stderr, level, !g.NoColor && logger.WantColor(os.Stderr))

	client := remote.NewClient(timeout, "waypkg/"+Version)

	cacheDir, err := cfg.IndexCacheDir()
	if err != nil {
		return nil, err
	}
	manager, err := index.NewManager(archiveURL, cacheDir, client, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		manager: manager,
	}, nil
}

func (g *GlobalFlags) loadConfig() (*config.Config, error) {
	path := g.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			// No resolvable home directory; run on defaults.
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// searchFlags are the flags shared by the get, list and install commands.
type searchFlags struct {
	update   bool
	noUpdate bool
	archs    []string
	allArch  bool
	all      bool
	newest   bool
}

func addSearchFlags(cmd *cobra.Command, f *searchFlags) {
	cmd.Flags().BoolVarP(&f.update, "update", "u", false, "force an index refresh")
	cmd.Flags().BoolVarP(&f.noUpdate, "no-update", "U", false, "never refresh the index")
	cmd.Flags().StringArrayVarP(&f.archs, "arch", "a", nil, "architecture filter (repeatable; default: machine architecture plus \"any\")")
	cmd.Flags().BoolVar(&f.allArch, "all-arch", false, "search across all architectures")
	cmd.Flags().BoolVarP(&f.all, "all", "A", false, "select every match without prompting")
	cmd.Flags().BoolVar(&f.newest, "newest", false, "keep only the newest version per package name")
}

// effectiveArchs drops empty tokens from an architecture filter. An
// explicitly empty filter (--arch=) therefore means unfiltered, the same as
// --all-arch.
func effectiveArchs(archs []string) []string {
	out := make([]string, 0, len(archs))
	for _, arch := range archs {
		if arch != "" {
			out = append(out, arch)
		}
	}
	return out
}

func (f *searchFlags) policy() index.UpdatePolicy {
	switch {
	case f.update:
		return index.PolicyForce
	case f.noUpdate:
		return index.PolicyNever
	default:
		return index.PolicyConditional
	}
}

// searchPackages refreshes and loads the index, then runs the search built
// from the positional arguments (PATTERN [VERSION] [RELEASE]).
func searchPackages(ctx context.Context, cmd *cobra.Command, a *app, f *searchFlags, args []string) ([]*index.Package, error) {
	crit := index.SearchCriteria{Name: args[0]}
	if len(args) > 1 {
		crit.Version = args[1]
	}
	if len(args) > 2 {
		crit.Release = args[2]
	}

	crit.Archs = a.cfg.Architectures
	if cmd.Flags().Changed("arch") {
		crit.Archs = f.archs
	}
	if f.allArch {
		crit.Archs = nil
	}
	crit.Archs = effectiveArchs(crit.Archs)

	if err := a.manager.Refresh(ctx, f.policy()); err != nil {
		return nil, err
	}
	pkgs, err := a.manager.Search(ctx, crit)
	if err != nil {
		return nil, err
	}
	if f.newest {
		pkgs = index.FilterNewest(pkgs)
	}
	if len(pkgs) == 0 {
		a.log.Info("no packages match", "pattern", args[0])
	}
	return pkgs, nil
}
