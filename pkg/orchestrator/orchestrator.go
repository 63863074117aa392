//go:generate mockgen -package=mocks -destination=./mocks/orchestrator.go . Installer

// Package orchestrator turns a filtered package list into an interactive or
// bulk selection and dispatches the list, get and install actions.
package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/glorpus-work/waypkg/pkg/index"
)

// SelectAllToken is the interactive answer selecting every candidate.
const SelectAllToken = "all"

// Installer is the privileged batch-install collaborator.
type Installer interface {
	Install(ctx context.Context, files []string) error
}

// Orchestrator drives selection and action dispatch. In and Out are the
// operator's terminal during interactive selection; Out also receives the
// listing output.
type Orchestrator struct {
	In        io.Reader
	Out       io.Writer
	Log       *slog.Logger
	Installer Installer
}

// New creates an Orchestrator.
func New(in io.Reader, out io.Writer, log *slog.Logger, installer Installer) *Orchestrator {
	return &Orchestrator{
		In:        in,
		Out:       out,
		Log:       log,
		Installer: installer,
	}
}

// Select picks a subset of the candidates. A single candidate is selected
// without prompting, the all flag selects every candidate, and anything
// else prompts the operator. An empty answer (or end of input) aborts the
// selection with an empty result; that is a deliberate no-op, not an error.
func (o *Orchestrator) Select(pkgs []*index.Package, all bool) ([]*index.Package, error) {
	if len(pkgs) <= 1 || all {
		return pkgs, nil
	}

	for i, pkg := range pkgs {
		fmt.Fprintf(o.Out, "[%d] %s %s %s\n", i, pkg.Name, pkg.FullVersion(), pkg.Arch)
	}
	fmt.Fprintf(o.Out, "Select packages (indices separated by spaces, %q for everything, empty to abort): ", SelectAllToken)

	line, err := bufio.NewReader(o.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to read selection")
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		o.Log.Info("nothing selected")
		return nil, nil
	}
	if answer == SelectAllToken {
		return pkgs, nil
	}

	var selected []*index.Package
	for _, token := range strings.Fields(answer) {
		i, err := strconv.Atoi(token)
		if err != nil || i < 0 || i >= len(pkgs) {
			o.Log.Warn("ignoring invalid selection", "token", token)
			continue
		}
		selected = append(selected, pkgs[i])
	}
	return selected, nil
}

// List prints every package in pkgs without prompting. The short form shows
// name, full version and architecture; the long form resolves each artifact
// and adds size, modification time and URL.
func (o *Orchestrator) List(ctx context.Context, pkgs []*index.Package, long bool) error {
	for _, pkg := range pkgs {
		if !long {
			fmt.Fprintf(o.Out, "%s %s %s\n", pkg.Name, pkg.FullVersion(), pkg.Arch)
			continue
		}

		res, err := pkg.Resolve(ctx)
		if err != nil {
			return err
		}
		size, err := pkg.Size(ctx)
		if err != nil {
			return err
		}
		modified, err := pkg.LastModified(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(o.Out, "%s %s %s %d %s %s\n",
			pkg.Name, pkg.FullVersion(), pkg.Arch,
			size, modified.Format("2006-01-02 15:04:05"), res.URL())
	}
	return nil
}

// Get selects from pkgs and downloads each selected package into the
// current working directory. The first fetch failure aborts the remaining
// batch; there is no partial-success continuation.
func (o *Orchestrator) Get(ctx context.Context, pkgs []*index.Package, all bool) error {
	selected, err := o.Select(pkgs, all)
	if err != nil {
		return err
	}
	for _, pkg := range selected {
		if err := pkg.Fetch(ctx, false); err != nil {
			return err
		}
		filename, err := pkg.Filename(ctx)
		if err != nil {
			return err
		}
		o.Log.Info("downloaded", "file", filename)
	}
	return nil
}

// Install selects from pkgs, stages every selected package into a scratch
// directory and invokes the privileged install tool exactly once with the
// full batch, so cross-package dependency resolution works. The previous
// working directory is restored regardless of outcome and the scratch
// directory is discarded afterwards.
func (o *Orchestrator) Install(ctx context.Context, pkgs []*index.Package, all bool) error {
	selected, err := o.Select(pkgs, all)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return nil
	}

	prevDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "failed to determine working directory")
	}
	scratch, err := os.MkdirTemp("", "waypkg-install-")
	if err != nil {
		return errors.Wrap(err, "failed to create scratch directory")
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	if err := os.Chdir(scratch); err != nil {
		return errors.Wrap(err, "failed to enter scratch directory")
	}
	defer func() { _ = os.Chdir(prevDir) }()

	files := make([]string, 0, len(selected))
	for _, pkg := range selected {
		if err := pkg.Fetch(ctx, false); err != nil {
			return err
		}
		filename, err := pkg.Filename(ctx)
		if err != nil {
			return err
		}
		files = append(files, filename)
	}

	return o.Installer.Install(ctx, files)
}
