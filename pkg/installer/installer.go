// Package installer invokes the system package tool (pacman) on a batch of
// downloaded package files, escalating privileges through sudo or su when
// needed.
package installer

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/glorpus-work/waypkg/pkg/errors"
)

// InstallTool is the privileged package tool the batch is handed to.
const InstallTool = "pacman"

// Installer runs the privileged install invocation.
type Installer struct {
	log *slog.Logger

	// Indirections for tests.
	geteuid  func() int
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// New creates an Installer.
func New(log *slog.Logger) *Installer {
	return &Installer{
		log:      log,
		geteuid:  os.Geteuid,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// Install invokes pacman -U exactly once with all files, so pacman resolves
// cross-package dependencies within the batch.
func (i *Installer) Install(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	name, args := i.command(files)
	i.log.Debug("running install command", "command", name, "args", args)
	if err := i.run(ctx, name, args...); err != nil {
		return errors.Wrapf(err, "%s invocation failed", InstallTool)
	}
	return nil
}

// command builds the install invocation. Without root privileges it prefers
// sudo, then su; when neither helper is on the PATH the attempt proceeds
// unescalated after reporting the problem (best-effort escalation).
func (i *Installer) command(files []string) (string, []string) {
	pacmanArgs := append([]string{"-U"}, files...)
	if i.geteuid() == 0 {
		return InstallTool, pacmanArgs
	}

	if path, err := i.lookPath("sudo"); err == nil {
		return path, append([]string{InstallTool}, pacmanArgs...)
	}
	if path, err := i.lookPath("su"); err == nil {
		shellCmd := strings.Join(append([]string{InstallTool}, pacmanArgs...), " ")
		return path, []string{"root", "-c", shellCmd}
	}

	i.log.Error("no privilege escalation helper found on PATH (tried sudo, su), attempting unescalated install")
	return InstallTool, pacmanArgs
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
