package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/waypkg/internal/cli"
	"github.com/glorpus-work/waypkg/pkg/errors"
)

const issueURL = "https://github.com/glorpus-work/waypkg/issues"

// Exit codes.
const (
	exitOK         = 0 // success or no match
	exitUsage      = 1 // bad invocation
	exitFailure    = 2 // known operational error
	exitAborted    = 3 // operator interrupt
	exitUnexpected = 4 // unanticipated fault
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd, flags := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	switch {
	case stderrors.Is(err, context.Canceled) || ctx.Err() != nil:
		fmt.Fprintln(os.Stderr, "Aborted.")
		return exitAborted
	case isUsageError(err):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	case isOperationalError(err):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	default:
		fmt.Fprintf(os.Stderr, "Unexpected error, please report it at %s\n", issueURL)
		if flags.Debug {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return exitUnexpected
	}
}

func isUsageError(err error) bool {
	return stderrors.Is(err, errors.ErrUsage) ||
		stderrors.Is(err, errors.ErrInvalidPattern)
}

func isOperationalError(err error) bool {
	known := []error{
		errors.ErrInvalidArchiveURL,
		errors.ErrMetadataParse,
		errors.ErrArtifactNotFound,
		errors.ErrRemoteMetadata,
		errors.ErrDestinationExists,
		errors.ErrTransfer,
		errors.ErrConfigParse,
		errors.ErrConfigValidation,
		errors.ErrEmptyConfigPath,
		fs.ErrNotExist,
		fs.ErrPermission,
	}
	for _, target := range known {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}
