// Package errors defines the error taxonomy shared across waypkg.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrInvalidArchiveURL = fmt.Errorf("archive URL must end with a slash")
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")

	// Index and package errors.
	ErrMetadataParse    = fmt.Errorf("index entry does not match package grammar")
	ErrArtifactNotFound = fmt.Errorf("no package artifact found")
	ErrInvalidPattern   = fmt.Errorf("invalid search pattern")

	// Remote errors.
	ErrRemoteMetadata    = fmt.Errorf("failed to read remote metadata")
	ErrDestinationExists = fmt.Errorf("destination file already exists")
	ErrTransfer          = fmt.Errorf("transfer failed")

	// CLI errors.
	ErrUsage = fmt.Errorf("usage error")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
