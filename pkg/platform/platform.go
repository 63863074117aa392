// Package platform maps the running machine onto the architecture names the
// archive uses for its package artifacts.
package platform

import "runtime"

// AnyArch is the architecture-independent package architecture.
const AnyArch = "any"

// MachineArch returns the archive architecture name for the current machine.
func MachineArch() string {
	return NormalizeArch(runtime.GOARCH)
}

// NormalizeArch maps a Go architecture name to the archive's naming.
func NormalizeArch(arch string) string {
	switch arch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	case "arm":
		return "armv7h"
	default:
		return arch
	}
}

// DefaultArchitectures returns the default architecture filter: the local
// machine architecture plus "any".
func DefaultArchitectures() []string {
	return []string{MachineArch(), AnyArch}
}
