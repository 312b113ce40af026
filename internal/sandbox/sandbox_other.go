//go:build !linux && !darwin

package sandbox

import "context"

// On platforms without a supported sandbox primitive (including Windows,
// per §9's explicit design note), the sandbox is unavailable; every
// operation that requires it surfaces SandboxUnavailable rather than
// silently running unconfined.
func platformRun(ctx context.Context, cmd Command) (Result, error) {
	return Result{}, ErrSandboxUnavailable
}

func detectCapabilities() Capabilities {
	return Capabilities{Platform: "other", Available: false}
}
