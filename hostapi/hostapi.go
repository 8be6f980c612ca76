// Package hostapi defines the contract between the acorn-host binary and the
// plugins it loads. A plugin registers one or more [Service] implementations
// into the collection it is handed; the host resolves every registered
// service after build and runs them until shutdown.
//
// The package is deliberately tiny: it is the only compile-time surface a
// plugin and the host share besides acorn itself.
package hostapi

import "context"

// Service is a long-running unit of work contributed by a plugin.
type Service interface {
	// Name identifies the service in host logs.
	Name() string

	// Serve runs until the context is canceled or the service fails.
	Serve(ctx context.Context) error
}
