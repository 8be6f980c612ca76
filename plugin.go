package acorn

import (
	"fmt"
	"os"
	"sync/atomic"
)

// RegistrationSymbol is the well-known name every dynamically loaded plugin
// binary exports exactly once. The host's loading loop resolves this symbol
// and invokes it with the host-owned collection before building.
const RegistrationSymbol = "RegisterServices"

// RegistrationFunc is the fixed signature of the exported registration entry
// point: given a mutable handle to a collection the plugin does not own,
// register zero or more entries into it. The signature deliberately carries
// no result; fallible behavior crossing the boundary is routed through the
// process-wide error handler instead.
type RegistrationFunc = func(*Collection)

// ErrorHandler receives unrecoverable errors the core cannot return to a
// caller: panics crossing the plugin boundary, resolution from a closed
// provider, late registrations. The default handler prints the error and
// aborts the process.
type ErrorHandler func(error)

var errorHandler atomic.Pointer[ErrorHandler]

// SetErrorHandler replaces the process-wide error handler and returns the
// previous one. A host that wants to survive plugin failures must install
// its handler before any plugin registers.
func SetErrorHandler(h ErrorHandler) ErrorHandler {
	prev := errorHandler.Swap(&h)
	if prev == nil {
		return defaultErrorHandler
	}
	return *prev
}

func handleError(err error) {
	if h := errorHandler.Load(); h != nil && *h != nil {
		(*h)(err)
		return
	}
	defaultErrorHandler(err)
}

func defaultErrorHandler(err error) {
	fmt.Fprintln(os.Stderr, "acorn: fatal:", err)
	os.Exit(1)
}

// InvokeRegistration runs a plugin's registration function against the
// host's collection with panic containment: a panic on the plugin side is
// converted to an [ErrPluginPanic] and reported through the process error
// handler rather than unwinding into the loading loop.
func InvokeRegistration(c *Collection, register RegistrationFunc) {
	defer func() {
		if r := recover(); r != nil {
			handleError(fmt.Errorf("%w: %v", ErrPluginPanic, r))
		}
	}()
	register(c)
}
