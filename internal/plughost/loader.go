// Package plughost implements the acorn-host side of the plugin boundary:
// scanning a directory for dynamically loadable binaries, resolving their
// registration entry point and assembling the combined service provider.
package plughost

import (
	"errors"
	"fmt"
	"path/filepath"
	"plugin"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ARTM2000/acorn"
)

// Loader discovers plugin binaries and turns them, together with the host's
// own static registrants, into built providers. Plugins are loaded at most
// once per path; the process cannot unload them, but Assemble can be called
// again after LoadAll picks up new arrivals.
type Loader struct {
	dir    string
	logger *log.Logger

	mu     sync.Mutex
	static []acorn.RegistrationFunc
	loaded map[string]acorn.RegistrationFunc
	order  []string
}

// NewLoader creates a loader scanning dir.
func NewLoader(dir string, logger *log.Logger) *Loader {
	return &Loader{
		dir:    dir,
		logger: logger,
		loaded: make(map[string]acorn.RegistrationFunc),
	}
}

// RegisterStatic adds a host-side registrant applied before any plugin on
// every Assemble.
func (l *Loader) RegisterStatic(fn acorn.RegistrationFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.static = append(l.static, fn)
}

// Scan lists candidate plugin binaries in the loader's directory, sorted by
// path so load order is deterministic.
func (l *Loader) Scan() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.so"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", l.dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadAll opens every not-yet-loaded plugin found by Scan and resolves its
// registration symbol. Broken binaries are skipped and reported in the
// joined error; healthy ones still load. Returns the number of newly loaded
// plugins.
func (l *Loader) LoadAll() (int, error) {
	paths, err := l.Scan()
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	loaded := 0
	var errs []error
	for _, path := range paths {
		if _, ok := l.loaded[path]; ok {
			continue
		}
		fn, err := lookupRegistration(path)
		if err != nil {
			l.logger.Warn("skipping plugin", "path", path, "err", err)
			errs = append(errs, err)
			continue
		}
		l.loaded[path] = fn
		l.order = append(l.order, path)
		loaded++
		l.logger.Info("loaded plugin", "path", path)
	}
	return loaded, errors.Join(errs...)
}

// lookupRegistration opens one plugin binary and resolves the well-known
// entry point with its fixed signature.
func lookupRegistration(path string) (acorn.RegistrationFunc, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	sym, err := p.Lookup(acorn.RegistrationSymbol)
	if err != nil {
		return nil, fmt.Errorf("%s: missing symbol %s: %w", path, acorn.RegistrationSymbol, err)
	}
	fn, ok := sym.(acorn.RegistrationFunc)
	if !ok {
		return nil, fmt.Errorf("%s: symbol %s has type %T, want %T",
			path, acorn.RegistrationSymbol, sym, acorn.RegistrationFunc(nil))
	}
	return fn, nil
}

// Assemble populates a fresh collection with the static registrants followed
// by every loaded plugin, in load order, and builds it. Each plugin
// registration runs with panic containment; failures surface through the
// process error handler, not here.
func (l *Loader) Assemble(opts ...acorn.BuildOption) (*acorn.Provider, error) {
	l.mu.Lock()
	static := l.static
	order := l.order
	loaded := l.loaded
	l.mu.Unlock()

	c := acorn.NewCollection()
	for _, fn := range static {
		acorn.InvokeRegistration(c, fn)
	}
	for _, path := range order {
		acorn.InvokeRegistration(c, loaded[path])
	}
	l.logger.Debug("assembling provider", "registrations", c.Len(), "plugins", len(order))
	return c.Build(opts...)
}
