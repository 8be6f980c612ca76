package plughost

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the host's settings, read from an optional TOML file and
// overridable by flags.
type Config struct {
	// PluginDir is the directory scanned for plugin binaries.
	PluginDir string `toml:"plugin_dir"`

	// Watch re-assembles the provider when new plugins appear in PluginDir.
	Watch bool `toml:"watch"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		PluginDir: "plugins",
		LogLevel:  "info",
	}
}

// LoadConfig reads path and overlays it on the defaults. A missing file is
// not an error; the defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
