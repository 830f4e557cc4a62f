package config

import (
	"fmt"

	"github.com/yndnr/tracklink-go/internal/infra/confloader"
	"github.com/yndnr/tracklink-go/internal/storage"
)

// Load resolves the configuration from defaults, the legacy state
// document, the file at path (optional) and the environment, then
// verifies it.
//
// The returned loader keeps the same sources and is what the file
// watcher reloads through.
func Load(path string, opts ...confloader.Option) (*Config, *confloader.Loader, error) {
	base := opts
	if path != "" {
		base = append(base[:len(base):len(base)], confloader.WithConfigFile(path))
	}

	// First pass: find the state document.
	probe := Default()
	if err := confloader.NewLoader(base...).Load(probe); err != nil {
		return nil, nil, err
	}

	doc, err := storage.NewPairingStore(probe.Device.StateFile).Document()
	if err != nil {
		return nil, nil, fmt.Errorf("read state document: %w", err)
	}

	loader := confloader.NewLoader(append(base, confloader.WithDefaults(LegacyDefaults(doc)))...)
	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

// Reload re-reads every source of loader into a fresh configuration and
// verifies it. The previous configuration is left untouched on error.
func Reload(loader *confloader.Loader) (*Config, error) {
	cfg := Default()
	if err := loader.Reload(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
