package config

import (
	"fmt"
	"sort"

	"github.com/yndnr/tracklink-go/pkg/identity"
)

// CLIConfig is the configuration for tracklink-cli.
type CLIConfig struct {
	// DefaultOutput is used when --output is not given (table, json, yaml).
	DefaultOutput string `yaml:"default_output,omitempty"`

	// DaemonConfig is the daemon configuration file used by the pairing,
	// journal and config commands when --config is not given.
	DaemonConfig string `yaml:"daemon_config,omitempty"`

	// Devices are the paired devices by name.
	Devices map[string]DeviceProfile `yaml:"devices,omitempty"`
}

// DeviceProfile is what the controller knows about one device.
type DeviceProfile struct {
	Serial string `yaml:"serial"`
	Secret string `yaml:"secret"`
	Number string `yaml:"number,omitempty"`
}

// ID returns the device id the profile's serial and secret produce.
func (p DeviceProfile) ID() string {
	return identity.ComputeID(p.Serial, p.Secret)
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultOutput: "table",
		Devices:       make(map[string]DeviceProfile),
	}
}

// Device returns the named profile.
func (c *CLIConfig) Device(name string) (DeviceProfile, error) {
	p, ok := c.Devices[name]
	if !ok {
		return DeviceProfile{}, fmt.Errorf("unknown device %q", name)
	}
	return p, nil
}

// DeviceNames returns the profile names, sorted.
func (c *CLIConfig) DeviceNames() []string {
	names := make([]string, 0, len(c.Devices))
	for name := range c.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify checks every profile.
func (c *CLIConfig) Verify() error {
	for _, name := range c.DeviceNames() {
		p := c.Devices[name]
		if p.Serial == "" {
			return fmt.Errorf("device %q: serial is required", name)
		}
		if p.Secret == "" {
			return fmt.Errorf("device %q: secret is required", name)
		}
	}
	return nil
}
