package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/device/config"
)

// daemonConfigPath returns --config, else the CLI configuration's
// daemon_config.
func daemonConfigPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return GetCLIConfig(c).DaemonConfig
}

// loadDaemonConfig loads the daemon configuration the way the daemon does.
func loadDaemonConfig(c *cli.Context) (*config.Config, error) {
	cfg, _, err := config.Load(daemonConfigPath(c))
	return cfg, err
}
