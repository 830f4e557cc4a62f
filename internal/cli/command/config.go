package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/cli/output"
	"github.com/yndnr/tracklink-go/internal/device/config"
)

// ConfigCommand returns the daemon configuration subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Daemon configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective daemon configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "unmasked", Usage: "Show phone numbers in full"},
				},
				Action: configShow,
			},
			{
				Name:      "check",
				Usage:     "Check a daemon configuration file",
				ArgsUsage: "FILE",
				Action:    configCheck,
			},
			{
				Name:   "defaults",
				Usage:  "Print the built-in defaults",
				Action: configDefaults,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadDaemonConfig(c)
	if err != nil {
		return err
	}
	if !c.Bool("unmasked") {
		cfg = config.Sanitize(cfg)
	}
	return printConfig(c, cfg)
}

func configCheck(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("configuration file required")
	}

	// TRACKLINK_* overrides apply, as they would for the daemon.
	cfg, _, err := config.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: ok (user %s, threshold %g%%)\n",
		path, config.Sanitize(cfg).Device.UserNumber, cfg.Monitor.Threshold)
	return nil
}

func configDefaults(c *cli.Context) error {
	return printConfig(c, config.Default())
}

// printConfig prints cfg as YAML unless another format was asked for;
// tables cannot show nested sections.
func printConfig(c *cli.Context, cfg *config.Config) error {
	if c.String("output") == "" {
		return (&output.YAMLFormatter{}).Format(c.App.Writer, cfg)
	}
	return printResult(c, cfg)
}
