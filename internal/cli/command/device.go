package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/tracklink-go/internal/cli/config"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// DeviceCommand returns the device profile subcommand group.
func DeviceCommand() *cli.Command {
	return &cli.Command{
		Name:    "device",
		Aliases: []string{"dev"},
		Usage:   "Manage paired device profiles",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add or replace a device profile",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "serial", Usage: "Device serial (IMEI)", Required: true},
					&cli.StringFlag{Name: "secret", Usage: "Shared pairing secret", Required: true},
					&cli.StringFlag{Name: "number", Usage: "Device phone number"},
				},
				Action: deviceAdd,
			},
			{
				Name:   "list",
				Usage:  "List device profiles",
				Action: deviceList,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a device profile",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
				},
				Action: deviceRemove,
			},
		},
	}
}

type deviceRow struct {
	Name   string `json:"name" yaml:"name"`
	Serial string `json:"serial" yaml:"serial"`
	ID     string `json:"id" yaml:"id"`
	Number string `json:"number" yaml:"number" table:"wide"`
}

func deviceAdd(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("device name required")
	}

	cfg := GetCLIConfig(c)
	profile := cliconfig.DeviceProfile{
		Serial: c.String("serial"),
		Secret: c.String("secret"),
		Number: c.String("number"),
	}
	cfg.Devices[name] = profile

	if err := cliconfig.Save(cfg, ParseGlobalFlags(c).CLIConfig); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "device %s saved (id %s)\n", name, profile.ID())
	return nil
}

func deviceList(c *cli.Context) error {
	cfg := GetCLIConfig(c)
	rows := make([]deviceRow, 0, len(cfg.Devices))
	for _, name := range cfg.DeviceNames() {
		p := cfg.Devices[name]
		rows = append(rows, deviceRow{
			Name:   name,
			Serial: p.Serial,
			ID:     p.ID(),
			Number: logger.MaskNumber(p.Number),
		})
	}
	return printResult(c, rows)
}

func deviceRemove(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("device name required")
	}

	cfg := GetCLIConfig(c)
	if _, err := cfg.Device(name); err != nil {
		return err
	}
	if !c.Bool("force") && !confirm(c, fmt.Sprintf("Remove device %s and its secret?", name)) {
		fmt.Fprintln(c.App.Writer, "Cancelled.")
		return nil
	}

	delete(cfg.Devices, name)
	if err := cliconfig.Save(cfg, ParseGlobalFlags(c).CLIConfig); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "device %s removed\n", name)
	return nil
}
