package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/storage"
	"github.com/yndnr/tracklink-go/pkg/identity"
)

// PairingCommand returns the pairing record subcommand group.
func PairingCommand() *cli.Command {
	stateFlag := &cli.StringFlag{
		Name:  "state-file",
		Usage: "Pairing state document (default: device.state_file from --config)",
	}

	return &cli.Command{
		Name:  "pairing",
		Usage: "Inspect or reset the device's pairing record",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the stored pairing record",
				Flags: []cli.Flag{
					stateFlag,
					&cli.StringFlag{Name: "serial", Usage: "Device serial, to show the device id"},
					&cli.BoolFlag{Name: "show-secret", Usage: "Print the shared secret"},
				},
				Action: pairingShow,
			},
			{
				Name:  "reset",
				Usage: "Clear the pairing so the device pairs again on next boot",
				Flags: []cli.Flag{
					stateFlag,
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
				},
				Action: pairingReset,
			},
		},
	}
}

type pairingStatus struct {
	StateFile string `json:"state_file" yaml:"state_file"`
	Paired    bool   `json:"paired" yaml:"paired"`
	Keyless   bool   `json:"keyless" yaml:"keyless"`
	DeviceID  string `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	Secret    string `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// pairingStore opens the state document named by --state-file, else the
// one the daemon configuration points at. It also returns the configured
// serial, if any.
func pairingStore(c *cli.Context) (*storage.PairingStore, string, error) {
	if path := c.String("state-file"); path != "" {
		return storage.NewPairingStore(path), "", nil
	}
	cfg, err := loadDaemonConfig(c)
	if err != nil {
		return nil, "", err
	}
	return storage.NewPairingStore(cfg.Device.StateFile), cfg.Device.Serial, nil
}

func pairingShow(c *cli.Context) error {
	store, serial, err := pairingStore(c)
	if err != nil {
		return err
	}
	rec, err := store.Load()
	if err != nil {
		return err
	}

	status := pairingStatus{
		StateFile: store.Path(),
		Paired:    rec.Paired(),
		Keyless:   rec.Keyless(),
	}
	if s := c.String("serial"); s != "" {
		serial = s
	}
	if serial != "" && rec.Paired() {
		status.DeviceID = identity.ComputeID(serial, rec.Secret)
	}
	if c.Bool("show-secret") {
		status.Secret = rec.Secret
	}
	return printResult(c, status)
}

func pairingReset(c *cli.Context) error {
	store, _, err := pairingStore(c)
	if err != nil {
		return err
	}
	if !c.Bool("force") && !confirm(c, fmt.Sprintf("Clear the pairing in %s?", store.Path())) {
		fmt.Fprintln(c.App.Writer, "Cancelled.")
		return nil
	}
	if err := store.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "pairing cleared in %s\n", store.Path())
	return nil
}
