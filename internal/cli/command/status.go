package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
)

// StatusCommand reports the daemon state from its metrics textfile.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the daemon state from its exported metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "textfile",
				Usage: "Metrics textfile (default: metrics.textfile from --config)",
			},
		},
		Action: statusAction,
	}
}

type statusView struct {
	Phase         string  `json:"phase" yaml:"phase"`
	Auth          string  `json:"auth" yaml:"auth"`
	Battery       float64 `json:"battery_percent" yaml:"battery_percent"`
	Tasks         string  `json:"tasks" yaml:"tasks"`
	Sent          float64 `json:"sent" yaml:"sent"`
	SendErrors    float64 `json:"send_errors" yaml:"send_errors"`
	Received      float64 `json:"received" yaml:"received"`
	Deescalations float64 `json:"deescalations" yaml:"deescalations" table:"wide"`
	Recoveries    float64 `json:"recoveries" yaml:"recoveries" table:"wide"`
	Exported      string  `json:"exported" yaml:"exported"`
	Age           string  `json:"age" yaml:"age"`
}

func statusAction(c *cli.Context) error {
	path := c.String("textfile")
	if path == "" {
		cfg, err := loadDaemonConfig(c)
		if err != nil {
			return err
		}
		path = cfg.Metrics.Textfile
	}
	if path == "" {
		return fmt.Errorf("metrics export disabled: metrics.textfile is empty")
	}

	snap, err := metric.ReadTextfile(path)
	if err != nil {
		return err
	}

	return printResult(c, statusView{
		Phase:         snap.Phase,
		Auth:          snap.Auth,
		Battery:       snap.Battery,
		Tasks:         strings.Join(snap.Tasks, ","),
		Sent:          snap.TotalSent(),
		SendErrors:    snap.SendErrors,
		Received:      snap.Received,
		Deescalations: snap.Deescalations,
		Recoveries:    snap.Recoveries,
		Exported:      snap.ExportedAt.Local().Format(time.DateTime),
		Age:           time.Since(snap.ExportedAt).Truncate(time.Second).String(),
	})
}
