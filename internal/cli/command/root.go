package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/tracklink-go/internal/cli/config"
	"github.com/yndnr/tracklink-go/internal/cli/output"
	"github.com/yndnr/tracklink-go/internal/infra/buildinfo"
)

const metaCLIConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tracklink-cli",
		Usage:   "Pair and inspect tracklink devices",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			IDCommand(),
			VerifyCommand(),
			ReplyCommand(),
			EncodeCommand(),
			DecodeCommand(),
			DeviceCommand(),
			PairingCommand(),
			JournalCommand(),
			ConfigCommand(),
			StatusCommand(),
			ShellCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := cliconfig.Load(c.String("cli-config"))
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[metaCLIConfig] = cfg
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"TRACKLINK_OUTPUT"},
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Daemon configuration file",
			EnvVars: []string{"TRACKLINK_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "cli-config",
			Usage:   "CLI configuration file",
			EnvVars: []string{cliconfig.EnvConfigPath},
			Value:   cliconfig.DefaultConfigPath(),
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Output    string
	Wide      bool
	Config    string
	CLIConfig string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Output:    c.String("output"),
		Wide:      c.Bool("wide"),
		Config:    c.String("config"),
		CLIConfig: c.String("cli-config"),
	}
}

// GetCLIConfig returns the CLI configuration loaded by App's Before hook.
func GetCLIConfig(c *cli.Context) *cliconfig.CLIConfig {
	if cfg, ok := c.App.Metadata[metaCLIConfig].(*cliconfig.CLIConfig); ok {
		return cfg
	}
	return cliconfig.Default()
}

// outputFormat resolves --output, then the CLI configuration default.
func outputFormat(c *cli.Context) (output.Format, error) {
	name := c.String("output")
	if name == "" {
		name = GetCLIConfig(c).DefaultOutput
	}
	if name == "" {
		return output.FormatTable, nil
	}
	return output.ParseFormat(name)
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, data any) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, data)
}

// confirm asks a yes/no question on the app's streams.
func confirm(c *cli.Context, question string) bool {
	fmt.Fprintf(c.App.Writer, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}
