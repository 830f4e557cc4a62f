package command

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklink-go/internal/cli/repl"
)

// ShellCommand runs commands interactively.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively",
		Description: "Global flags given to shell apply to every line. Type exit or quit\n" +
			"   to leave, history to list previous lines.",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	g := ParseGlobalFlags(c)
	prefix := []string{c.App.Name, "--cli-config", g.CLIConfig}
	if g.Output != "" {
		prefix = append(prefix, "--output", g.Output)
	}
	if g.Wide {
		prefix = append(prefix, "--wide")
	}
	if g.Config != "" {
		prefix = append(prefix, "--config", g.Config)
	}

	var shell *repl.REPL
	exec := func(ctx context.Context, args []string) error {
		if args[0] == "shell" {
			return fmt.Errorf("already in the shell")
		}
		app := App()
		app.Writer = c.App.Writer
		app.ErrWriter = c.App.ErrWriter
		app.Reader = shell.Reader()
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.RunContext(ctx, append(append([]string{}, prefix...), args...))
	}

	shell = repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithCommands(commandNames(c.App)),
		repl.WithHistory(repl.NewHistory(filepath.Join(filepath.Dir(g.CLIConfig), "history"))),
	)
	return shell.Run(c.Context)
}

// commandNames lists the top-level commands and their aliases.
func commandNames(app *cli.App) []string {
	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Names()...)
	}
	return names
}
