package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
)

// Prompt is printed before every line.
const Prompt = "tracklink> "

// Executor runs one command line split into arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     *bufio.Reader
	output    io.Writer
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams (default stdin and stdout).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = bufio.NewReader(in)
		r.output = out
	}
}

// WithCommands sets the command names the completer knows.
func WithCommands(commands []string) Option {
	return func(r *REPL) {
		r.completer = NewCompleter(commands...)
	}
}

// WithHistory sets the history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a REPL dispatching lines to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     bufio.NewReader(os.Stdin),
		output:    os.Stdout,
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reader returns the buffered input, for commands that prompt.
func (r *REPL) Reader() io.Reader {
	return r.input
}

// Run reads and executes lines until exit, EOF or ctx ends. History is
// loaded before the first prompt and saved on return.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "Warning: history not loaded: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "Warning: history not saved: %v\n", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.output, Prompt)

		line, err := r.input.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "history" {
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse line: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	if !r.completer.Known(args[0]) {
		if s := r.completer.Complete(args[0]); len(s) > 0 {
			return fmt.Errorf("unknown command %q, did you mean: %s", args[0], strings.Join(s, ", "))
		}
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return r.exec(ctx, args)
}
